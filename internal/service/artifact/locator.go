package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Handle is a resolved reference to a located build output.
type Handle struct {
	// Path is the filesystem path of the output.
	Path string
	// FoundVia names the candidate location that matched, for diagnostics.
	FoundVia string
}

// NotFoundError reports that no candidate location contained the wanted output.
type NotFoundError struct {
	// Want describes what was being located.
	Want string
	// Checked lists every candidate location that was examined.
	Checked []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found; checked: %s", e.Want, strings.Join(e.Checked, ", "))
}

// IsNotFound reports whether err is a locator not-found result.
func IsNotFound(err error) bool {
	var notFound *NotFoundError

	return errors.As(err, &notFound)
}

// FallbackSearch bounds the recursive search used when no conventional
// candidate directory exists.
type FallbackSearch struct {
	// Root is the subtree to walk.
	Root string
	// RelSuffix is the path suffix a directory must end with to match,
	// e.g. "runner/Release".
	RelSuffix string
}

// FindDir returns the first existing directory among candidates, in order.
// When none exists and a fallback is provided, the fallback subtree is walked
// for the first directory whose path ends with the configured suffix.
func FindDir(candidates []string, fallback *FallbackSearch) (*Handle, error) {
	checked := make([]string, 0, len(candidates)+1)

	for _, dir := range candidates {
		checked = append(checked, dir)

		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}

		if info.IsDir() {
			return &Handle{Path: dir, FoundVia: dir}, nil
		}
	}

	if fallback != nil {
		found, err := searchDirSuffix(fallback.Root, fallback.RelSuffix)
		if err != nil {
			return nil, err
		}

		checked = append(checked, fmt.Sprintf("%s (recursive, */%s)", fallback.Root, fallback.RelSuffix))

		if found != "" {
			return &Handle{Path: found, FoundVia: "recursive search under " + fallback.Root}, nil
		}
	}

	return nil, &NotFoundError{Want: "build output directory", Checked: checked}
}

// searchDirSuffix walks root for the first directory whose slash-separated
// path ends with suffix. A missing root yields no match, not an error.
func searchDirSuffix(root, suffix string) (string, error) {
	suffix = filepath.ToSlash(suffix)

	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}

			return err
		}

		if !d.IsDir() {
			return nil
		}

		if strings.HasSuffix(filepath.ToSlash(path), "/"+suffix) {
			found = path

			return filepath.SkipAll
		}

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("search under %s: %w", root, err)
	}

	return found, nil
}

// LargestExecutable returns the largest file in dir whose name ends with ext.
// Largest-by-size is a pragmatic tie-break for picking the real application
// binary over helper or launcher binaries, not a guarantee.
func LargestExecutable(dir, ext string) (*Handle, error) {
	candidates, err := Collect(dir, func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
	})
	if err != nil {
		return nil, err
	}

	best, ok := Rank(candidates, LargestOnly)
	if !ok {
		return nil, &NotFoundError{
			Want:    "executable *" + ext,
			Checked: []string{dir},
		}
	}

	return &Handle{Path: best.Path, FoundVia: dir}, nil
}

// FirstBundle returns the lexicographically first .app bundle in dir.
func FirstBundle(dir string) (*Handle, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Want: "application bundle", Checked: []string{dir}}
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".app") {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return nil, &NotFoundError{Want: "application bundle", Checked: []string{dir}}
	}

	sort.Strings(names)

	return &Handle{Path: filepath.Join(dir, names[0]), FoundVia: dir}, nil
}

// Collect builds candidate descriptors for the regular files in dir whose
// names pass the filter. A missing directory yields no candidates.
func Collect(dir string, match func(name string) bool) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var candidates []Candidate

	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}

		candidates = append(candidates, Candidate{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return candidates, nil
}
