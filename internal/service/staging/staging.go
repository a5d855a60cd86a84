package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ofarch/relpack/internal/fsutil"
	"github.com/ofarch/relpack/internal/logger"
)

// AuxFile declares an optional runtime dependency staged next to the product.
// The first existing candidate wins; a fully absent aux file is skipped silently.
type AuxFile struct {
	// Candidates are source paths probed in order.
	Candidates []string
	// Name is the filename the dependency gets inside the staging tree.
	Name string
}

// Tree is a staging directory fully owned by the current pipeline run.
type Tree struct {
	// Dir is the root of the staged product.
	Dir string
}

// StageFile resets dest and stages a single primary artifact under destName,
// plus any aux files that happen to exist.
func StageFile(ctx context.Context, dest, primary, destName string, aux []AuxFile) (*Tree, error) {
	ctx = logger.WithName(ctx, "stager")

	tree, err := reset(ctx, dest)
	if err != nil {
		return nil, err
	}

	if err := fsutil.CopyFile(primary, filepath.Join(dest, destName)); err != nil {
		return nil, fmt.Errorf("stage %s: %w", primary, err)
	}

	if err := stageAux(ctx, dest, aux); err != nil {
		return nil, err
	}

	return tree, nil
}

// StageDir resets dest and stages the entire contents of srcDir into it,
// plus any aux files that happen to exist.
func StageDir(ctx context.Context, dest, srcDir string, aux []AuxFile) (*Tree, error) {
	ctx = logger.WithName(ctx, "stager")

	tree, err := reset(ctx, dest)
	if err != nil {
		return nil, err
	}

	if err := fsutil.CopyTree(srcDir, dest); err != nil {
		return nil, fmt.Errorf("stage %s: %w", srcDir, err)
	}

	if err := stageAux(ctx, dest, aux); err != nil {
		return nil, err
	}

	return tree, nil
}

// StageBundle resets dest and stages the application bundle as a subdirectory,
// returning the staged bundle path.
func StageBundle(ctx context.Context, dest, bundle string) (*Tree, string, error) {
	ctx = logger.WithName(ctx, "stager")

	tree, err := reset(ctx, dest)
	if err != nil {
		return nil, "", err
	}

	staged := filepath.Join(dest, filepath.Base(bundle))

	if err := fsutil.CopyTree(bundle, staged); err != nil {
		return nil, "", fmt.Errorf("stage %s: %w", bundle, err)
	}

	return tree, staged, nil
}

// EnsureExecutable renames the shell's default output binary to the branded
// name. When neither name is present the staged tree cannot identify the
// product, which is a fatal configuration error.
func (t *Tree) EnsureExecutable(ctx context.Context, from, to string) error {
	src := filepath.Join(t.Dir, from)
	dst := filepath.Join(t.Dir, to)

	if _, err := os.Stat(src); err == nil {
		logger.InfoKV(ctx, "Renaming staged executable", "from", from, "to", to)

		return os.Rename(src, dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if _, err := os.Stat(dst); err == nil {
		return nil
	}

	return fmt.Errorf("neither %s nor %s present in staged tree %s", from, to, t.Dir)
}

// reset destroys and recreates the staging destination.
func reset(ctx context.Context, dest string) (*Tree, error) {
	logger.InfoKV(ctx, "Resetting staging directory", "path", dest)

	if err := fsutil.ResetDir(dest); err != nil {
		return nil, fmt.Errorf("reset staging directory: %w", err)
	}

	return &Tree{Dir: dest}, nil
}

// stageAux copies the first existing candidate of each aux file, skipping
// silently when none exists.
func stageAux(ctx context.Context, dest string, aux []AuxFile) error {
	for _, a := range aux {
		staged := false

		for _, candidate := range a.Candidates {
			if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
				continue
			} else if err != nil {
				return fmt.Errorf("stat %s: %w", candidate, err)
			}

			if err := fsutil.CopyFile(candidate, filepath.Join(dest, a.Name)); err != nil {
				return fmt.Errorf("stage aux %s: %w", a.Name, err)
			}

			logger.InfoKV(ctx, "Staged auxiliary file", "name", a.Name, "from", candidate)

			staged = true

			break
		}

		if !staged {
			logger.DebugKV(ctx, "Auxiliary file absent, skipping", "name", a.Name)
		}
	}

	return nil
}
