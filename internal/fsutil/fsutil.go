package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPermissions is used when (re)creating pipeline-owned directories.
const DefaultDirPermissions os.FileMode = 0o755

// CopyFile copies src to dst, preserving the source file mode
// (the executable bit in particular).
func CopyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	// Create/truncate honors umask; reassert the source mode explicitly.
	return os.Chmod(dst, info.Mode())
}

// CopyTree recursively copies the directory src into dst.
// Symlinks are recreated as links rather than followed.
func CopyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, DefaultDirPermissions); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return err
			}

			if err := os.Symlink(target, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := CopyTree(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// ResetDir destroys path and recreates it empty. A missing path is fine.
func ResetDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear %s: %w", path, err)
	}

	return os.MkdirAll(path, DefaultDirPermissions)
}

// ListDir renders a one-entry-per-line listing of path with file sizes,
// used to enrich diagnostics when an expected artifact is missing.
// Listing errors are folded into the output rather than returned:
// the caller is already reporting a failure.
func ListDir(path string) string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Sprintf("%s: (%v)", path, err)
	}

	var builder strings.Builder

	builder.WriteString(path)
	builder.WriteString(":")

	if len(entries) == 0 {
		builder.WriteString("\n  (empty)")
	}

	for _, entry := range entries {
		builder.WriteString("\n  - ")
		builder.WriteString(entry.Name())

		if entry.IsDir() {
			builder.WriteString("/")

			continue
		}

		if info, err := entry.Info(); err == nil {
			builder.WriteString(fmt.Sprintf(" (%d bytes)", info.Size()))
		}
	}

	return builder.String()
}
