package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFileOfSize creates a file with the given number of bytes.
func writeFileOfSize(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o755))
}

// TestLargestExecutable verifies the largest-by-size selection heuristic.
func TestLargestExecutable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFileOfSize(t, filepath.Join(dir, "helper.exe"), 10*1024)
	writeFileOfSize(t, filepath.Join(dir, "launcher.exe"), 50*1024)
	writeFileOfSize(t, filepath.Join(dir, "app.exe"), 200*1024)
	writeFileOfSize(t, filepath.Join(dir, "readme.txt"), 300*1024)

	handle, err := LargestExecutable(dir, ".exe")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app.exe"), handle.Path)
}

// TestLargestExecutableNotFound checks the not-found result is returned, not raised.
func TestLargestExecutableNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LargestExecutable(dir, ".exe")
	require.True(t, IsNotFound(err))

	// A missing directory is also a not-found result, not a filesystem error.
	_, err = LargestExecutable(filepath.Join(dir, "absent"), ".exe")
	require.True(t, IsNotFound(err))
}

// TestFindDir covers ordered candidates and the recursive fallback.
func TestFindDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	conventional := filepath.Join(root, "build", "windows", "x64", "runner", "Release")
	require.NoError(t, os.MkdirAll(conventional, 0o755))

	handle, err := FindDir([]string{conventional}, nil)
	require.NoError(t, err)
	require.Equal(t, conventional, handle.Path)

	// No conventional candidate: the fallback walk finds runner/Release elsewhere.
	moved := filepath.Join(root, "build", "windows", "arm64", "runner", "Release")
	require.NoError(t, os.MkdirAll(moved, 0o755))

	handle, err = FindDir(
		[]string{filepath.Join(root, "does", "not", "exist")},
		&FallbackSearch{Root: filepath.Join(root, "build", "windows", "arm64"), RelSuffix: "runner/Release"},
	)
	require.NoError(t, err)
	require.Equal(t, moved, handle.Path)
	require.Contains(t, handle.FoundVia, "recursive")
}

// TestFindDirNotFound ensures every checked candidate appears in the diagnostic.
func TestFindDirNotFound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := filepath.Join(root, "a")
	second := filepath.Join(root, "b")

	_, err := FindDir([]string{first, second}, &FallbackSearch{Root: filepath.Join(root, "c"), RelSuffix: "x/y"})
	require.True(t, IsNotFound(err))
	require.Contains(t, err.Error(), first)
	require.Contains(t, err.Error(), second)
}

// TestFirstBundle checks lexicographic bundle selection and not-found handling.
func TestFirstBundle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Zeta.app"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Alpha.app"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "NotABundle"), 0o755))

	handle, err := FirstBundle(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "Alpha.app"), handle.Path)

	_, err = FirstBundle(t.TempDir())
	require.True(t, IsNotFound(err))
}

// TestRankPolicies exercises the two ranking policies directly.
func TestRankPolicies(t *testing.T) {
	t.Parallel()

	now := time.Now()
	candidates := []Candidate{
		{Path: "old-big", Size: 500_000, ModTime: now.Add(-time.Hour)},
		{Path: "new-small", Size: 150_000, ModTime: now},
		{Path: "new-big", Size: 300_000, ModTime: now},
	}

	best, ok := Rank(candidates, LargestOnly)
	require.True(t, ok)
	require.Equal(t, "old-big", best.Path)

	best, ok = Rank(candidates, NewestThenLargest)
	require.True(t, ok)
	require.Equal(t, "new-big", best.Path)

	_, ok = Rank(nil, LargestOnly)
	require.False(t, ok)
}
