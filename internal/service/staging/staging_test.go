package staging

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// dirNames returns sorted entry names of a directory.
func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	sort.Strings(names)

	return names
}

// TestStageFileExactContents runs the stager twice with different inputs and
// asserts the destination holds only the second run's declared set.
func TestStageFileExactContents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	dest := filepath.Join(root, "staging")

	firstExe := filepath.Join(root, "first.exe")
	require.NoError(t, os.WriteFile(firstExe, []byte("one"), 0o755))

	sciter := filepath.Join(root, "sciter.dll")
	require.NoError(t, os.WriteFile(sciter, []byte("lib"), 0o644))

	_, err := StageFile(ctx, dest, firstExe, "APPDESK.exe", []AuxFile{
		{Candidates: []string{sciter}, Name: "sciter.dll"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"APPDESK.exe", "sciter.dll"}, dirNames(t, dest))

	// Second run with a different configuration against the same path.
	secondExe := filepath.Join(root, "second.exe")
	require.NoError(t, os.WriteFile(secondExe, []byte("two"), 0o755))

	_, err = StageFile(ctx, dest, secondExe, "OTHER.exe", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"OTHER.exe"}, dirNames(t, dest))
}

// TestStageFileMissingAuxIsSilent checks absent aux candidates do not fail staging.
func TestStageFileMissingAuxIsSilent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	exe := filepath.Join(root, "app.exe")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	_, err := StageFile(context.Background(), filepath.Join(root, "out"), exe, "app.exe", []AuxFile{
		{Candidates: []string{filepath.Join(root, "nowhere.dll")}, Name: "nowhere.dll"},
	})
	require.NoError(t, err)
}

// TestStageDirAndRename covers the shell-output tree case and executable rebranding.
func TestStageDirAndRename(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	src := filepath.Join(root, "Release")
	dest := filepath.Join(root, "app_fl")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "remotedesk.exe"), []byte("exe"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "data", "icu.dat"), []byte("d"), 0o644))

	tree, err := StageDir(ctx, dest, src, nil)
	require.NoError(t, err)

	require.NoError(t, tree.EnsureExecutable(ctx, "remotedesk.exe", "OFARCHDESK.exe"))

	_, err = os.Stat(filepath.Join(dest, "OFARCHDESK.exe"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dest, "remotedesk.exe"))
	require.True(t, os.IsNotExist(err))

	// Renaming again is a no-op because the branded name already exists.
	require.NoError(t, tree.EnsureExecutable(ctx, "remotedesk.exe", "OFARCHDESK.exe"))
}

// TestEnsureExecutableMissingBoth verifies the fatal configuration error.
func TestEnsureExecutableMissingBoth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	src := filepath.Join(root, "Release")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "readme.txt"), []byte("r"), 0o644))

	tree, err := StageDir(ctx, filepath.Join(root, "out"), src, nil)
	require.NoError(t, err)

	err = tree.EnsureExecutable(ctx, "remotedesk.exe", "OFARCHDESK.exe")
	require.Error(t, err)
	require.Contains(t, err.Error(), "OFARCHDESK.exe")
}

// TestStageBundle checks the bundle lands as a subdirectory of the staging tree.
func TestStageBundle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	bundle := filepath.Join(root, "OFARCH.app")
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "Contents", "MacOS"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "Contents", "MacOS", "OFARCH"), []byte("bin"), 0o755))

	_, staged, err := StageBundle(context.Background(), filepath.Join(root, "out"), bundle)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "out", "OFARCH.app"), staged)

	_, err = os.Stat(filepath.Join(staged, "Contents", "MacOS", "OFARCH"))
	require.NoError(t, err)
}
