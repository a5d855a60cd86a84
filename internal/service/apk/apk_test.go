package apk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ofarch/relpack/internal/config"
)

// TestFinalizeStampsPackage verifies the version-stamped copy.
func TestFinalizeStampsPackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "flutter-apk")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "app-release.apk"), []byte("apk"), 0o644))

	finalizer := &Finalizer{
		Product:    config.Product{AppName: "OFARCH"},
		Version:    "1.2.3",
		DistDir:    filepath.Join(root, "dist"),
		PackageDir: pkgDir,
	}

	result, err := finalizer.Finalize(context.Background())
	require.NoError(t, err)
	require.False(t, result.Skipped)
	require.Equal(t, "OFARCH-1.2.3.apk", result.Artifact.Name)

	contents, err := os.ReadFile(result.Artifact.Path)
	require.NoError(t, err)
	require.Equal(t, []byte("apk"), contents)
}

// TestFinalizeSkipsWhenPackageAbsent checks the non-fatal skip path.
func TestFinalizeSkipsWhenPackageAbsent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	finalizer := &Finalizer{
		Product:    config.Product{AppName: "OFARCH"},
		Version:    "1.2.3",
		DistDir:    filepath.Join(root, "dist"),
		PackageDir: filepath.Join(root, "nowhere"),
	}

	result, err := finalizer.Finalize(context.Background())
	require.NoError(t, err)
	require.True(t, result.Skipped)
	require.Nil(t, result.Artifact)
}
