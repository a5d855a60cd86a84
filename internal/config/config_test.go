package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidateProduct checks default filling and rejection of bad app names.
func TestValidateProduct(t *testing.T) {
	product := new(Product)

	require.NoError(t, ValidateProduct(product))
	require.Equal(t, DefaultAppName, product.AppName)
	require.Equal(t, DefaultShellExeName, product.ShellExeName)
	require.Equal(t, DefaultDistDir, product.DistDir)

	bad := &Product{AppName: "Some/Name"}
	require.Error(t, ValidateProduct(bad))

	require.Error(t, ValidateProduct(nil))
}

// TestProductSaveLoadRoundtrip ensures the product file persists and loads back correctly.
func TestProductSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relpack.yaml")

	product := &Product{
		AppName:      "ACME",
		ShellExeName: "shellapp.exe",
	}

	require.NoError(t, SaveProduct(path, product))

	loaded, err := LoadProduct(path)
	require.NoError(t, err)
	require.Equal(t, "ACME", loaded.AppName)
	require.Equal(t, "shellapp.exe", loaded.ShellExeName)
	// Omitted fields come back as defaults.
	require.Equal(t, DefaultShellDir, loaded.ShellDir)
}

// TestLoadProductMissingFile verifies defaults apply when no product file exists.
func TestLoadProductMissingFile(t *testing.T) {
	product, err := LoadProduct(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultAppName, product.AppName)
}

// TestLoadProductEnvOverride checks the app-name environment override.
func TestLoadProductEnvOverride(t *testing.T) {
	t.Setenv(EnvAppName, "BRANDX")

	product, err := LoadProduct(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "BRANDX", product.AppName)
	require.Equal(t, "BRANDXDESK.exe", product.BrandedExeName(PlatformWindows))
	require.Equal(t, "BRANDX", product.BrandedExeName(PlatformMacOS))
}

// TestResolveVersion covers env override, manifest parsing and fallbacks.
func TestResolveVersion(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")

	contents := "[package]\nname = \"remotedesk\"\nversion = \"1.4.2\"\nedition = \"2021\"\n"
	require.NoError(t, os.WriteFile(manifest, []byte(contents), 0o600))

	v, err := ResolveVersion(manifest)
	require.NoError(t, err)
	require.Equal(t, "1.4.2", v)

	// Environment override wins over the manifest.
	t.Setenv(EnvVersion, "9.9.9")

	v, err = ResolveVersion(manifest)
	require.NoError(t, err)
	require.Equal(t, "9.9.9", v)

	// Missing manifest without override falls back.
	t.Setenv(EnvVersion, "")

	v, err = ResolveVersion(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, "0.0.0", v)
}

// TestNewBuildRequest verifies platform validation and layout resolution.
func TestNewBuildRequest(t *testing.T) {
	dir := t.TempDir()

	product := new(Product)
	require.NoError(t, ValidateProduct(product))

	req, err := NewBuildRequest(
		PlatformWindows, true, []string{"flutter", "hwcodec"},
		"1.2.3", dir, "", false, false, product,
	)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", req.Version)
	require.Equal(t, filepath.Join(dir, "dist", "app_fl"), req.Layout.StagingDirFlutter)
	require.Equal(t, filepath.Join(dir, "libs", "portable", "generate.py"), req.Layout.PortableGenerator)
	require.Contains(t, req.Layout.ShellBuildDir(PlatformWindows), filepath.Join("runner", "Release"))

	_, err = NewBuildRequest(
		Platform("freebsd"), false, nil,
		"1.0.0", dir, "", false, false, product,
	)
	require.Error(t, err)
}

// TestNewBuildRequestAbsoluteShellDir keeps an absolute shell-dir override
// out of the project root instead of joining it underneath.
func TestNewBuildRequestAbsoluteShellDir(t *testing.T) {
	product := new(Product)
	require.NoError(t, ValidateProduct(product))

	shell := t.TempDir()

	req, err := NewBuildRequest(
		PlatformWindows, true, nil,
		"1.2.3", t.TempDir(), shell, false, false, product,
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Clean(shell), req.Layout.ShellDir)
}
