package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// fallbackVersion is stamped when neither the environment nor the manifest
// yields a version, mirroring the native toolchain's own default.
const fallbackVersion = "0.0.0"

// nativeManifest is the subset of the native project manifest we care about.
type nativeManifest struct {
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

// ResolveVersion returns the product version: the environment override wins,
// then the [package] version in the native Cargo.toml manifest, then "0.0.0".
func ResolveVersion(manifestPath string) (string, error) {
	if v := os.Getenv(EnvVersion); v != "" {
		return v, nil
	}

	contents, err := os.ReadFile(filepath.Clean(manifestPath))
	if os.IsNotExist(err) {
		return fallbackVersion, nil
	} else if err != nil {
		return "", fmt.Errorf("read native manifest: %w", err)
	}

	var manifest nativeManifest
	if err := toml.Unmarshal(contents, &manifest); err != nil {
		return "", fmt.Errorf("parse native manifest %s: %w", manifestPath, err)
	}

	if manifest.Package.Version == "" {
		return fallbackVersion, nil
	}

	return manifest.Package.Version, nil
}
