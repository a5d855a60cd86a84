package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Product holds branding and layout knobs persisted in the product file.
type Product struct {
	// AppName is the product name prefix used in branded executables and artifact names.
	AppName string `yaml:"app_name"`
	// ShellExeName is the executable name the UI shell build emits before rebranding.
	ShellExeName string `yaml:"shell_exe_name"`
	// NativeLibName is the dynamic library the native build must produce (Windows name).
	NativeLibName string `yaml:"native_lib_name"`
	// ShellDir is the UI shell project directory, relative to the project root.
	ShellDir string `yaml:"shell_dir"`
	// DistDir is the root output directory for staged trees and final artifacts.
	DistDir string `yaml:"dist_dir"`
}

const (
	// DefaultProductFilename is the default path of the product file.
	DefaultProductFilename = "relpack.yaml"

	// DefaultAppName is the product name used when no override is present.
	DefaultAppName = "OFARCH"

	// DefaultShellExeName is the UI shell's own output binary name on Windows.
	DefaultShellExeName = "remotedesk.exe"

	// DefaultNativeLibName is the native library the Windows shell links against.
	DefaultNativeLibName = "libremotedesk.dll"

	// DefaultShellDir is the conventional UI shell project directory.
	DefaultShellDir = "flutter"

	// DefaultDistDir is the conventional output root.
	DefaultDistDir = "dist"

	// DefaultFilePermissions is the default file permission for the product file.
	DefaultFilePermissions = 0o600
)

// errProductIsNotSet is returned when a nil product is provided.
var errProductIsNotSet = errors.New("product configuration is not set")

// LoadProduct reads the product file from the provided path. A missing file is
// not an error: defaults (plus the environment app-name override) apply.
func LoadProduct(path string) (*Product, error) {
	if path == "" {
		path = DefaultProductFilename
	}

	product := defaultProduct()

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return product, nil
	} else if err != nil {
		return nil, fmt.Errorf("read product file: %w", err)
	}

	if err := yaml.Unmarshal(contents, product); err != nil {
		return nil, fmt.Errorf("unmarshal product file: %w", err)
	}

	if err := ValidateProduct(product); err != nil {
		return nil, err
	}

	return product, nil
}

// SaveProduct writes the product file to the provided path.
func SaveProduct(path string, product *Product) error {
	if product == nil {
		return errProductIsNotSet
	}

	if path == "" {
		path = DefaultProductFilename
	}

	if err := ValidateProduct(product); err != nil {
		return err
	}

	data, err := yaml.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product file: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write product file: %w", err)
	}

	return nil
}

// ValidateProduct fills defaults for omitted fields and rejects invalid ones.
func ValidateProduct(product *Product) error {
	if product == nil {
		return errProductIsNotSet
	}

	defaults := defaultProduct()

	if product.AppName == "" {
		product.AppName = defaults.AppName
	}

	if strings.ContainsAny(product.AppName, `/\`) {
		return fmt.Errorf("app name %q must not contain path separators", product.AppName)
	}

	if product.ShellExeName == "" {
		product.ShellExeName = defaults.ShellExeName
	}

	if product.NativeLibName == "" {
		product.NativeLibName = defaults.NativeLibName
	}

	if product.ShellDir == "" {
		product.ShellDir = defaults.ShellDir
	}

	if product.DistDir == "" {
		product.DistDir = defaults.DistDir
	}

	return nil
}

// defaultProduct returns a Product with conventional values,
// honoring the app-name environment override.
func defaultProduct() *Product {
	name := os.Getenv(EnvAppName)
	if name == "" {
		name = DefaultAppName
	}

	return &Product{
		AppName:       name,
		ShellExeName:  DefaultShellExeName,
		NativeLibName: DefaultNativeLibName,
		ShellDir:      DefaultShellDir,
		DistDir:       DefaultDistDir,
	}
}

// BrandedExeName returns the branded executable name for the given platform.
// Windows appends the DESK suffix plus extension; other platforms use the bare name.
func (p *Product) BrandedExeName(platform Platform) string {
	if platform == PlatformWindows {
		return p.AppName + "DESK.exe"
	}

	return p.AppName
}
