package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Platform identifies one of the three supported release pipelines.
type Platform string

const (
	// PlatformWindows produces a signed self-contained installer.
	PlatformWindows Platform = "windows"
	// PlatformMacOS produces a disk image from the staged application bundle.
	PlatformMacOS Platform = "macos"
	// PlatformAndroid produces a version-stamped package archive.
	PlatformAndroid Platform = "android"
)

// Environment variables consumed by the pipeline.
const (
	// EnvSignPassphrase requests installer signing when non-empty.
	EnvSignPassphrase = "RELPACK_SIGN_PASSPHRASE"
	// EnvSigntool overrides signing-tool discovery with an explicit path.
	EnvSigntool = "SIGNTOOL"
	// EnvVersion overrides version resolution from the native manifest.
	EnvVersion = "RELPACK_VERSION"
	// EnvAppName overrides the product name prefix.
	EnvAppName = "RELPACK_APP_NAME"
	// EnvAndroidHome marks an Android SDK installation for platform auto-detection.
	EnvAndroidHome = "ANDROID_HOME"
	// EnvAndroidSDKRoot is the older Android SDK marker, checked alongside ANDROID_HOME.
	EnvAndroidSDKRoot = "ANDROID_SDK_ROOT"
)

// BuildRequest is the immutable configuration for one pipeline run.
// It is created once at startup and threaded through every stage.
type BuildRequest struct {
	// Platform selects the release pipeline to run.
	Platform Platform
	// Flutter requests the UI shell build (the non-flutter Windows path stages
	// the raw native binary instead).
	Flutter bool
	// Features is the resolved, deduplicated, lexicographically ordered feature set.
	Features []string
	// Version is the product version stamped into artifact names.
	Version string
	// SkipPortablePack skips installer packaging after the Windows shell build.
	SkipPortablePack bool
	// SkipNativeBuild skips the native compile step (shell-only iteration).
	SkipNativeBuild bool
	// Product carries branding and layout configuration.
	Product Product
	// Layout carries every path the pipeline touches, resolved once.
	Layout Layout
}

// Layout holds the directory layout for one run. All paths are absolute.
type Layout struct {
	// RootDir is the project root (working directory at startup).
	RootDir string
	// ShellDir is the UI shell project directory.
	ShellDir string
	// TargetReleaseDir is where the native toolchain drops release binaries.
	TargetReleaseDir string
	// DistDir is the root output directory for final artifacts.
	DistDir string
	// StagingDir receives the staged product tree (native-binary variant).
	StagingDir string
	// StagingDirFlutter receives the staged product tree (shell variant).
	StagingDirFlutter string
	// PortableDir is the installer-generator sub-project directory.
	PortableDir string
	// PortableGenerator is the installer-generator script path.
	PortableGenerator string
	// PortableManifest is the packer-stub sub-project manifest.
	PortableManifest string
	// NativeManifest is the native project manifest holding the product version.
	NativeManifest string
	// CertFile is the fixed certificate path used by the signing step.
	CertFile string
	// VirtualDisplayDir is the optional virtual-display sub-project directory.
	VirtualDisplayDir string
	// InlineResourceScript is the optional resource-embed script for non-shell builds.
	InlineResourceScript string
}

// NewBuildRequest assembles the immutable run configuration.
// rootDir defaults to the current working directory.
func NewBuildRequest(
	platform Platform,
	flutter bool,
	features []string,
	versionOverride string,
	rootDir string,
	shellDirOverride string,
	skipPortablePack bool,
	skipNativeBuild bool,
	product *Product,
) (*BuildRequest, error) {
	if err := ValidateProduct(product); err != nil {
		return nil, err
	}

	switch platform {
	case PlatformWindows, PlatformMacOS, PlatformAndroid:
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}

	if rootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}

		rootDir = cwd
	}

	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	shellDir := product.ShellDir
	if shellDirOverride != "" {
		shellDir = shellDirOverride
	}

	layout := newLayout(rootDir, shellDir, product.DistDir)

	ver := versionOverride
	if ver == "" {
		ver, err = ResolveVersion(layout.NativeManifest)
		if err != nil {
			return nil, err
		}
	}

	return &BuildRequest{
		Platform:         platform,
		Flutter:          flutter,
		Features:         features,
		Version:          ver,
		SkipPortablePack: skipPortablePack,
		SkipNativeBuild:  skipNativeBuild,
		Product:          *product,
		Layout:           layout,
	}, nil
}

// newLayout resolves every pipeline path against the project root.
// An already absolute shell directory is taken as-is.
func newLayout(rootDir, shellDir, distDir string) Layout {
	abs := func(parts ...string) string {
		return filepath.Join(append([]string{rootDir}, parts...)...)
	}

	shellPath := abs(shellDir)
	if filepath.IsAbs(shellDir) {
		shellPath = filepath.Clean(shellDir)
	}

	portableDir := abs("libs", "portable")

	return Layout{
		RootDir:              rootDir,
		ShellDir:             shellPath,
		TargetReleaseDir:     abs("target", "release"),
		DistDir:              abs(distDir),
		StagingDir:           abs(distDir, "app"),
		StagingDirFlutter:    abs(distDir, "app_fl"),
		PortableDir:          portableDir,
		PortableGenerator:    filepath.Join(portableDir, "generate.py"),
		PortableManifest:     filepath.Join(portableDir, "Cargo.toml"),
		NativeManifest:       abs("Cargo.toml"),
		CertFile:             abs("cert.pfx"),
		VirtualDisplayDir:    abs("libs", "virtual_display", "dylib"),
		InlineResourceScript: abs("res", "inline-sciter.py"),
	}
}

// ShellBuildDir returns the UI shell's conventional build output directory
// for the given platform, resolved against the shell project directory.
func (l Layout) ShellBuildDir(platform Platform) string {
	switch platform {
	case PlatformWindows:
		return filepath.Join(l.ShellDir, "build", "windows", "x64", "runner", "Release")
	case PlatformMacOS:
		return filepath.Join(l.ShellDir, "build", "macos", "Build", "Products", "Release")
	case PlatformAndroid:
		return filepath.Join(l.ShellDir, "build", "app", "outputs", "flutter-apk")
	default:
		return l.ShellDir
	}
}
