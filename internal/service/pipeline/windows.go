package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/fsutil"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/artifact"
	"github.com/ofarch/relpack/internal/service/installer"
	"github.com/ofarch/relpack/internal/service/staging"
)

// virtualDisplayLib is an optional capture helper staged next to the product.
const virtualDisplayLib = "dylib_virtual_display.dll"

// sciterAuxCandidates mirrors the conventional drop locations of the legacy
// UI runtime library.
func sciterAuxCandidates(layout config.Layout) []string {
	return []string{
		filepath.Join(layout.RootDir, "sciter.dll"),
		filepath.Join(layout.TargetReleaseDir, "sciter.dll"),
		filepath.Join(layout.RootDir, "libs", "sciter", "sciter.dll"),
		filepath.Join(layout.RootDir, "res", "sciter.dll"),
	}
}

// runWindows dispatches between the shell-based and native-binary Windows paths.
func runWindows(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	if err := buildVirtualDisplay(ctx, req, run); err != nil {
		return nil, err
	}

	if req.Flutter {
		return runWindowsFlutter(ctx, req, run)
	}

	return runWindowsNative(ctx, req, run)
}

// buildVirtualDisplay compiles the optional virtual-display sub-project before
// either Windows branch, so its library is in place for staging. A project
// without the sub-project skips the step; a failing compile is fatal.
func buildVirtualDisplay(ctx context.Context, req *config.BuildRequest, run runner.Runner) error {
	if _, err := os.Stat(req.Layout.VirtualDisplayDir); err != nil {
		logger.DebugKV(ctx, "Virtual display sub-project absent, skipping", "path", req.Layout.VirtualDisplayDir)

		return nil
	}

	logger.InfoKV(ctx, "Building virtual display library", "path", req.Layout.VirtualDisplayDir)

	cmd := runner.Command{
		Name: "cargo",
		Args: []string{"build", "--release"},
		Dir:  req.Layout.VirtualDisplayDir,
	}

	if err := run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("virtual display build: %w", err)
	}

	return nil
}

// embedInlineResources runs the resource-embed script the non-shell build
// needs before compiling. A missing script is a warning; a failing run is fatal.
func embedInlineResources(ctx context.Context, req *config.BuildRequest, run runner.Runner) error {
	if _, err := os.Stat(req.Layout.InlineResourceScript); err != nil {
		logger.WarnKV(ctx, "Resource embed script absent, skipping", "path", req.Layout.InlineResourceScript)

		return nil
	}

	logger.InfoKV(ctx, "Embedding UI resources", "script", req.Layout.InlineResourceScript)

	cmd := runner.Command{
		Name: installer.PythonExecutable(),
		Args: []string{req.Layout.InlineResourceScript},
		Dir:  req.Layout.RootDir,
	}

	if err := run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("embed resources: %w", err)
	}

	return nil
}

// runWindowsFlutter builds the native library, the UI shell, stages the shell
// output and packages it into the final installer.
func runWindowsFlutter(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	if !req.SkipNativeBuild {
		if err := buildNative(ctx, req, run, true); err != nil {
			return nil, err
		}

		lib := filepath.Join(req.Layout.TargetReleaseDir, req.Product.NativeLibName)
		if _, err := os.Stat(lib); err != nil {
			return nil, withCode(ExitArtifactMissing,
				fmt.Errorf("native build produced no %s: %w", req.Product.NativeLibName, err))
		}
	}

	if err := buildShell(ctx, req, run, "windows"); err != nil {
		return nil, err
	}

	outDir, err := locateShellOutput(req.Layout)
	if err != nil {
		return nil, err
	}

	stageVirtualDisplay(ctx, req.Layout, outDir.Path)

	if req.SkipPortablePack {
		logger.Info(ctx, "Portable packaging skipped by request")

		return nil, nil
	}

	// The output root is reset wholesale so stale blobs from a previous,
	// possibly differently-configured run cannot leak into this installer.
	if err := fsutil.ResetDir(req.Layout.DistDir); err != nil {
		return nil, err
	}

	tree, err := staging.StageDir(ctx, req.Layout.StagingDirFlutter, outDir.Path, nil)
	if err != nil {
		return nil, err
	}

	branded := req.Product.BrandedExeName(config.PlatformWindows)

	if err := tree.EnsureExecutable(ctx, req.Product.ShellExeName, branded); err != nil {
		return nil, withCode(ExitArtifactMissing, err)
	}

	return buildInstaller(ctx, req, run, tree, branded)
}

// runWindowsNative builds the standalone native binary, optionally signs it,
// stages it with its runtime libraries and packages the installer.
func runWindowsNative(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	branded := req.Product.BrandedExeName(config.PlatformWindows)

	if !req.SkipNativeBuild {
		if err := embedInlineResources(ctx, req, run); err != nil {
			return nil, err
		}

		// Drop any binary left by an earlier run, so a build that emits
		// nothing cannot silently re-stage a stale product.
		stale := filepath.Join(req.Layout.TargetReleaseDir, branded)
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.WarnKV(ctx, "Cannot remove previous product binary", "path", stale, "error", err)
		}

		if err := buildNative(ctx, req, run, false); err != nil {
			return nil, err
		}
	}

	exe, err := locateNativeExe(req.Layout, branded)
	if err != nil {
		return nil, err
	}

	if err := signRawBinary(ctx, req, run, exe.Path); err != nil {
		return nil, err
	}

	if err := fsutil.ResetDir(req.Layout.DistDir); err != nil {
		return nil, err
	}

	tree, err := staging.StageFile(ctx, req.Layout.StagingDir, exe.Path, branded, []staging.AuxFile{
		{Candidates: sciterAuxCandidates(req.Layout), Name: "sciter.dll"},
	})
	if err != nil {
		return nil, err
	}

	return buildInstaller(ctx, req, run, tree, branded)
}

// buildInstaller hands the staged tree to the Windows installer builder.
func buildInstaller(
	ctx context.Context,
	req *config.BuildRequest,
	run runner.Runner,
	tree *staging.Tree,
	launchExe string,
) (*artifact.Installer, error) {
	builder := &installer.Builder{
		Runner:  run,
		Layout:  req.Layout,
		Product: req.Product,
		Version: req.Version,
	}

	return builder.Build(ctx, tree, launchExe)
}

// locateShellOutput finds the shell's Windows build directory across layout
// variants of different toolchain versions.
func locateShellOutput(layout config.Layout) (*artifact.Handle, error) {
	candidates := []string{
		layout.ShellBuildDir(config.PlatformWindows),
		// Older toolchains omitted the architecture segment.
		filepath.Join(layout.ShellDir, "build", "windows", "runner", "Release"),
	}

	handle, err := artifact.FindDir(candidates, &artifact.FallbackSearch{
		Root:      filepath.Join(layout.ShellDir, "build", "windows"),
		RelSuffix: "runner/Release",
	})
	if artifact.IsNotFound(err) {
		return nil, withCode(ExitArtifactMissing, err)
	} else if err != nil {
		return nil, err
	}

	return handle, nil
}

// locateNativeExe resolves the compiled product binary: the branded name when
// present, otherwise the largest executable in the release directory.
func locateNativeExe(layout config.Layout, branded string) (*artifact.Handle, error) {
	exact := filepath.Join(layout.TargetReleaseDir, branded)

	if _, err := os.Stat(exact); err == nil {
		return &artifact.Handle{Path: exact, FoundVia: exact}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", exact, err)
	}

	handle, err := artifact.LargestExecutable(layout.TargetReleaseDir, ".exe")
	if artifact.IsNotFound(err) {
		return nil, withCode(ExitArtifactMissing, err)
	} else if err != nil {
		return nil, err
	}

	return handle, nil
}

// signRawBinary signs the unpacked product binary when a passphrase is
// present. Unlike installer signing this touches the binary itself, so users
// launching the extracted executable see a valid signature too.
func signRawBinary(ctx context.Context, req *config.BuildRequest, run runner.Runner, exe string) error {
	passphrase := os.Getenv(config.EnvSignPassphrase)
	if passphrase == "" {
		logger.Info(ctx, "No signing passphrase present, binary left unsigned")

		return nil
	}

	signtool, err := installer.FindSigntool(run, "")
	if err != nil {
		return fmt.Errorf("signing requested but no signing tool found: %w", err)
	}

	return installer.Sign(ctx, run, signtool, exe, passphrase, req.Layout.CertFile)
}

// stageVirtualDisplay copies the optional virtual-display helper into the
// shell output so it ships inside the staged tree. Absence is fine.
func stageVirtualDisplay(ctx context.Context, layout config.Layout, outDir string) {
	src := filepath.Join(layout.TargetReleaseDir, "deps", virtualDisplayLib)

	if _, err := os.Stat(src); err != nil {
		return
	}

	if err := fsutil.CopyFile(src, filepath.Join(outDir, virtualDisplayLib)); err != nil {
		logger.WarnKV(ctx, "Cannot stage virtual display helper", "error", err)

		return
	}

	logger.InfoKV(ctx, "Staged virtual display helper", "from", src)
}
