package pipeline

import (
	"context"
	"path/filepath"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/fsutil"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/artifact"
	"github.com/ofarch/relpack/internal/service/dmg"
	"github.com/ofarch/relpack/internal/service/staging"
)

// runMacOS builds the native library and the shell, stages the application
// bundle and packages it into a disk image. Disk-image creation is
// best-effort: a missing tool skips the finalizer without failing the run.
func runMacOS(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	if !req.SkipNativeBuild {
		if err := buildNative(ctx, req, run, true); err != nil {
			return nil, err
		}
	}

	if err := buildShell(ctx, req, run, "macos"); err != nil {
		return nil, err
	}

	outDir, err := locateMacShellOutput(req.Layout)
	if err != nil {
		return nil, err
	}

	bundle, err := artifact.FirstBundle(outDir.Path)
	if artifact.IsNotFound(err) {
		return nil, withCode(ExitArtifactMissing, err)
	} else if err != nil {
		return nil, err
	}

	if err := fsutil.ResetDir(req.Layout.DistDir); err != nil {
		return nil, err
	}

	_, stagedApp, err := staging.StageBundle(ctx, req.Layout.StagingDirFlutter, bundle.Path)
	if err != nil {
		return nil, err
	}

	builder := &dmg.Builder{
		Runner:  run,
		Product: req.Product,
		Version: req.Version,
		DistDir: req.Layout.DistDir,
	}

	result, err := builder.Build(ctx, stagedApp)
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		logger.Warn(ctx, "Disk image skipped; staged bundle left in place")

		return nil, nil
	}

	return result.Artifact, nil
}

// locateMacShellOutput finds the shell's macOS build products directory.
func locateMacShellOutput(layout config.Layout) (*artifact.Handle, error) {
	candidates := []string{layout.ShellBuildDir(config.PlatformMacOS)}

	handle, err := artifact.FindDir(candidates, &artifact.FallbackSearch{
		Root:      filepath.Join(layout.ShellDir, "build", "macos"),
		RelSuffix: "Products/Release",
	})
	if artifact.IsNotFound(err) {
		return nil, withCode(ExitArtifactMissing, err)
	} else if err != nil {
		return nil, err
	}

	return handle, nil
}
