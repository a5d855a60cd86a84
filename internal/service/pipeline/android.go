package pipeline

import (
	"context"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/apk"
	"github.com/ofarch/relpack/internal/service/artifact"
)

// runAndroid builds the shell package and stamps it with name and version.
// The native library is compiled inside the shell's own Android build, so
// there is no separate native step here.
func runAndroid(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	if err := buildShell(ctx, req, run, "apk"); err != nil {
		return nil, err
	}

	finalizer := &apk.Finalizer{
		Product:    req.Product,
		Version:    req.Version,
		DistDir:    req.Layout.DistDir,
		PackageDir: req.Layout.ShellBuildDir(config.PlatformAndroid),
	}

	result, err := finalizer.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		logger.Warn(ctx, "Release package absent; nothing to stamp")

		return nil, nil
	}

	return result.Artifact, nil
}
