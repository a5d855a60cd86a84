package apk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/fsutil"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/service/artifact"
)

// releasePackageName is the shell build system's conventional release output.
const releasePackageName = "app-release.apk"

// Finalizer copies the shell's release package to a version-stamped artifact.
type Finalizer struct {
	// Product carries branding configuration.
	Product config.Product
	// Version is stamped into the artifact filename.
	Version string
	// DistDir is where the stamped package lands.
	DistDir string
	// PackageDir is the shell's package output directory.
	PackageDir string
}

// Result reports either a produced artifact or a non-fatal skip.
type Result struct {
	// Artifact is the stamped package; nil when skipped.
	Artifact *artifact.Installer
	// Skipped is true when the shell never produced a release package.
	Skipped bool
}

// Finalize locates the release package and stamps it into the output directory.
func (f *Finalizer) Finalize(ctx context.Context) (*Result, error) {
	ctx = logger.WithName(ctx, "apk")

	source := filepath.Join(f.PackageDir, releasePackageName)

	if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
		logger.WarnKV(ctx, "Release package absent, skipping", "path", source)

		return &Result{Skipped: true}, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", source, err)
	}

	if err := os.MkdirAll(f.DistDir, fsutil.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.apk", f.Product.AppName, f.Version)
	output := filepath.Join(f.DistDir, name)

	if err := fsutil.CopyFile(source, output); err != nil {
		return nil, fmt.Errorf("stamp release package: %w", err)
	}

	logger.InfoKV(ctx, "Package ready", "path", output)
	color.New(color.FgGreen, color.Bold).Printf("output location: %s\n", output)

	return &Result{Artifact: &artifact.Installer{
		Path:     output,
		Platform: config.PlatformAndroid,
		Name:     name,
	}}, nil
}
