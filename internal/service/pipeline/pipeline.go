package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/artifact"
)

// Run executes the platform pipeline selected by the request and returns the
// final artifact. A nil artifact with a nil error means every fatal stage
// succeeded but the finalizer was skipped (best-effort step or an explicit
// skip flag).
func Run(ctx context.Context, req *config.BuildRequest, run runner.Runner) (*artifact.Installer, error) {
	ctx = logger.WithName(ctx, "pipeline")

	logger.InfoKV(ctx, "Starting packaging run",
		"platform", req.Platform,
		"version", req.Version,
		"features", req.Features,
	)

	release := acquireRunMarker(ctx, req.Layout.RootDir)
	defer release()

	switch req.Platform {
	case config.PlatformWindows:
		return runWindows(ctx, req, run)
	case config.PlatformMacOS:
		return runMacOS(ctx, req, run)
	case config.PlatformAndroid:
		return runAndroid(ctx, req, run)
	default:
		return nil, withCode(ExitUnsupportedPlatform, fmt.Errorf("unsupported platform %q", req.Platform))
	}
}

// buildNative runs the native toolchain build with the resolved feature set.
// lib selects library mode (the shell links the native code as a library).
func buildNative(ctx context.Context, req *config.BuildRequest, run runner.Runner, lib bool) error {
	args := []string{"build"}

	if lib {
		args = append(args, "--lib")
	}

	args = append(args, "--release")

	features := strings.Join(req.Features, ",")
	if features != "" {
		args = append(args, "--features", features)
	}

	logger.InfoKV(ctx, "Building native library", "features", features)

	cmd := runner.Command{Name: "cargo", Args: args, Dir: req.Layout.RootDir}

	if err := run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("native build: %w", err)
	}

	return nil
}

// buildShell runs the UI shell build for the given platform subcommand.
// A missing shell toolchain is a configuration error with its own exit code.
func buildShell(ctx context.Context, req *config.BuildRequest, run runner.Runner, subcommand string) error {
	flutterPath, err := run.LookPath("flutter")
	if err != nil {
		return withCode(ExitShellUnavailable, fmt.Errorf("UI shell toolchain unavailable: %w", err))
	}

	logger.InfoKV(ctx, "Building UI shell", "target", subcommand)

	cmd := runner.Command{
		Name: flutterPath,
		Args: []string{"build", subcommand, "--release"},
		Dir:  req.Layout.ShellDir,
	}

	if err := run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("shell build: %w", err)
	}

	return nil
}
