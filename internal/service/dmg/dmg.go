package dmg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/artifact"
)

const (
	// toolName is the third-party disk-image packaging tool.
	toolName = "create-dmg"

	// unmountTunable is the retry-count assignment patched inside the tool.
	unmountTunable = "MAXIMUM_UNMOUNTING_ATTEMPTS=3"

	// unmountTunableRaised is the raised replacement value.
	unmountTunableRaised = "MAXIMUM_UNMOUNTING_ATTEMPTS=7"
)

// Builder produces the macOS disk image from a staged application bundle.
type Builder struct {
	// Runner executes the packaging tool.
	Runner runner.Runner
	// Product carries branding configuration.
	Product config.Product
	// Version is stamped into the image filename.
	Version string
	// DistDir is where the image lands.
	DistDir string
	// Arch overrides the architecture tag in the image name; empty uses the host.
	Arch string
}

// Result reports either a produced artifact or a non-fatal skip.
type Result struct {
	// Artifact is the produced disk image; nil when skipped.
	Artifact *artifact.Installer
	// Skipped is true when the packaging tool was absent.
	Skipped bool
}

// Build creates the disk image for the staged bundle. A missing tool is a
// warning and a skipped result; a failing tool invocation is an error.
func (b *Builder) Build(ctx context.Context, stagedApp string) (*Result, error) {
	ctx = logger.WithName(ctx, "dmg")

	toolPath, err := b.Runner.LookPath(toolName)
	if err != nil {
		logger.WarnKV(ctx, "Disk-image tool not found, skipping image creation", "tool", toolName)

		return &Result{Skipped: true}, nil
	}

	patchUnmountRetries(ctx, toolPath)

	name := fmt.Sprintf("%s-%s-%s.dmg", b.Product.AppName, b.Version, b.arch())
	output := filepath.Join(b.DistDir, name)

	cmd := runner.Command{
		Name: toolPath,
		Args: []string{
			"--icon", filepath.Base(stagedApp), "200", "190",
			"--icon-size", "100",
			"--window-pos", "200", "120",
			"--window-size", "600", "400",
			"--app-drop-link", "400", "190",
			"--hide-extension", filepath.Base(stagedApp),
			output,
			stagedApp,
		},
	}

	// Once attempted, image creation must succeed.
	if err := b.Runner.Run(ctx, cmd); err != nil {
		return nil, fmt.Errorf("create disk image: %w", err)
	}

	logger.InfoKV(ctx, "Disk image ready", "path", output)
	color.New(color.FgGreen, color.Bold).Printf("output location: %s\n", output)

	return &Result{Artifact: &artifact.Installer{
		Path:     output,
		Platform: config.PlatformMacOS,
		Name:     name,
	}}, nil
}

// arch returns the architecture tag for the image name.
func (b *Builder) arch() string {
	if b.Arch != "" {
		return b.Arch
	}

	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}

// patchUnmountRetries raises the tool's hardcoded unmount retry count in
// place. Re-applying when the value is already raised is a no-op, and a
// script that cannot be read or written is left alone with a warning.
func patchUnmountRetries(ctx context.Context, toolPath string) {
	real, err := filepath.EvalSymlinks(toolPath)
	if err != nil {
		logger.WarnKV(ctx, "Cannot resolve disk-image tool path, skipping patch", "error", err)

		return
	}

	contents, err := os.ReadFile(filepath.Clean(real))
	if err != nil {
		logger.WarnKV(ctx, "Cannot read disk-image tool script, skipping patch", "error", err)

		return
	}

	if !bytes.Contains(contents, []byte(unmountTunable)) {
		// Already raised, or a tool version without the tunable.
		return
	}

	info, err := os.Stat(real)
	if err != nil {
		logger.WarnKV(ctx, "Cannot stat disk-image tool script, skipping patch", "error", err)

		return
	}

	patched := bytes.ReplaceAll(contents, []byte(unmountTunable), []byte(unmountTunableRaised))

	if err := os.WriteFile(real, patched, info.Mode()); err != nil {
		logger.WarnKV(ctx, "Cannot patch disk-image tool script", "error", err)

		return
	}

	logger.InfoKV(ctx, "Raised disk-image tool unmount retries", "script", real)
}
