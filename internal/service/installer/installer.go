package installer

import (
	"context"
	"crypto"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	// Ensure SHA512 is available for the checksum sidecar.
	_ "crypto/sha512"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/fsutil"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/artifact"
	"github.com/ofarch/relpack/internal/service/staging"
)

const (
	// blobFilename is the packed data blob the generator must produce.
	blobFilename = "data.bin"

	// minStubSize rejects stub skeletons that did not actually embed logic.
	minStubSize = 100_000

	// windowsExeSuffix is the executable suffix of the target platform.
	// The installer path only exists for Windows releases.
	windowsExeSuffix = ".exe"
)

// Builder produces the final Windows installer from a staged tree.
type Builder struct {
	// Runner executes the generator, the stub compile and signtool.
	Runner runner.Runner
	// Layout carries the resolved directory layout.
	Layout config.Layout
	// Product carries branding configuration.
	Product config.Product
	// Version is stamped into the installer filename.
	Version string
	// SigntoolSearchDir overrides the Windows SDK scan root; empty means the default.
	SigntoolSearchDir string
}

// Build runs the installer protocol against the staged tree. launchExe is the
// relative name of the executable the installer launches after install.
func (b *Builder) Build(ctx context.Context, tree *staging.Tree, launchExe string) (*artifact.Installer, error) {
	ctx = logger.WithName(ctx, "installer")

	// The generator script is a hard prerequisite.
	if _, err := os.Stat(b.Layout.PortableGenerator); err != nil {
		return nil, fmt.Errorf("installer generator script missing at %s: %w", b.Layout.PortableGenerator, err)
	}

	if err := os.MkdirAll(b.Layout.DistDir, fsutil.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if err := b.runGenerator(ctx, tree.Dir, launchExe); err != nil {
		return nil, err
	}

	blob := filepath.Join(b.Layout.DistDir, blobFilename)
	if _, err := os.Stat(blob); err != nil {
		return nil, fmt.Errorf("generator produced no %s\n%s\n%s",
			blobFilename, fsutil.ListDir(b.Layout.DistDir), fsutil.ListDir(tree.Dir))
	}

	stub, err := b.buildPackerStub(ctx)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s-install%s", b.Product.AppName, b.Version, windowsExeSuffix)
	finalPath := filepath.Join(b.Layout.DistDir, name)

	if err := placeAtomically(stub, finalPath); err != nil {
		return nil, fmt.Errorf("place installer: %w", err)
	}

	signed, err := b.maybeSign(ctx, finalPath)
	if err != nil {
		return nil, err
	}

	if err := WriteChecksumSidecar(finalPath); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Installer ready", "path", finalPath, "signed", signed)
	color.New(color.FgGreen, color.Bold).Printf("output location: %s\n", finalPath)

	return &artifact.Installer{
		Path:     finalPath,
		Platform: config.PlatformWindows,
		Name:     name,
		Signed:   signed,
	}, nil
}

// runGenerator invokes the external installer generator against the staged
// tree: source dir, output dir and the post-install launch target.
func (b *Builder) runGenerator(ctx context.Context, stagingDir, launchExe string) error {
	logger.InfoKV(ctx, "Running installer generator", "staging", stagingDir, "out", b.Layout.DistDir)

	cmd := runner.Command{
		Name: PythonExecutable(),
		Args: []string{
			b.Layout.PortableGenerator,
			"-f", stagingDir,
			"-o", b.Layout.DistDir,
			"-e", launchExe,
		},
		Dir: b.Layout.PortableDir,
	}

	if err := b.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("installer generator: %w", err)
	}

	return nil
}

// buildPackerStub compiles the packer sub-project and selects the resulting
// stub binary from the build output directory.
func (b *Builder) buildPackerStub(ctx context.Context) (string, error) {
	if _, err := os.Stat(b.Layout.PortableManifest); err != nil {
		return "", fmt.Errorf("packer stub project missing at %s: %w", b.Layout.PortableManifest, err)
	}

	cmd := runner.Command{
		Name: "cargo",
		Args: []string{"build", "--manifest-path", b.Layout.PortableManifest, "--release"},
		Dir:  b.Layout.RootDir,
	}

	if err := b.Runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("compile packer stub: %w", err)
	}

	candidates, err := artifact.Collect(b.Layout.TargetReleaseDir, func(name string) bool {
		lower := strings.ToLower(name)

		return strings.Contains(lower, "packer") && strings.HasSuffix(lower, windowsExeSuffix)
	})
	if err != nil {
		return "", err
	}

	// Drop trivially small binaries: a stub that embedded nothing is useless.
	plausible := candidates[:0]

	for _, c := range candidates {
		if c.Size > minStubSize {
			plausible = append(plausible, c)
		}
	}

	best, ok := artifact.Rank(plausible, artifact.NewestThenLargest)
	if !ok {
		return "", fmt.Errorf("no compiled packer stub in %s\n%s",
			b.Layout.TargetReleaseDir, fsutil.ListDir(b.Layout.TargetReleaseDir))
	}

	logger.InfoKV(ctx, "Selected packer stub", "path", best.Path, "size", best.Size)

	return best.Path, nil
}

// maybeSign signs the installer when a passphrase is present in the
// environment. A missing passphrase leaves the artifact unsigned, logged but
// not an error; once signing is requested, any failure is fatal.
func (b *Builder) maybeSign(ctx context.Context, target string) (bool, error) {
	passphrase := os.Getenv(config.EnvSignPassphrase)
	if passphrase == "" {
		logger.Info(ctx, "No signing passphrase present, installer left unsigned")

		return false, nil
	}

	signtool, err := FindSigntool(b.Runner, b.SigntoolSearchDir)
	if err != nil {
		return false, fmt.Errorf("signing requested but no signing tool found: %w", err)
	}

	if err := Sign(ctx, b.Runner, signtool, target, passphrase, b.Layout.CertFile); err != nil {
		return false, err
	}

	return true, nil
}

// placeAtomically copies src next to dst and renames it into place, so a
// failed copy never leaves a half-written file at the final path.
func placeAtomically(src, dst string) error {
	tmp := dst + ".tmp"

	if err := fsutil.CopyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)

		return err
	}

	return os.Rename(tmp, dst)
}

// PythonExecutable names the interpreter that runs the pipeline's helper scripts.
func PythonExecutable() string {
	// The Windows launcher installs `python`; unix hosts ship `python3`.
	if isWindowsHost() {
		return "python"
	}

	return "python3"
}

// isWindowsHost reports whether the pipeline itself runs on Windows.
func isWindowsHost() bool {
	return os.PathSeparator == '\\'
}

// checksumFunction is used for the artifact checksum sidecar.
const checksumFunction = crypto.SHA512

// WriteChecksumSidecar writes a base64 SHA-512 digest next to the artifact
// so a release upload can be verified end to end.
func WriteChecksumSidecar(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	hasher := checksumFunction.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	digest := base64.StdEncoding.EncodeToString(hasher.Sum(nil))
	sidecar := path + ".sha512"

	if err := os.WriteFile(sidecar, []byte(digest+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checksum sidecar: %w", err)
	}

	return nil
}
