package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/pipeline"
)

// newWindowsProject lays out a project root with the generator script and the
// packer sub-project in place, and returns the request for a flutter build.
func newWindowsProject(t *testing.T) *config.BuildRequest {
	t.Helper()

	root := t.TempDir()

	portable := filepath.Join(root, "libs", "portable")
	require.NoError(t, os.MkdirAll(portable, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(portable, "generate.py"), []byte("# generator"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(portable, "Cargo.toml"), []byte("[package]\n"), 0o644))

	manifest := "[package]\nname = \"remotedesk\"\nversion = \"1.2.3\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(manifest), 0o600))

	product := &config.Product{AppName: "Product"}
	require.NoError(t, config.ValidateProduct(product))

	req, err := config.NewBuildRequest(
		config.PlatformWindows, true, []string{"flutter"},
		"", root, "", false, false, product,
	)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", req.Version)

	return req
}

// windowsToolchain fakes every external tool of the Windows flutter pipeline:
// the native build drops the library, the shell build emits its Release tree,
// the generator packs the blob and the stub compile emits a plausible binary.
func windowsToolchain(t *testing.T, req *config.BuildRequest) *runner.Fake {
	t.Helper()

	return &runner.Fake{
		Paths: map[string]string{"flutter": "/usr/bin/flutter"},
		OnRun: func(cmd runner.Command) error {
			switch {
			case cmd.Name == "cargo" && contains(cmd.Args, "--lib"):
				lib := filepath.Join(req.Layout.TargetReleaseDir, req.Product.NativeLibName)
				if err := os.MkdirAll(filepath.Dir(lib), 0o755); err != nil {
					return err
				}

				return os.WriteFile(lib, []byte("lib"), 0o644)
			case cmd.Name == "cargo":
				stub := filepath.Join(req.Layout.TargetReleaseDir, "product-portable-packer.exe")

				return os.WriteFile(stub, make([]byte, 200_000), 0o755)
			case cmd.Name == "/usr/bin/flutter":
				outDir := req.Layout.ShellBuildDir(config.PlatformWindows)
				if err := os.MkdirAll(filepath.Join(outDir, "data"), 0o755); err != nil {
					return err
				}

				exe := filepath.Join(outDir, req.Product.ShellExeName)

				return os.WriteFile(exe, []byte("shell"), 0o755)
			case strings.HasPrefix(cmd.Name, "python"):
				return os.WriteFile(filepath.Join(req.Layout.DistDir, "data.bin"), []byte("blob"), 0o644)
			default:
				return nil
			}
		},
	}
}

// contains reports whether list holds the exact value.
func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}

	return false
}

// TestWindowsFlutterPipeline_ProducesUnsignedInstaller runs the whole Windows
// flutter pipeline against a fake toolchain and checks the final artifact.
func TestWindowsFlutterPipeline_ProducesUnsignedInstaller(t *testing.T) {
	t.Setenv(config.EnvSignPassphrase, "")

	req := newWindowsProject(t)
	fake := windowsToolchain(t, req)

	art, err := pipeline.Run(context.Background(), req, fake)
	require.NoError(t, err)
	require.NotNil(t, art)
	require.Equal(t, "Product-1.2.3-install.exe", art.Name)
	require.False(t, art.Signed)

	_, err = os.Stat(filepath.Join(req.Layout.DistDir, "Product-1.2.3-install.exe"))
	require.NoError(t, err)

	// The staged tree holds the rebranded executable.
	_, err = os.Stat(filepath.Join(req.Layout.StagingDirFlutter, "ProductDESK.exe"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(req.Layout.StagingDirFlutter, req.Product.ShellExeName))
	require.True(t, os.IsNotExist(err))

	// No signing tool was ever invoked.
	for _, call := range fake.Calls {
		require.NotContains(t, strings.ToLower(call.Name), "signtool")
	}
}

// TestWindowsFlutterPipeline_SkipPortablePack stops after the shell build.
func TestWindowsFlutterPipeline_SkipPortablePack(t *testing.T) {
	t.Setenv(config.EnvSignPassphrase, "")

	req := newWindowsProject(t)
	req.SkipPortablePack = true

	fake := windowsToolchain(t, req)

	art, err := pipeline.Run(context.Background(), req, fake)
	require.NoError(t, err)
	require.Nil(t, art)

	// No installer was produced.
	_, err = os.Stat(filepath.Join(req.Layout.DistDir, "Product-1.2.3-install.exe"))
	require.True(t, os.IsNotExist(err))
}

// TestWindowsFlutterPipeline_MissingNativeLibIsFatal checks the post-build
// verification of the native library.
func TestWindowsFlutterPipeline_MissingNativeLibIsFatal(t *testing.T) {
	t.Setenv(config.EnvSignPassphrase, "")

	req := newWindowsProject(t)
	fake := windowsToolchain(t, req)

	// The native build "succeeds" but produces nothing.
	inner := fake.OnRun
	fake.OnRun = func(cmd runner.Command) error {
		if cmd.Name == "cargo" && contains(cmd.Args, "--lib") {
			return nil
		}

		return inner(cmd)
	}

	_, err := pipeline.Run(context.Background(), req, fake)
	require.Error(t, err)
	require.Equal(t, pipeline.ExitArtifactMissing, pipeline.ExitCode(err))
}

// TestWindowsNativePipeline_StagesLargestExecutable exercises the non-flutter
// path with executable discovery falling back to the size heuristic.
func TestWindowsNativePipeline_StagesLargestExecutable(t *testing.T) {
	t.Setenv(config.EnvSignPassphrase, "")

	req := newWindowsProject(t)
	req.Flutter = false

	fake := &runner.Fake{
		OnRun: func(cmd runner.Command) error {
			switch {
			case cmd.Name == "cargo" && contains(cmd.Args, "--manifest-path"):
				stub := filepath.Join(req.Layout.TargetReleaseDir, "product-portable-packer.exe")

				return os.WriteFile(stub, make([]byte, 200_000), 0o755)
			case cmd.Name == "cargo":
				// The binary build emits helpers plus the real product,
				// none under the branded name.
				if err := os.MkdirAll(req.Layout.TargetReleaseDir, 0o755); err != nil {
					return err
				}

				small := filepath.Join(req.Layout.TargetReleaseDir, "helper.exe")
				if err := os.WriteFile(small, make([]byte, 10*1024), 0o755); err != nil {
					return err
				}

				big := filepath.Join(req.Layout.TargetReleaseDir, "product.exe")

				return os.WriteFile(big, make([]byte, 200*1024), 0o755)
			case strings.HasPrefix(cmd.Name, "python"):
				return os.WriteFile(filepath.Join(req.Layout.DistDir, "data.bin"), []byte("blob"), 0o644)
			default:
				return nil
			}
		},
	}

	art, err := pipeline.Run(context.Background(), req, fake)
	require.NoError(t, err)
	require.NotNil(t, art)

	// The largest executable was staged under the branded name.
	staged, err := os.Stat(filepath.Join(req.Layout.StagingDir, "ProductDESK.exe"))
	require.NoError(t, err)
	require.Equal(t, int64(200*1024), staged.Size())
}
