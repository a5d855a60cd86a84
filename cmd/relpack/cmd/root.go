package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
	"github.com/ofarch/relpack/internal/service/feature"
	"github.com/ofarch/relpack/internal/service/pipeline"
	"github.com/ofarch/relpack/internal/version"
)

var (
	// productPath points at the product configuration YAML file.
	productPath string

	// platformFlag selects the release pipeline; empty means auto-detect.
	platformFlag string

	// shellDirFlag overrides the UI shell project directory.
	shellDirFlag string

	// releaseVersionFlag overrides version resolution entirely.
	releaseVersionFlag string

	// manualFeatures is a comma-separated list of extra native features.
	manualFeatures string

	// logLevelFlag adjusts logging verbosity.
	logLevelFlag string

	// Feature and behavior toggles.
	flutterFlag           bool
	hwcodecFlag           bool
	vramFlag              bool
	unixFileCopyPasteFlag bool
	screenCaptureKitFlag  bool
	skipPortablePackFlag  bool
	skipNativeBuildFlag   bool

	// rootCmd represents the base command producing one platform distributable.
	rootCmd = &cobra.Command{
		Use:          "relpack",
		Short:        "Package the product into its platform distributable",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if lvl, ok := logger.ParseLogLevel(logLevelFlag); ok {
				logger.SetLevel(lvl)
			}

			platform, err := pipeline.ResolvePlatform(platformFlag)
			if err != nil {
				return err
			}

			product, err := config.LoadProduct(productPath)
			if err != nil {
				return err
			}

			features := feature.Resolve(feature.Flags{
				Flutter:           flutterFlag,
				Hwcodec:           hwcodecFlag,
				VRAM:              vramFlag,
				UnixFileCopyPaste: unixFileCopyPasteFlag,
				ScreenCaptureKit:  screenCaptureKitFlag,
			}, feature.ParseManual(manualFeatures), runtime.GOOS)

			request, err := config.NewBuildRequest(
				platform,
				flutterFlag,
				features,
				releaseVersionFlag,
				"",
				shellDirFlag,
				skipPortablePackFlag,
				skipNativeBuildFlag,
				product,
			)
			if err != nil {
				return err
			}

			_, err = pipeline.Run(ctx, request, runner.Exec{})

			return err
		},
	}
)

// Execute runs the relpack CLI and exits with the pipeline's exit code on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(pipeline.ExitCode(err))
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&productPath, "config", "c", config.DefaultProductFilename, "path to product configuration file")
	flags.StringVarP(&platformFlag, "platform", "p", "", "target platform: windows, macos or android (default: auto-detect)")
	flags.StringVar(&shellDirFlag, "shell-dir", "", "override the UI shell project directory")
	flags.StringVar(&releaseVersionFlag, "release-version", "", "override the product version (default: native manifest)")
	flags.StringVarP(&manualFeatures, "feature", "f", "", "comma-separated extra native features")
	flags.StringVar(&logLevelFlag, "log-level", "info", "logging level: debug, info, warn, error or fatal")
	flags.BoolVar(&flutterFlag, "flutter", false, "build and package the UI shell")
	flags.BoolVar(&hwcodecFlag, "hwcodec", false, "enable the hwcodec feature")
	flags.BoolVar(&vramFlag, "vram", false, "enable the vram feature")
	flags.BoolVar(&unixFileCopyPasteFlag, "unix-file-copy-paste", false, "enable the unix file copy-paste feature")
	flags.BoolVar(&screenCaptureKitFlag, "screencapturekit", false, "enable the screencapturekit feature (macOS hosts)")
	flags.BoolVar(&skipPortablePackFlag, "skip-portable-pack", false, "skip installer packaging after the Windows shell build")
	flags.BoolVar(&skipNativeBuildFlag, "skip-native-build", false, "skip the native compile step")
}
