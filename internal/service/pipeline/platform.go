package pipeline

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ofarch/relpack/internal/config"
)

// ResolvePlatform maps the CLI platform selector (or, when empty, the host
// environment) to a release pipeline.
func ResolvePlatform(explicit string) (config.Platform, error) {
	return resolvePlatform(explicit, runtime.GOOS, os.Getenv)
}

// resolvePlatform is the testable core of ResolvePlatform. Auto-detection
// prefers the host OS; on other hosts, Android is chosen only when an Android
// SDK marker is present, else Windows is the default.
func resolvePlatform(explicit, goos string, getenv func(string) string) (config.Platform, error) {
	if explicit != "" {
		switch config.Platform(explicit) {
		case config.PlatformWindows, config.PlatformMacOS, config.PlatformAndroid:
			return config.Platform(explicit), nil
		default:
			return "", withCode(ExitUnsupportedPlatform, fmt.Errorf("unsupported platform %q", explicit))
		}
	}

	switch goos {
	case "darwin":
		return config.PlatformMacOS, nil
	case "windows":
		return config.PlatformWindows, nil
	default:
		if getenv(config.EnvAndroidHome) != "" || getenv(config.EnvAndroidSDKRoot) != "" {
			return config.PlatformAndroid, nil
		}

		return config.PlatformWindows, nil
	}
}
