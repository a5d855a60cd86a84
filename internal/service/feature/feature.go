package feature

import (
	"sort"
	"strings"
)

// Feature names owned by the native library.
const (
	// Inline embeds the legacy UI resources; only meaningful without the shell build.
	Inline = "inline"
	// Flutter switches the native build into shell-library mode.
	Flutter = "flutter"
	// Hwcodec enables hardware video encoding/decoding.
	Hwcodec = "hwcodec"
	// VRAM enables GPU-memory frame transport.
	VRAM = "vram"
	// UnixFileCopyPaste enables file clipboard support on unix hosts.
	UnixFileCopyPaste = "unix-file-copy-paste"
	// ScreenCaptureKit selects the modern macOS capture API.
	ScreenCaptureKit = "screencapturekit"
)

// Flags mirrors the CLI booleans that map to named features.
type Flags struct {
	// Flutter requests the UI shell build.
	Flutter bool
	// Hwcodec enables the hwcodec feature.
	Hwcodec bool
	// VRAM enables the vram feature.
	VRAM bool
	// UnixFileCopyPaste enables the unix-file-copy-paste feature.
	UnixFileCopyPaste bool
	// ScreenCaptureKit requests the screencapturekit feature. macOS hosts
	// enable it by default, so the flag is accepted but adds nothing there,
	// and the feature is unsupported on other hosts.
	ScreenCaptureKit bool
}

// Set is an ordered, duplicate-free collection of feature names.
type Set []string

// Resolve maps flags, host defaults and manual extras to the final Set.
// hostOS is a GOOS value; macOS-only features are dropped on other hosts.
// Unknown manual names pass through unchanged: the native build step is the
// authority on validity and fails loudly on a bad name.
func Resolve(flags Flags, manual []string, hostOS string) Set {
	macHost := hostOS == "darwin"

	names := make(map[string]struct{})

	if flags.Flutter {
		names[Flutter] = struct{}{}
	} else {
		names[Inline] = struct{}{}
	}

	if flags.Hwcodec {
		names[Hwcodec] = struct{}{}
	}

	if flags.VRAM {
		names[VRAM] = struct{}{}
	}

	if flags.UnixFileCopyPaste {
		names[UnixFileCopyPaste] = struct{}{}
	}

	// macOS hosts get the capture and clipboard features by default, which
	// subsumes the explicit screencapturekit flag; other hosts ignore it.
	if macHost {
		names[ScreenCaptureKit] = struct{}{}
		names[UnixFileCopyPaste] = struct{}{}
	}

	for _, name := range manual {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		names[name] = struct{}{}
	}

	set := make(Set, 0, len(names))
	for name := range names {
		set = append(set, name)
	}

	sort.Strings(set)

	return set
}

// ParseManual splits a comma-separated feature string supplied on the CLI.
func ParseManual(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return strings.Split(s, ",")
}

// String serializes the set for the native build command.
func (s Set) String() string {
	return strings.Join(s, ",")
}
