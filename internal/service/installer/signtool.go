package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ofarch/relpack/internal/config"
	"github.com/ofarch/relpack/internal/logger"
	"github.com/ofarch/relpack/internal/runner"
)

const (
	// defaultWindowsKitsBin is the conventional Windows SDK tool root.
	defaultWindowsKitsBin = `C:\Program Files (x86)\Windows Kits\10\bin`

	// timestampURL is the timestamp authority used when signing.
	timestampURL = "http://timestamp.digicert.com"

	// signatureDigest is the hash algorithm fixed for both file and timestamp digests.
	signatureDigest = "sha256"
)

// sdkArchOrder is the per-version architecture preference when scanning the SDK.
var sdkArchOrder = []string{"x64", "x86", "arm64", "arm"}

// errSigntoolNotFound is returned when no discovery step yields a signing tool.
var errSigntoolNotFound = errors.New(
	"signtool not found: install the Windows SDK or set SIGNTOOL to the full tool path")

// FindSigntool locates the signing tool: the SIGNTOOL environment override
// wins, then PATH, then a newest-first scan of conventional SDK install
// locations. searchDir overrides the SDK root (used by tests); empty means
// the conventional location.
func FindSigntool(run runner.Runner, searchDir string) (string, error) {
	if override := os.Getenv(config.EnvSigntool); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, nil
		}
	}

	for _, name := range []string{"signtool.exe", "signtool"} {
		if path, err := run.LookPath(name); err == nil {
			return path, nil
		}
	}

	if searchDir == "" {
		searchDir = defaultWindowsKitsBin
	}

	if path := scanSDK(searchDir); path != "" {
		return path, nil
	}

	return "", errSigntoolNotFound
}

// scanSDK walks versioned SDK directories newest-first and returns the first
// signtool binary found, preferring x64 within each version.
func scanSDK(base string) string {
	entries, err := os.ReadDir(base)
	if err != nil {
		return ""
	}

	versions := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}

	// Version directories sort descending so the newest SDK wins.
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))

	for _, version := range versions {
		for _, arch := range sdkArchOrder {
			candidate := filepath.Join(base, version, arch, "signtool.exe")
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	return ""
}

// Sign invokes the signing tool against target with the fixed digest
// algorithm, certificate file and timestamp authority.
func Sign(ctx context.Context, run runner.Runner, signtool, target, passphrase, certFile string) error {
	logger.InfoKV(ctx, "Signing artifact", "target", target, "tool", signtool)

	cmd := runner.Command{
		Name: signtool,
		Args: []string{
			"sign", "/a", "/v",
			"/fd", signatureDigest,
			"/td", signatureDigest,
			"/p", passphrase,
			"/debug",
			"/f", certFile,
			"/tr", timestampURL,
			target,
		},
	}

	if err := run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("sign %s: %w", target, err)
	}

	return nil
}
