package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/ofarch/relpack/internal/logger"
)

// markerFilename flags an in-progress run in the project root.
const markerFilename = ".relpack-run-marker"

// acquireRunMarker drops a pid marker in the project root and returns its
// cleanup function. The marker is advisory only: concurrent runs against the
// same output paths are undefined behavior, so a live marker produces a
// warning, never a refusal.
func acquireRunMarker(ctx context.Context, rootDir string) func() {
	path := filepath.Join(rootDir, markerFilename)

	if pid, ok := readMarkerPid(path); ok && pid != os.Getpid() && isRelpackProcess(pid) {
		logger.WarnKV(ctx,
			"Another packaging run appears active against this workspace; concurrent runs are unsupported",
			"pid", pid)
	}

	contents := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		logger.DebugKV(ctx, "Cannot write run marker", "error", err)

		return func() {}
	}

	return func() {
		_ = os.Remove(path)
	}
}

// readMarkerPid parses the pid stored in an existing marker file.
func readMarkerPid(path string) (int, bool) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	return pid, true
}

// isRelpackProcess reports whether pid belongs to a live relpack process.
func isRelpackProcess(pid int) bool {
	proc, err := ps.FindProcess(pid)
	if err != nil || proc == nil {
		return false
	}

	return strings.Contains(strings.ToLower(proc.Executable()), "relpack")
}
