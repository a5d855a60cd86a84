package pipeline

import (
	"errors"

	"github.com/ofarch/relpack/internal/runner"
)

// Process exit codes of the relpack binary.
const (
	// ExitOK is a fully successful run (skipped best-effort steps included).
	ExitOK = 0
	// ExitFailure is a generic fatal error.
	ExitFailure = 1
	// ExitUnsupportedPlatform rejects an unknown platform selector.
	ExitUnsupportedPlatform = 2
	// ExitArtifactMissing reports a required build output that could not be located.
	ExitArtifactMissing = 3
	// ExitShellUnavailable reports a missing or misconfigured UI shell toolchain.
	ExitShellUnavailable = 4
)

// codeError attaches a process exit code to an error.
type codeError struct {
	code int
	err  error
}

// Error implements the error interface.
func (e *codeError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the underlying cause.
func (e *codeError) Unwrap() error {
	return e.err
}

// withCode wraps err with a specific exit code. A nil err stays nil.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}

	return &codeError{code: code, err: err}
}

// ExitCode maps an error to the process exit code: explicit codes win, then
// the exit code of a failed external tool, then the generic failure code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var coded *codeError
	if errors.As(err, &coded) {
		return coded.code
	}

	if code, ok := runner.ExitCode(err); ok && code > 0 {
		return code
	}

	return ExitFailure
}
