package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external tool invocation.
type Command struct {
	// Name is the executable to run, looked up on PATH when not absolute.
	Name string
	// Args are the command arguments, excluding the executable itself.
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string
}

// String renders the invocation for diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}

	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external tools. Every invocation is attempted exactly once;
// the pipeline has no retry logic anywhere.
type Runner interface {
	// Run executes the command, blocking until it exits.
	// A non-zero exit is returned as a *ToolError.
	Run(ctx context.Context, cmd Command) error
	// LookPath resolves an executable name the way the environment would.
	LookPath(file string) (string, error)
}

// ToolError reports a failed external tool invocation.
type ToolError struct {
	// Cmd is the invocation that failed, rendered for diagnostics.
	Cmd string
	// Code is the tool's exit code, or -1 when it never ran.
	Code int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("`%s` failed with exit code %d: %v", e.Cmd, e.Code, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code of a failed tool invocation,
// or false when the error is not a tool failure.
func ExitCode(err error) (int, bool) {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Code, true
	}

	return 0, false
}

// Exec runs commands via os/exec with stdio passed through to the console,
// matching the behavior of running the tool by hand.
type Exec struct{}

// Run implements Runner.
func (Exec) Run(ctx context.Context, cmd Command) error {
	ec := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	ec.Dir = cmd.Dir
	ec.Stdin = os.Stdin
	ec.Stdout = os.Stdout
	ec.Stderr = os.Stderr

	if len(cmd.Env) > 0 {
		ec.Env = append(os.Environ(), cmd.Env...)
	}

	err := ec.Run()
	if err == nil {
		return nil
	}

	code := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	return &ToolError{Cmd: cmd.String(), Code: code, Err: err}
}

// LookPath implements Runner.
func (Exec) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
