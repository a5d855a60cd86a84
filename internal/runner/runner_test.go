package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExitCode verifies extraction of tool exit codes from wrapped errors.
func TestExitCode(t *testing.T) {
	t.Parallel()

	err := &ToolError{Cmd: "cargo build", Code: 101, Err: errors.New("boom")}

	code, ok := ExitCode(err)
	require.True(t, ok)
	require.Equal(t, 101, code)

	_, ok = ExitCode(errors.New("plain"))
	require.False(t, ok)
}

// TestFakeRecordsCalls ensures the fake records invocations and honors hooks.
func TestFakeRecordsCalls(t *testing.T) {
	t.Parallel()

	fake := &Fake{
		OnRun: func(cmd Command) error {
			if cmd.Name == "cargo" {
				return &ToolError{Cmd: cmd.String(), Code: 1, Err: errors.New("build failed")}
			}

			return nil
		},
		Paths: map[string]string{"flutter": "/usr/bin/flutter"},
	}

	require.NoError(t, fake.Run(context.Background(), Command{Name: "flutter", Args: []string{"build"}}))
	require.Error(t, fake.Run(context.Background(), Command{Name: "cargo"}))
	require.Len(t, fake.Calls, 2)
	require.True(t, fake.CalledWith("cargo"))
	require.False(t, fake.CalledWith("signtool"))

	_, err := fake.LookPath("flutter")
	require.NoError(t, err)

	_, err = fake.LookPath("create-dmg")
	require.Error(t, err)
}
