package runner

import (
	"context"
	"os/exec"
)

// Fake is a Runner for tests. It records every invocation and delegates
// behavior to optional hooks, so a test can make "the generator produced no
// blob" or "signtool is missing" happen without any real process.
type Fake struct {
	// Calls records every command passed to Run, in order.
	Calls []Command
	// OnRun, when set, decides the outcome of each Run call.
	OnRun func(cmd Command) error
	// Paths maps executable names to resolved paths for LookPath.
	// Names absent from the map are reported as not found.
	Paths map[string]string
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, cmd Command) error {
	f.Calls = append(f.Calls, cmd)

	if f.OnRun != nil {
		return f.OnRun(cmd)
	}

	return nil
}

// LookPath implements Runner.
func (f *Fake) LookPath(file string) (string, error) {
	if path, ok := f.Paths[file]; ok {
		return path, nil
	}

	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// CalledWith reports whether any recorded invocation ran the given executable.
func (f *Fake) CalledWith(name string) bool {
	for _, call := range f.Calls {
		if call.Name == name {
			return true
		}
	}

	return false
}
