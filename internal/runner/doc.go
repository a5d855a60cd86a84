// Package runner abstracts external tool invocation behind a small interface
// so pipeline stages can be tested with a fake that simulates success, failure
// or a missing tool without launching real compilers or signing tools.
package runner
