// Package pipeline orchestrates one release-packaging run: it resolves the
// target platform, executes that platform's stages strictly in sequence and
// propagates the first fatal failure as a process exit code. There is no
// retry logic anywhere; every external tool is invoked exactly once per run.
package pipeline
