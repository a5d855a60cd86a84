// Package artifact locates build outputs across the directory layouts
// produced by different toolchain versions. "Not found" is a normal,
// reportable outcome carrying every candidate checked; only real filesystem
// failures surface as other errors.
package artifact
