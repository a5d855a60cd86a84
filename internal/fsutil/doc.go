// Package fsutil holds the filesystem helpers shared by the pipeline stages:
// mode-preserving copies, destructive directory resets and the directory
// listings attached to artifact diagnostics.
package fsutil
