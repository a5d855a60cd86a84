// Package dmg drives the macOS finalizer. Disk-image creation is best-effort:
// a missing packaging tool downgrades to a warning, but once the tool is
// invoked it must succeed. The third-party tool's unmount retry count is
// raised in place to work around its known flakiness under load.
package dmg
