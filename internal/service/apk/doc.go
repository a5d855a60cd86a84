// Package apk finalizes the Android pipeline by stamping the shell's release
// package with the product name and version. A missing package is a warning,
// not an error: the shell build step already reported its own failure.
package apk
