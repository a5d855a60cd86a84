// Package version exposes build metadata injected at link time and a cobra
// subcommand to print it. The packaged product's own version is a separate
// concept resolved by the config package.
package version
