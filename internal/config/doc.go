// Package config builds the immutable BuildRequest that every pipeline stage
// receives. It merges CLI flags, environment overrides and the optional
// relpack.yaml product file, and resolves the product version from the native
// Cargo.toml manifest. Nothing in the pipeline re-reads ambient globals after
// the request is constructed.
package config
