// Package feature derives the native-library feature set for one build from
// CLI flags, host platform defaults and manually supplied extras. The result
// is deduplicated and lexicographically ordered so the same logical input
// always produces the same build command.
package feature
