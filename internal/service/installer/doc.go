// Package installer drives the Windows finalizer: the external generator
// packs the staged tree into a data blob, a separately compiled packer stub
// is selected from the build output, and the stub becomes the final
// self-contained installer, optionally signed with signtool.
package installer
