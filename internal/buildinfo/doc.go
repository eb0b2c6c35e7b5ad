// Package buildinfo exposes build metadata of the app-version binaries.
//
// Version, Commit and BuildTime are injected with -ldflags -X. When a binary is
// built without them, Commit and BuildTime fall back to the VCS stamp that the
// Go toolchain records.
package buildinfo
