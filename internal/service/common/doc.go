// Package common holds helpers shared by several services.
//
// It opens the version manager described by the tool settings, provides a
// gRPC client wrapper with timeouts, and detects the current system actor
// (username/hostname) sent with remote calls for audit purposes.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
