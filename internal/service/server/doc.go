// Package server runs app-version-server: the version record exposed over
// gRPC, with an optional Prometheus endpoint.
package server
