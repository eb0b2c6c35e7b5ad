// Package observability exposes Prometheus metrics of the version server:
// gRPC request counts and latencies, version event counts and gauges for the
// current version numbers, served over HTTP next to a health endpoint.
package observability
