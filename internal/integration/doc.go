// Package integration holds end-to-end tests that run the version server
// and talk to it through the client.
package integration
