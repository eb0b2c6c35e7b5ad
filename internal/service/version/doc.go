// Package version implements the version formatting and mutation engine.
//
// Store caches the record loaded from a repository and writes it back on
// every mutation. Incrementer and Absorber apply read-modify-write changes,
// Renderer expands named formats, and Manager ties them together behind the
// absorb-mode guard and fires events for every change.
package version
