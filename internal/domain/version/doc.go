// Package version contains the core domain types of the version manager.
//
// It defines the Record (the persisted YAML version document addressed by
// dotted paths), the per-field increment/absorb modes, the hexadecimal commit
// counter, the semantic-version tag extractor and the timestamp decomposition.
// Everything here is pure: persistence and git access live elsewhere.
package version
