// Package record persists the version record.
//
// The FileRepository reads and writes the record as YAML on disk, falling back
// to an embedded default document when the file does not exist yet. A marker
// file lock keeps two processes from writing the same record.
package record
