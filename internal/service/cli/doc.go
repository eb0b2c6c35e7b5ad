// Package cli implements the commands of the app-version binary.
//
// Local commands open the version record named by the settings; mutating ones
// hold the record lock for their duration. Remote commands talk to an
// app-version-server instead.
package cli
