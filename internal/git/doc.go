// Package git reads version tags, commit hashes and commit times from git,
// either from the local work tree or from a remote repository.
package git
