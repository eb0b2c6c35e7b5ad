package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// From selects where version data is read.
type From string

const (
	// FromLocal reads the work tree in Options.WorkDir.
	FromLocal From = "local"
	// FromRemote lists refs of Options.Repository.
	FromRemote From = "remote"
)

const (
	defaultBinary = "git"
	defaultBranch = "master"
	defaultRemote = "origin"
)

var (
	// ErrUnknownSource is returned for an unsupported Options.From.
	ErrUnknownSource = errors.New("unknown git source")
	// ErrRepositoryRequired is returned when a remote source has no repository URL.
	ErrRepositoryRequired = errors.New("git repository is required for remote source")
)

// Source supplies raw version data from git.
type Source interface {
	// Version returns ref text containing a version tag.
	Version(ctx context.Context) (string, error)
	// Commit returns the current commit hash.
	Commit(ctx context.Context) (string, error)
	// Timestamp returns the commit time as printed by git show --format=%ci.
	Timestamp(ctx context.Context) (string, error)
}

// Options configures a Source.
type Options struct {
	// Binary is the git executable, "git" by default.
	Binary string
	// From is FromLocal or FromRemote.
	From From
	// Repository is the remote URL listed by a remote source.
	Repository string
	// Branch is the remote branch whose head is the current commit.
	Branch string
	// Remote is the local name of the remote, used to resolve commit times.
	Remote string
	// WorkDir is the directory git runs in.
	WorkDir string
}

func (o Options) withDefaults() Options {
	if o.Binary == "" {
		o.Binary = defaultBinary
	}

	if o.From == "" {
		o.From = FromLocal
	}

	if o.Branch == "" {
		o.Branch = defaultBranch
	}

	if o.Remote == "" {
		o.Remote = defaultRemote
	}

	return o
}

// NewSource builds the source selected by opts.From.
func NewSource(opts Options, runner Runner) (Source, error) {
	opts = opts.withDefaults()

	switch From(strings.ToLower(string(opts.From))) {
	case FromLocal:
		return NewLocalSource(opts, runner), nil
	case FromRemote:
		if opts.Repository == "" {
			return nil, ErrRepositoryRequired
		}

		return NewRemoteSource(opts, runner), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, opts.From)
	}
}

// firstLine returns the first non-empty line of output.
func firstLine(output string) string {
	for line := range strings.SplitSeq(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return ""
}
