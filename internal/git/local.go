package git

import (
	"context"
	"strings"
)

// LocalSource reads the nearest tag and HEAD of a local work tree.
type LocalSource struct {
	opts   Options
	runner Runner
}

// NewLocalSource creates a source over opts.WorkDir.
func NewLocalSource(opts Options, runner Runner) *LocalSource {
	return &LocalSource{opts: opts.withDefaults(), runner: runner}
}

// Version returns the nearest reachable tag.
func (s *LocalSource) Version(ctx context.Context) (string, error) {
	return s.git(ctx, "describe", "--tags", "--abbrev=0")
}

// Commit returns the hash of HEAD.
func (s *LocalSource) Commit(ctx context.Context) (string, error) {
	output, err := s.git(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}

	return firstLine(output), nil
}

// Timestamp returns the commit time of HEAD.
func (s *LocalSource) Timestamp(ctx context.Context) (string, error) {
	output, err := s.git(ctx, "show", "-s", "--format=%ci", "HEAD")
	if err != nil {
		return "", err
	}

	return firstLine(output), nil
}

func (s *LocalSource) git(ctx context.Context, args ...string) (string, error) {
	output, err := s.runner.Run(ctx, s.opts.WorkDir, s.opts.Binary, args...)

	return strings.TrimSpace(output), err
}
