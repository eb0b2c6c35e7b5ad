package git

import (
	"context"
	"strings"

	goversion "github.com/hashicorp/go-version"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
)

const tagRefPrefix = "refs/tags/"

// RemoteSource reads tags and branch heads of a remote repository.
type RemoteSource struct {
	opts   Options
	runner Runner
}

// NewRemoteSource creates a source over opts.Repository.
func NewRemoteSource(opts Options, runner Runner) *RemoteSource {
	return &RemoteSource{opts: opts.withDefaults(), runner: runner}
}

// Version lists the remote tags and returns the ref line of the highest
// version. Output without any parsable tag is returned unchanged.
func (s *RemoteSource) Version(ctx context.Context) (string, error) {
	output, err := s.runner.Run(ctx, s.opts.WorkDir, s.opts.Binary, "ls-remote", "--tags", s.opts.Repository)
	if err != nil {
		return "", err
	}

	if line, ok := newestTag(output); ok {
		logger.DebugKV(ctx, "Newest remote tag", "ref", line)

		return line, nil
	}

	return output, nil
}

// Commit returns the head hash of the configured branch.
func (s *RemoteSource) Commit(ctx context.Context) (string, error) {
	output, err := s.runner.Run(ctx, s.opts.WorkDir, s.opts.Binary, "ls-remote", s.opts.Repository, s.opts.Branch)
	if err != nil {
		return "", err
	}

	hash, _, _ := strings.Cut(firstLine(output), "\t")

	return strings.TrimSpace(hash), nil
}

// Timestamp returns the commit time of the remote-tracking branch.
func (s *RemoteSource) Timestamp(ctx context.Context) (string, error) {
	ref := s.opts.Remote + "/" + s.opts.Branch

	output, err := s.runner.Run(ctx, s.opts.WorkDir, s.opts.Binary, "show", "-s", "--format=%ci", ref)
	if err != nil {
		return "", err
	}

	return firstLine(output), nil
}

// newestTag picks the ls-remote line whose tag is the highest version.
// Only tags with a full major.minor.patch version are ranked.
func newestTag(output string) (string, bool) {
	var (
		best     *goversion.Version
		bestLine string
	)

	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSpace(line)

		_, ref, found := strings.Cut(line, "\t")
		if !found || !strings.HasPrefix(ref, tagRefPrefix) {
			continue
		}

		tag, err := domain.ExtractVersion(ref)
		if err != nil {
			continue
		}

		bare := *tag
		bare.Label = ""

		parsed, err := goversion.NewVersion(bare.String())
		if err != nil {
			continue
		}

		if best == nil || parsed.GreaterThan(best) {
			best, bestLine = parsed, line
		}
	}

	return bestLine, best != nil
}
