//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"

	"github.com/oshokin/app-version/internal/config"
	"github.com/oshokin/app-version/internal/git"
	"github.com/oshokin/app-version/internal/repository/record"
	service "github.com/oshokin/app-version/internal/service/version"
)

// Workspace is a manager opened over the record file of the settings.
type Workspace struct {
	Manager *service.Manager
	Repo    *record.FileRepository
}

// OpenOption configures OpenWorkspace.
type OpenOption func(*openOptions)

type openOptions struct {
	runner  git.Runner
	manager []service.Option
}

// WithRunner replaces the process runner used for git.
func WithRunner(runner git.Runner) OpenOption {
	return func(o *openOptions) {
		o.runner = runner
	}
}

// WithManagerOptions forwards options to the manager.
func WithManagerOptions(opts ...service.Option) OpenOption {
	return func(o *openOptions) {
		o.manager = append(o.manager, opts...)
	}
}

// OpenWorkspace loads the record named by cfg and wires the git source.
func OpenWorkspace(ctx context.Context, cfg *config.Config, opts ...OpenOption) (*Workspace, error) {
	options := openOptions{runner: git.NewExecRunner(cfg.Git.Timeout)}
	for _, opt := range opts {
		opt(&options)
	}

	source, err := git.NewSource(cfg.GitOptions(), options.runner)
	if err != nil {
		return nil, fmt.Errorf("git source: %w", err)
	}

	repo := record.NewFileRepository(cfg.VersionFile)

	store, err := service.NewStore(ctx, repo)
	if err != nil {
		return nil, err
	}

	manager, err := service.NewManager(store, source, options.manager...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", repo.Path(), err)
	}

	return &Workspace{Manager: manager, Repo: repo}, nil
}
