//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-version/internal/config"
	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/git"
)

// stubRunner answers every git call with the same output.
type stubRunner struct {
	output string
}

func (s stubRunner) Run(context.Context, string, string, ...string) (string, error) {
	return s.output, nil
}

// TestOpenWorkspace_MissingFile verifies a missing record starts from the default stub and is created on write.
func TestOpenWorkspace_MissingFile(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.VersionFile = filepath.Join(t.TempDir(), "version.yaml")

	ws, err := OpenWorkspace(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", ws.Manager.Current())

	_, err = os.Stat(cfg.VersionFile)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ws.Manager.Increment(context.Background(), domain.PartPatch, nil)
	require.NoError(t, err)

	contents, err := os.ReadFile(cfg.VersionFile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "patch: 1")
}

// TestOpenWorkspace_Absorb verifies the configured runner feeds absorb.
func TestOpenWorkspace_Absorb(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.VersionFile = filepath.Join(dir, "version.yaml")

	require.NoError(t, os.WriteFile(cfg.VersionFile, []byte("mode: absorb\nformat:\n  version: '{$major}.{$minor}.{$patch}'\n"), 0o600))

	ws, err := OpenWorkspace(context.Background(), cfg, WithRunner(stubRunner{output: "v4.5.6\n"}))
	require.NoError(t, err)
	require.NoError(t, ws.Manager.Absorb(context.Background()))
	require.Equal(t, "4.5.6", ws.Manager.Current())
}

// TestOpenWorkspace_InvalidGit verifies bad git settings are reported.
func TestOpenWorkspace_InvalidGit(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.VersionFile = filepath.Join(t.TempDir(), "version.yaml")
	cfg.Git.From = string(git.FromRemote)

	_, err := OpenWorkspace(context.Background(), cfg)
	require.ErrorIs(t, err, git.ErrRepositoryRequired)
}
