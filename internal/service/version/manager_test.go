package version

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

func newManager(t *testing.T, repo *memoryRepository, source Source, opts ...Option) *Manager {
	t.Helper()

	manager, err := NewManager(newStore(t, repo), source, opts...)
	require.NoError(t, err)

	return manager
}

// TestManager_IncrementFiresEvents verifies each increment returns the new value and fires its event.
func TestManager_IncrementFiresEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	manager := newManager(t, newDefaultRepository(t), nil, WithNow(func() time.Time { return now }))

	var fired []string

	manager.Events().Subscribe(func(_ context.Context, event domain.Event) {
		fired = append(fired, event.Short())
	})

	steps := []struct {
		part domain.Part
		want string
	}{
		{domain.PartPatch, "1"},
		{domain.PartMinor, "1"},
		{domain.PartMajor, "2"},
		{domain.PartCommit, "1"},
		{domain.PartTimestamp, "2024-06-01T12:00:00Z"},
	}

	for _, step := range steps {
		got, err := manager.Increment(ctx, step.part, nil)
		require.NoError(t, err, step.part)
		require.Equal(t, step.want, got, step.part)
	}

	require.Equal(t, []string{
		"patch-incremented",
		"minor-incremented",
		"major-incremented",
		"commit-incremented",
		"timestamp-updated",
	}, fired)

	require.Equal(t, "2.0.0", manager.Current())

	stamp, ok := manager.Timestamp()
	require.True(t, ok)
	require.True(t, now.Equal(stamp))
}

// TestManager_AbsorbModeConflict ensures increments are refused without touching the record.
func TestManager_AbsorbModeConflict(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository(t, `
mode: absorb
current:
  major: 1
  minor: 0
  patch: 0
  commit: 1a
  timestamp:
    mode: absorb
commit:
  mode: absorb
`)
	before := repo.document(t)
	manager := newManager(t, repo, nil)

	for _, part := range domain.Parts() {
		_, err := manager.Increment(context.Background(), part, nil)
		require.ErrorIs(t, err, domain.ErrAbsorbModeConflict, part)

		var conflict *domain.AbsorbModeError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, part.Field(), conflict.Field)
	}

	require.Zero(t, repo.saveCount())
	require.Equal(t, before, repo.document(t))
	require.True(t, manager.IsInAbsorbMode(domain.FieldVersion))
}

// TestManager_UnknownPart verifies unsupported parts surface ErrMethodNotFound.
func TestManager_UnknownPart(t *testing.T) {
	t.Parallel()

	manager := newManager(t, newDefaultRepository(t), nil)

	_, err := manager.Increment(context.Background(), domain.Part("build"), nil)
	require.ErrorIs(t, err, domain.ErrMethodNotFound)
}

// TestManager_Absorb runs absorb through the facade.
func TestManager_Absorb(t *testing.T) {
	t.Parallel()

	repo := newDefaultRepository(t)
	manager := newManager(t, repo, &fakeSource{version: "deadbeef\trefs/tags/v3.0.0\n"})

	require.False(t, manager.IsInAbsorbMode(domain.FieldVersion))
	require.NoError(t, manager.Absorb(context.Background()))
	require.Zero(t, repo.saveCount())

	root := manager.store.Root()
	require.NoError(t, root.Set(domain.PathVersionMode, string(domain.ModeAbsorb)))
	require.NoError(t, manager.store.Update(context.Background(), root))

	require.NoError(t, manager.Absorb(context.Background()))
	require.Equal(t, "3.0.0", manager.Current())

	full, ok := manager.Format("")
	require.True(t, ok)
	require.Equal(t, "version 3.0.0 (commit 000000)", full)
}

// TestManager_FormatsAndSnapshot lists formats and exports the record.
func TestManager_FormatsAndSnapshot(t *testing.T) {
	t.Parallel()

	manager := newManager(t, newDefaultRepository(t), nil)

	formats := manager.Formats()
	require.Contains(t, formats, "full")
	require.Contains(t, formats, "timestamp-full")
	require.NotContains(t, formats, "regex")
	require.IsIncreasing(t, formats)

	template, ok := manager.Template("version")
	require.True(t, ok)
	require.Equal(t, "{$major}.{$minor}.{$patch}", template)

	snapshot, err := manager.Snapshot()
	require.NoError(t, err)
	require.Equal(t, "increment", snapshot["mode"])

	current, ok := snapshot["current"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 1, current["major"])

	_, ok = manager.Timestamp()
	require.False(t, ok)
}

// TestManager_InvalidBracketPattern ensures construction fails on a broken pattern.
func TestManager_InvalidBracketPattern(t *testing.T) {
	t.Parallel()

	_, err := NewManager(newStore(t, newMemoryRepository(t, "format:\n  regex:\n    optional_bracket: '(['\n")), nil)
	require.Error(t, err)
}
