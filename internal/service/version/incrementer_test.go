package version

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

const endToEndRecord = `
mode: increment
current:
  major: 1
  minor: 0
  patch: 0
  commit: "1a"
commit:
  mode: increment
  increment-by: "1"
`

// TestIncrementer_CommitThenMajor walks the commit and major increments on a minimal record.
func TestIncrementer_CommitThenMajor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemoryRepository(t, endToEndRecord)
	incrementer := NewIncrementer(newStore(t, repo))

	commit, err := incrementer.IncrementCommit(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "1b", commit)

	major, err := incrementer.IncrementMajor(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, major)

	saved, err := repo.Load(ctx)
	require.NoError(t, err)

	for path, want := range map[string]int{
		domain.PathMajor: 2,
		domain.PathMinor: 0,
		domain.PathPatch: 0,
	} {
		got, err := saved.Int(path)
		require.NoError(t, err)
		require.Equal(t, want, got, path)
	}

	stored, _ := saved.Scalar(domain.PathCommit)
	require.Equal(t, "1b", stored)
}

// TestIncrementer_Resets verifies each numeric part resets only the lower parts.
func TestIncrementer_Resets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t, newMemoryRepository(t, "current:\n  major: 3\n  minor: 4\n  patch: 5\n"))
	incrementer := NewIncrementer(store)

	patch, err := incrementer.IncrementPatch(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, patch)
	require.Equal(t, 4, store.Get(domain.PathMinor, nil))

	minor, err := incrementer.IncrementMinor(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, minor)
	require.Equal(t, 0, store.Get(domain.PathPatch, nil))
	require.Equal(t, 3, store.Get(domain.PathMajor, nil))
}

// TestIncrementer_MissingNumbersStartAtZero verifies an absent part is treated as zero.
func TestIncrementer_MissingNumbersStartAtZero(t *testing.T) {
	t.Parallel()

	incrementer := NewIncrementer(newStore(t, newMemoryRepository(t, "mode: increment\n")))

	patch, err := incrementer.IncrementPatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, patch)
}

// TestIncrementer_CommitDelta covers explicit, configured and invalid deltas.
func TestIncrementer_CommitDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		by       *int64
		want     string
		wantErr  error
	}{
		{
			name:     "configured delta",
			document: "current:\n  commit: ff\ncommit:\n  increment-by: 2\n",
			want:     "101",
		},
		{
			name:     "default delta",
			document: "current:\n  commit: '000009'\n",
			want:     "a",
		},
		{
			name:     "explicit delta wins",
			document: "current:\n  commit: '10'\ncommit:\n  increment-by: 5\n",
			by:       ptr(int64(-1)),
			want:     "f",
		},
		{
			name:     "zero delta uses configured one",
			document: "current:\n  commit: '10'\ncommit:\n  increment-by: 5\n",
			by:       ptr(int64(0)),
			want:     "15",
		},
		{
			name:     "underflow",
			document: "current:\n  commit: '0'\n",
			by:       ptr(int64(-1)),
			wantErr:  domain.ErrInvalidIncrement,
		},
		{
			name:     "invalid configured delta",
			document: "current:\n  commit: '0'\ncommit:\n  increment-by: lots\n",
			wantErr:  domain.ErrInvalidIncrement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newMemoryRepository(t, tt.document)
			incrementer := NewIncrementer(newStore(t, repo))

			got, err := incrementer.IncrementCommit(context.Background(), tt.by)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Zero(t, repo.saveCount())

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestIncrementer_RefreshTimestampKeepsMode ensures refreshing the timestamp leaves its mode alone.
func TestIncrementer_RefreshTimestampKeepsMode(t *testing.T) {
	t.Parallel()

	store := newStore(t, newDefaultRepository(t))
	incrementer := NewIncrementer(store)
	now := time.Date(2024, time.March, 9, 14, 5, 6, 0, time.FixedZone("", 2*60*60))

	exploded, err := incrementer.RefreshTimestamp(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 2024, exploded.Year)
	require.Equal(t, "+02:00", exploded.Timezone)

	mode, _ := store.Scalar(domain.PathTimestampMode)
	require.Equal(t, "increment", mode)

	stored, ok := domain.ReadTimestamp(store.Root())
	require.True(t, ok)
	require.Equal(t, now.Unix(), stored.Timestamp)
	require.True(t, now.Equal(stored.Time()))
}

func ptr[T any](value T) *T {
	return &value
}
