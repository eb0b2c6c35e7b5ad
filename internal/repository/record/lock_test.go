package record

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAcquireLock_Exclusive verifies a second acquisition fails while the first lock is held.
func TestAcquireLock_Exclusive(t *testing.T) {
	t.Parallel()

	recordPath := filepath.Join(t.TempDir(), "version.yaml")

	lock, err := AcquireLock(context.Background(), recordPath)
	require.NoError(t, err)

	_, err = AcquireLock(context.Background(), recordPath)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, lock.Release())

	lock, err = AcquireLock(context.Background(), recordPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	// Releasing twice and releasing nil are harmless.
	require.NoError(t, lock.Release())
	require.NoError(t, (*Lock)(nil).Release())
}

// TestAcquireLock_StaleMarker verifies markers of dead or unreadable owners are taken over.
func TestAcquireLock_StaleMarker(t *testing.T) {
	t.Parallel()

	for _, contents := range []string{"garbage", strconv.Itoa(1 << 30)} {
		recordPath := filepath.Join(t.TempDir(), "version.yaml")
		require.NoError(t, os.WriteFile(recordPath+lockSuffix, []byte(contents), DefaultFilePermissions))

		lock, err := AcquireLock(context.Background(), recordPath)
		require.NoError(t, err, contents)

		pid, err := os.ReadFile(recordPath + lockSuffix)
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(os.Getpid()), string(pid))

		require.NoError(t, lock.Release())
	}
}

// TestTakeOverStale_MarkerReplaced verifies a marker rewritten by a live owner after the staleness check survives.
func TestTakeOverStale_MarkerReplaced(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "version.yaml") + lockSuffix
	livePID := strconv.Itoa(os.Getpid())
	require.NoError(t, os.WriteFile(path, []byte(livePID), DefaultFilePermissions))

	err := takeOverStale(path, 1<<30)
	require.ErrorIs(t, err, ErrLocked)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, livePID, string(contents))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestTakeOverStale_RemovesMarker verifies a marker still owned by the dead process is removed.
func TestTakeOverStale_RemovesMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "version.yaml") + lockSuffix
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(1<<30)), DefaultFilePermissions))

	require.NoError(t, takeOverStale(path, 1<<30))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	// A marker that vanished in between needs no takeover.
	require.NoError(t, takeOverStale(path, 1<<30))
}
