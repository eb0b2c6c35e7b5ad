package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/app-version/internal/config"
	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/repository/record"
	"github.com/oshokin/app-version/internal/service/common"
	"github.com/oshokin/app-version/internal/service/server"
)

// commitAbsorbRecord keeps the numbers in increment mode and the commit in absorb mode.
const commitAbsorbRecord = `mode: increment
current:
  major: 3
  minor: 1
  patch: 4
  commit: 'a1'
  timestamp:
    mode: increment
commit:
  mode: absorb
format:
  version: '{$major}.{$minor}.{$patch}'
  full: 'version {$version} (commit {$commit})'
`

// reservePort returns a free local address for a test server.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startGRPC starts a version server with temporary settings over versionPath.
// Returns a stop function to gracefully shutdown the server.
func startGRPC(t *testing.T, addr, versionPath string) (stop func()) {
	t.Helper()

	// Create cancellable context for server lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	settings := config.Default()
	settings.VersionFile = versionPath
	settings.ServerAddress = addr
	// A git that always fails keeps the tests independent from the host.
	settings.Git.Binary = "false"

	require.NoError(t, config.Save(cfgPath, settings))

	done := make(chan error, 1)

	// Start server in background goroutine.
	go func() {
		options := &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: addr,
		}

		done <- server.Run(ctx, options)
	}()

	// Wait briefly for server to start listening.
	time.Sleep(150 * time.Millisecond)

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

// TestGRPC_Roundtrip starts the real server and exercises the client with on-disk persistence.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	versionPath := filepath.Join(t.TempDir(), "version.yaml")
	require.NoError(t, os.WriteFile(versionPath, []byte(commitAbsorbRecord), record.DefaultFilePermissions))

	stop := startGRPC(t, addr, versionPath)
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(2*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	full, err := c.Format(ctx, "full")
	require.NoError(t, err)
	require.Equal(t, "version 3.1.4 (commit a1)", full)

	_, err = c.Format(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))

	result, err := c.Increment(ctx, string(domain.PartMinor), nil)
	require.NoError(t, err)
	require.Equal(t, "2", result.Value)
	require.Equal(t, "3.2.0", result.Version)

	// The commit is in absorb mode, so it cannot be incremented.
	_, err = c.Increment(ctx, string(domain.PartCommit), nil)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = c.Increment(ctx, "build", nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	// Absorbing the commit needs git, which always fails here.
	_, err = c.Absorb(ctx)
	require.Error(t, err)

	_, err = c.Increment(ctx, string(domain.PartTimestamp), nil)
	require.NoError(t, err)

	stamp, err := c.Timestamp(ctx)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), stamp, time.Minute)

	snapshot, err := c.Record(ctx)
	require.NoError(t, err)

	current, ok := snapshot["current"].(map[string]any)
	require.True(t, ok)
	require.InDelta(t, 2, current["minor"], 0)
	require.Equal(t, "a1", current["commit"])

	// The increment was persisted to disk.
	stored, err := record.NewFileRepository(versionPath).Load(ctx)
	require.NoError(t, err)

	minor, err := stored.Int(domain.PathMinor)
	require.NoError(t, err)
	require.Equal(t, 2, minor)
}

// TestGRPC_RecordLockedWhileServing verifies the server owns the record until it stops.
func TestGRPC_RecordLockedWhileServing(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	versionPath := filepath.Join(t.TempDir(), "version.yaml")

	stop := startGRPC(t, addr, versionPath)

	_, err := record.AcquireLock(context.Background(), versionPath)
	require.ErrorIs(t, err, record.ErrLocked)

	stop()

	lock, err := record.AcquireLock(context.Background(), versionPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
