package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/app-version/internal/logger"
)

// lockSuffix is appended to the record path to build the marker file name.
const lockSuffix = ".lock"

// ErrLocked is returned when another live process holds the record lock.
var ErrLocked = errors.New("version record is locked by another process")

// Lock is a marker file holding the PID of the process allowed to write a record.
type Lock struct {
	// path is the marker file location.
	path string
}

// AcquireLock creates the marker file for recordPath.
// A marker left behind by a process that no longer runs is taken over.
func AcquireLock(ctx context.Context, recordPath string) (*Lock, error) {
	path := recordPath + lockSuffix

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, DefaultFilePermissions)
		if err == nil {
			_, writeErr := file.WriteString(strconv.Itoa(os.Getpid()))
			closeErr := file.Close()

			if err = errors.Join(writeErr, closeErr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock file: %w", err)
			}

			logger.DebugKV(ctx, "Record lock acquired", "path", path)

			return &Lock{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		owner, alive := lockOwner(path)
		if alive {
			return nil, fmt.Errorf("%w (pid %d, lock file %s)", ErrLocked, owner, path)
		}

		logger.InfoKV(ctx, "Removing stale record lock", "path", path, "pid", owner)

		if err = takeOverStale(path, owner); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
}

// takeOverStale moves the stale marker at path aside and deletes it.
// When the marker moved aside is no longer the stale one, another process took
// the lock in between, so its marker is put back and ErrLocked is returned.
func takeOverStale(path string, staleOwner int) error {
	aside := path + ".stale-" + strconv.Itoa(os.Getpid())

	if err := os.Rename(path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("move stale lock file: %w", err)
	}

	defer func() {
		_ = os.Remove(aside)
	}()

	owner, alive := lockOwner(aside)
	if owner == staleOwner && !alive {
		return nil
	}

	if err := os.Link(aside, path); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("restore lock file: %w", err)
	}

	return fmt.Errorf("%w (pid %d, lock file %s)", ErrLocked, owner, path)
}

// Release removes the marker file. Releasing a nil lock is a no-op.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}

	return nil
}

// lockOwner reads the PID stored in the marker and reports whether that process still runs.
// Unreadable markers are treated as stale.
func lockOwner(path string) (int, bool) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	if pid == os.Getpid() {
		return pid, true
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		// Cannot tell, so keep the lock.
		return pid, true
	}

	return pid, process != nil
}
