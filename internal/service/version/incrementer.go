package version

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

// defaultCommitIncrement is used when commit.increment-by is missing.
const defaultCommitIncrement = 1

// mutation transforms a private copy of the record.
type mutation func(record *domain.Record) error

// Incrementer applies the increment rules to the stored record.
// It does not check modes; Manager guards it.
type Incrementer struct {
	store *Store
}

// NewIncrementer creates an incrementer over store.
func NewIncrementer(store *Store) *Incrementer {
	return &Incrementer{store: store}
}

// IncrementMajor bumps major and resets minor and patch. Returns the new major.
func (i *Incrementer) IncrementMajor(ctx context.Context) (int, error) {
	return i.incrementNumber(ctx, domain.PathMajor, domain.PathMinor, domain.PathPatch)
}

// IncrementMinor bumps minor and resets patch. Returns the new minor.
func (i *Incrementer) IncrementMinor(ctx context.Context) (int, error) {
	return i.incrementNumber(ctx, domain.PathMinor, domain.PathPatch)
}

// IncrementPatch bumps patch. Returns the new patch.
func (i *Incrementer) IncrementPatch(ctx context.Context) (int, error) {
	return i.incrementNumber(ctx, domain.PathPatch)
}

// IncrementCommit advances the hex commit counter by by, or by
// commit.increment-by when by is nil or zero. Returns the new commit.
func (i *Incrementer) IncrementCommit(ctx context.Context, by *int64) (string, error) {
	var commit string

	err := i.apply(ctx, func(r *domain.Record) error {
		delta, err := commitDelta(r, by)
		if err != nil {
			return err
		}

		current, _ := r.Scalar(domain.PathCommit)

		commit, err = domain.IncrementHex(current, delta)
		if err != nil {
			return err
		}

		return r.Set(domain.PathCommit, commit)
	})
	if err != nil {
		return "", err
	}

	return commit, nil
}

// RefreshTimestamp stores now as the record timestamp.
func (i *Incrementer) RefreshTimestamp(ctx context.Context, now time.Time) (domain.Timestamp, error) {
	exploded := domain.ExplodeTime(now)

	err := i.apply(ctx, func(r *domain.Record) error {
		return domain.WriteTimestamp(r, exploded)
	})
	if err != nil {
		return domain.Timestamp{}, err
	}

	return exploded, nil
}

// incrementNumber adds one to the value at path and zeroes the reset paths.
func (i *Incrementer) incrementNumber(ctx context.Context, path string, resets ...string) (int, error) {
	var result int

	err := i.apply(ctx, func(r *domain.Record) error {
		current, err := r.Int(path)
		if err != nil {
			return err
		}

		result = current + 1

		if err = r.Set(path, result); err != nil {
			return err
		}

		for _, reset := range resets {
			if err = r.Set(reset, 0); err != nil {
				return err
			}
		}

		return nil
	})

	return result, err
}

// apply runs the read-modify-write cycle: clone, mutate, persist.
func (i *Incrementer) apply(ctx context.Context, mutate mutation) error {
	updated := i.store.Root()

	if err := mutate(updated); err != nil {
		return err
	}

	return i.store.Update(ctx, updated)
}

// commitDelta picks the explicit delta or the configured one.
// An explicit zero falls back to the configured delta.
func commitDelta(r *domain.Record, by *int64) (int64, error) {
	if by != nil && *by != 0 {
		return *by, nil
	}

	configured, _ := r.Scalar(domain.PathCommitIncrementBy)

	configured = strings.TrimSpace(configured)
	if configured == "" {
		return defaultCommitIncrement, nil
	}

	delta, err := strconv.ParseInt(configured, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is %q", domain.ErrInvalidIncrement, domain.PathCommitIncrementBy, configured)
	}

	return delta, nil
}
