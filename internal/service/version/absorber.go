package version

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
)

// Source supplies raw values from source control.
type Source interface {
	// Version returns raw ref text containing a version tag.
	Version(ctx context.Context) (string, error)
	// Commit returns the current commit hash, or "" when unknown.
	Commit(ctx context.Context) (string, error)
	// Timestamp returns the commit time as printed by git, or "" when unknown.
	Timestamp(ctx context.Context) (string, error)
}

var errSourceRequired = errors.New("git source is not configured")

// Absorber pulls version, commit and timestamp from a Source into the record.
type Absorber struct {
	store  *Store
	source Source
	events *Dispatcher
	now    func() time.Time
}

// AbsorberOption configures an Absorber.
type AbsorberOption func(*Absorber)

// WithClock replaces time.Now, used when git has no usable timestamp.
func WithClock(now func() time.Time) AbsorberOption {
	return func(a *Absorber) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAbsorber creates an absorber. events may be nil.
func NewAbsorber(store *Store, source Source, events *Dispatcher, opts ...AbsorberOption) *Absorber {
	a := &Absorber{
		store:  store,
		source: source,
		events: events,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Absorb runs the version, commit and timestamp steps in that order.
// Each step only runs when its field is in absorb mode and re-reads the
// record, so later steps see earlier writes. The absorbed event fires once
// all steps succeed.
func (a *Absorber) Absorb(ctx context.Context) error {
	steps := []struct {
		field domain.Field
		run   func(context.Context) error
	}{
		{domain.FieldVersion, a.absorbVersion},
		{domain.FieldCommit, a.absorbCommit},
		{domain.FieldTimestamp, a.absorbTimestamp},
	}

	for _, step := range steps {
		if a.store.Mode(step.field) != domain.ModeAbsorb {
			logger.DebugKV(ctx, "Skipping absorb step", "field", step.field.String())
			continue
		}

		if a.source == nil {
			return errSourceRequired
		}

		if err := step.run(ctx); err != nil {
			return fmt.Errorf("absorb %s: %w", step.field, err)
		}
	}

	if a.events != nil {
		a.events.Fire(ctx, domain.EventVersionAbsorbed)
	}

	return nil
}

// absorbVersion stores the components of the first tag found in git output.
func (a *Absorber) absorbVersion(ctx context.Context) error {
	raw, err := a.source.Version(ctx)
	if err != nil {
		return err
	}

	tag, err := domain.ExtractVersion(raw)
	if err != nil {
		return err
	}

	numbers := make(map[string]int, 3)

	for path, text := range map[string]string{
		domain.PathMajor: tag.Major,
		domain.PathMinor: tag.Minor,
		domain.PathPatch: tag.Patch,
	} {
		if numbers[path], err = strconv.Atoi(text); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidValue, text)
		}
	}

	logger.InfoKV(ctx, "Absorbing version", "tag", tag.String())

	return a.apply(ctx, func(r *domain.Record) error {
		values := []struct {
			path  string
			value any
		}{
			{domain.PathLabel, tag.Label},
			{domain.PathMajor, numbers[domain.PathMajor]},
			{domain.PathMinor, numbers[domain.PathMinor]},
			{domain.PathPatch, numbers[domain.PathPatch]},
			{domain.PathPrerelease, tag.Prerelease},
			{domain.PathBuildMetadata, tag.BuildMetadata},
		}

		for _, v := range values {
			if err := r.Set(v.path, v.value); err != nil {
				return err
			}
		}

		return nil
	})
}

// absorbCommit stores the commit hash, truncated to commit.length.
func (a *Absorber) absorbCommit(ctx context.Context) error {
	commit, err := a.source.Commit(ctx)
	if err != nil {
		return err
	}

	commit = strings.ToLower(strings.TrimSpace(commit))

	return a.apply(ctx, func(r *domain.Record) error {
		if commit == "" {
			return r.Set(domain.PathCommit, nil)
		}

		length, err := r.Int(domain.PathCommitLength)
		if err != nil {
			return err
		}

		if length > 0 && len(commit) > length {
			commit = commit[:length]
		}

		logger.InfoKV(ctx, "Absorbing commit", "commit", commit)

		return r.Set(domain.PathCommit, commit)
	})
}

// absorbTimestamp stores the git commit time, or now when it cannot be read.
func (a *Absorber) absorbTimestamp(ctx context.Context) error {
	moment := a.now()

	raw, err := a.source.Timestamp(ctx)

	switch parsed, ok := domain.ParseTimestamp(raw); {
	case err != nil:
		logger.WarnKV(ctx, "Cannot read git timestamp, using current time", "error", err)
	case !ok:
		logger.WarnKV(ctx, "Cannot parse git timestamp, using current time", "value", raw)
	default:
		moment = parsed
	}

	return a.apply(ctx, func(r *domain.Record) error {
		return domain.WriteTimestamp(r, domain.ExplodeTime(moment))
	})
}

// apply runs the read-modify-write cycle on a fresh copy of the record.
func (a *Absorber) apply(ctx context.Context, mutate mutation) error {
	updated := a.store.Root()

	if err := mutate(updated); err != nil {
		return err
	}

	return a.store.Update(ctx, updated)
}
