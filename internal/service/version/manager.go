package version

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
)

// Manager is the entry point used by commands, the template directive and
// the gRPC server. Mutations are serialized, and increments are refused for
// fields in absorb mode before the record is touched.
type Manager struct {
	store       *Store
	incrementer *Incrementer
	absorber    *Absorber
	renderer    *Renderer
	events      *Dispatcher
	now         func() time.Time

	// mu serializes mutations.
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithDispatcher shares an existing event dispatcher.
func WithDispatcher(events *Dispatcher) Option {
	return func(m *Manager) {
		if events != nil {
			m.events = events
		}
	}
}

// WithNow replaces time.Now for timestamp refreshes and absorb fallbacks.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires the engine around store. source may be nil when absorb is never used.
func NewManager(store *Store, source Source, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:  store,
		events: NewDispatcher(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.incrementer = NewIncrementer(store)
	m.absorber = NewAbsorber(store, source, m.events, WithClock(m.now))
	m.renderer = NewRenderer(store)

	if err := m.renderer.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Events returns the dispatcher used for change notifications.
func (m *Manager) Events() *Dispatcher {
	return m.events
}

// Renderer returns the format renderer.
func (m *Manager) Renderer() *Renderer {
	return m.renderer
}

// IsInAbsorbMode reports whether field may only be changed by absorb.
func (m *Manager) IsInAbsorbMode(field domain.Field) bool {
	return m.store.Mode(field) == domain.ModeAbsorb
}

// Increment applies the increment rule of part and returns the new value.
// by overrides commit.increment-by and is ignored for other parts.
func (m *Manager) Increment(ctx context.Context, part domain.Part, by *int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsInAbsorbMode(part.Field()) {
		return "", &domain.AbsorbModeError{Field: part.Field()}
	}

	var (
		value string
		err   error
	)

	switch part {
	case domain.PartMajor:
		value, err = itoa(m.incrementer.IncrementMajor(ctx))
	case domain.PartMinor:
		value, err = itoa(m.incrementer.IncrementMinor(ctx))
	case domain.PartPatch:
		value, err = itoa(m.incrementer.IncrementPatch(ctx))
	case domain.PartCommit:
		value, err = m.incrementer.IncrementCommit(ctx, by)
	case domain.PartTimestamp:
		var exploded domain.Timestamp

		exploded, err = m.incrementer.RefreshTimestamp(ctx, m.now())
		value = exploded.Time().Format(time.RFC3339)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrMethodNotFound, part)
	}

	if err != nil {
		return "", fmt.Errorf("increment %s: %w", part, err)
	}

	logger.InfoKV(ctx, "Version incremented", "part", string(part), "value", value)
	m.events.Fire(ctx, part.Event())

	return value, nil
}

// Absorb pulls values from source control for every field in absorb mode.
func (m *Manager) Absorb(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.absorber.Absorb(ctx)
}

// Format renders a named format. The second result is false when it does not exist.
func (m *Manager) Format(name string) (string, bool) {
	return m.renderer.Format(name)
}

// Template returns the unexpanded template of a format.
func (m *Manager) Template(name string) (string, bool) {
	return m.store.Scalar(domain.PathFormats + "." + name)
}

// Current renders the version format.
func (m *Manager) Current() string {
	return m.renderer.Current()
}

// Formats lists the names of the renderable formats.
func (m *Manager) Formats() []string {
	root := m.store.Root()
	keys := root.Keys(domain.PathFormats)

	names := keys[:0]
	for _, key := range keys {
		if _, ok := root.Scalar(domain.PathFormats + "." + key); ok {
			names = append(names, key)
		}
	}

	return names
}

// Snapshot returns the whole record as nested maps.
func (m *Manager) Snapshot() (map[string]any, error) {
	return m.store.Root().Map()
}

// Timestamp returns the stored timestamp. The second result is false when none is recorded.
func (m *Manager) Timestamp() (time.Time, bool) {
	exploded, ok := domain.ReadTimestamp(m.store.Root())
	if !ok {
		return time.Time{}, false
	}

	return exploded.Time(), true
}

func itoa(value int, err error) (string, error) {
	if err != nil {
		return "", err
	}

	return strconv.Itoa(value), nil
}
