package version

import (
	"context"
	"sync"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

// Listener observes record changes. Only the event name is delivered.
type Listener func(ctx context.Context, event domain.Event)

// Dispatcher fans events out to listeners synchronously, in subscription order.
type Dispatcher struct {
	listeners []Listener
	mu        sync.RWMutex
}

// NewDispatcher creates a dispatcher without listeners.
func NewDispatcher() *Dispatcher {
	return new(Dispatcher)
}

// Subscribe registers a listener.
func (d *Dispatcher) Subscribe(listener Listener) {
	if listener == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = append(d.listeners, listener)
}

// Fire delivers event to every listener.
func (d *Dispatcher) Fire(ctx context.Context, event domain.Event) {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, event)
	}
}
