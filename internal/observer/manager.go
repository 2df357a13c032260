// Package observer fans out transmute.Event notifications to named,
// independently filterable sinks (logs, a WebSocket hub, a database audit
// log) without letting a slow or panicking sink block the caller.
package observer

import (
	"context"
	"fmt"
	"sync"

	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// EventFilter decides whether a NamedObserver wants to see a given event.
// A nil EventFilter (the common case) means "receive everything".
type EventFilter interface {
	ShouldNotify(event transmute.Event) bool
}

// EventFilterFunc adapts a function to an EventFilter.
type EventFilterFunc func(event transmute.Event) bool

func (f EventFilterFunc) ShouldNotify(event transmute.Event) bool { return f(event) }

// NamedObserver is a single addressable sink registered with a Manager.
type NamedObserver interface {
	Name() string
	Filter() EventFilter
	OnEvent(ctx context.Context, event transmute.Event) error
}

// Manager implements transmute.Observer by fanning a single Notify call out
// to every registered NamedObserver in its own goroutine, so one slow or
// panicking sink never delays or breaks a Transmute call.
type Manager struct {
	mu        sync.RWMutex
	observers []NamedObserver
	logger    *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger attaches a logger used to report per-observer failures.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager builds an empty Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds an observer under its name. It fails if the name is already
// taken, so misconfiguration surfaces at wiring time rather than silently
// dropping one of two same-named sinks.
func (m *Manager) Register(obs NamedObserver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.observers {
		if existing.Name() == obs.Name() {
			return fmt.Errorf("observer %q already registered", obs.Name())
		}
	}
	m.observers = append(m.observers, obs)
	return nil
}

// Unregister removes the observer with the given name.
func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, obs := range m.observers {
		if obs.Name() == name {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("observer %q not found", name)
}

// Count returns the number of registered observers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observers)
}

// Notify implements transmute.Observer, dispatching to every registered sink
// on its own goroutine with a context decoupled from the caller's
// cancellation so a sink can finish persisting an event even after the
// triggering Transmute call's context is done.
func (m *Manager) Notify(ctx context.Context, event transmute.Event) {
	m.mu.RLock()
	snapshot := make([]NamedObserver, len(m.observers))
	copy(snapshot, m.observers)
	m.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, obs := range snapshot {
		go m.notifyOne(detached, obs, event)
	}
}

func (m *Manager) notifyOne(ctx context.Context, obs NamedObserver, event transmute.Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "observer panicked",
				"observer", obs.Name(), "event_type", string(event.Type), "panic", r)
		}
	}()

	if filter := obs.Filter(); filter != nil && !filter.ShouldNotify(event) {
		return
	}
	if err := obs.OnEvent(ctx, event); err != nil {
		m.logger.ErrorContext(ctx, "observer failed",
			"observer", obs.Name(), "event_type", string(event.Type), "error", err)
	}
}
