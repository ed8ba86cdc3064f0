// Package observe delivers lifecycle events of a commit run to registered
// observers.
//
// Observers are called synchronously in registration order. An observer
// that returns an error or panics is logged and skipped; it never affects
// the run or the observers after it.
package observe

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/clock"
)

// EventType identifies a lifecycle transition.
type EventType string

// Event types.
const (
	CommandStarted   EventType = "command_started"
	CommandSucceeded EventType = "command_succeeded"
	CommandFailed    EventType = "command_failed"
	CommitCreated    EventType = "commit_created"
	CommandUndone    EventType = "command_undone"
)

// String returns the event type name.
func (t EventType) String() string {
	return string(t)
}

// Event describes one lifecycle transition.
type Event struct {
	Type EventType

	// Kind is the command kind: stage, commit, push, or merge.
	Kind string

	// Target is the unit scope for stage and commit commands, or the ref
	// for push and merge.
	Target string

	// Files are the unit's paths, when the command has a unit.
	Files []string

	// CommitID is set on CommitCreated.
	CommitID string

	// Err is set on CommandFailed, and on CommandUndone when undo failed.
	Err error

	RunID string
	At    time.Time
}

// Observer receives events.
type Observer interface {
	OnEvent(e Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event) error

// OnEvent calls f.
func (f ObserverFunc) OnEvent(e Event) error {
	return f(e)
}

type registration struct {
	name     string
	observer Observer
}

// Registry holds observers in registration order.
type Registry struct {
	mu        sync.RWMutex
	observers []registration
	runID     string
	clock     clock.Clock
	logger    zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report failing observers.
func WithRegistryLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRunID stamps every event that has no run id.
func WithRunID(id string) RegistryOption {
	return func(r *Registry) {
		r.runID = id
	}
}

// WithClock sets the clock used to stamp events that have no time.
func WithClock(c clock.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends an observer. Registering a name twice replaces the
// earlier observer in place.
func (r *Registry) Register(name string, o Observer) {
	if o == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.observers {
		if r.observers[i].name == name {
			r.observers[i].observer = o
			return
		}
	}
	r.observers = append(r.observers, registration{name: name, observer: o})
}

// Unregister removes the named observer.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.observers {
		if r.observers[i].name == name {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Names returns the registered observer names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.observers))
	for i, reg := range r.observers {
		names[i] = reg.name
	}
	return names
}

// Notify delivers e to every observer in registration order.
// A nil Registry ignores events.
func (r *Registry) Notify(e Event) {
	if r == nil {
		return
	}
	if e.RunID == "" {
		e.RunID = r.runID
	}
	if e.At.IsZero() {
		e.At = r.clock.Now()
	}

	r.mu.RLock()
	observers := make([]registration, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, reg := range observers {
		if err := r.deliver(reg.observer, e); err != nil {
			r.logger.Warn().
				Err(err).
				Str("observer", reg.name).
				Str("event", e.Type.String()).
				Msg("observer failed")
		}
	}
}

// deliver calls o and converts a panic into an error.
func (r *Registry) deliver(o Observer, e Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrObserverPanic, p)
		}
	}()
	return o.OnEvent(e)
}
