package internal

import (
	"sync"
)

// Listener receives lifecycle events. Returning an error stops the emit.
type Listener func(e *Event) error

// EventSink publishes lifecycle events to listeners.
type EventSink interface {
	Emit(e *Event) error
	AddListener(name string, l Listener)
	HasListeners(name string) bool
}

// Emitter is the default EventSink. Listeners run synchronously in
// registration order; wildcard listeners run after the named ones.
// The registry is safe for concurrent use; events are not.
type Emitter struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[string][]Listener)}
}

func (em *Emitter) AddListener(name string, l Listener) {
	if l == nil {
		return
	}
	em.mu.Lock()
	defer em.mu.Unlock()
	em.listeners[name] = append(em.listeners[name], l)
}

// RemoveListeners drops every listener registered for name.
func (em *Emitter) RemoveListeners(name string) {
	em.mu.Lock()
	defer em.mu.Unlock()
	delete(em.listeners, name)
}

func (em *Emitter) HasListeners(name string) bool {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.listeners[name]) > 0
}

// Emit delivers e to the listeners of e.Name and then to wildcard listeners.
func (em *Emitter) Emit(e *Event) error {
	if e == nil || e.Name == "" {
		return ErrEventName
	}
	e.stopped = false

	em.mu.RLock()
	named := em.listeners[e.Name]
	wildcard := em.listeners[PhaseAny]
	list := make([]Listener, 0, len(named)+len(wildcard))
	list = append(list, named...)
	if e.Name != PhaseAny {
		list = append(list, wildcard...)
	}
	em.mu.RUnlock()

	for _, l := range list {
		if err := l(e); err != nil {
			return err
		}
		if e.stopped {
			break
		}
	}
	return nil
}
