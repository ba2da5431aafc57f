package internal

import (
	"net/http"
)

// Lifecycle phases. The names are a stable contract for listeners.
const (
	PhaseRequestReceived   = "request.received"
	PhaseResponseCreated   = "response.created"
	PhaseResponseSent      = "response.sent"
	PhaseLifecycleError    = "lifecycle.error"
	PhaseRuntimeError      = "runtime.error"
	PhaseLifecycleComplete = "lifecycle.complete"
	PhaseShutdown          = "system.shutdown"
	PhaseSystemException   = "system.exception"
	PhaseHandleError       = "handle.error"

	// PhaseAny subscribes a listener to every phase.
	PhaseAny = "*"
)

// Event is the mutable record handed to listeners at each phase.
// One Event is created per lifecycle and updated in place; listeners may
// replace Request, Response or ErrorResponse and the lifecycle reads them
// back after the emit. Listeners must not keep the pointer after returning.
type Event struct {
	Request       *http.Request
	Response      *Response
	ErrorResponse *Response
	Err           error
	lifecycle     *Lifecycle
	Name          string
	Output        []byte
	stopped       bool
}

// NewEvent creates an event owned by l. l may be nil for events emitted
// outside a lifecycle.
func NewEvent(name string, l *Lifecycle) *Event {
	return &Event{Name: name, lifecycle: l}
}

// Lifecycle returns the lifecycle that emitted the event.
func (e *Event) Lifecycle() *Lifecycle {
	return e.lifecycle
}

// StopPropagation prevents the remaining listeners from seeing this emit.
func (e *Event) StopPropagation() {
	e.stopped = true
}

func (e *Event) IsPropagationStopped() bool {
	return e.stopped
}
