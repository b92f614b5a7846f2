package pulse

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Subscribe.
var (
	// ErrNilCallback is returned when subscribing a nil callback.
	ErrNilCallback = errors.New("pulse: nil callback")

	// ErrEmptyEventName is returned when subscribing with an empty
	// event name or pattern.
	ErrEmptyEventName = errors.New("pulse: empty event name")
)

// Sentinel causes carried inside a ListenerError.
var (
	// ErrListenerTimeout marks a Critical or High listener that exceeded
	// its tier timeout.
	ErrListenerTimeout = errors.New("pulse: listener timed out")

	// ErrListenerPanic marks a listener that panicked during invocation.
	ErrListenerPanic = errors.New("pulse: listener panicked")
)

// ListenerError describes one isolated listener failure. It never reaches a
// Publish caller; it exists for logs, metrics, and the failure journal.
type ListenerError struct {
	Event      string   // Event name being published
	ListenerID string   // Listener that failed
	Priority   Priority // Tier the listener ran in
	Err        error    // Underlying cause
}

// Error implements error.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s (%s) on %q: %v", e.ListenerID, e.Priority, e.Event, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ListenerError) Unwrap() error {
	return e.Err
}
