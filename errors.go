package switchboard

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidListener is returned when something that is not a callable
	// listener is offered to a [Channel]. No registration takes place.
	ErrInvalidListener = errors.New("switchboard: listener must be a non-nil function")

	// ErrInvalidUpdater is returned by [Store.Update] when the updater is
	// neither a mapping nor a function. The store state is left untouched.
	ErrInvalidUpdater = errors.New("switchboard: updater must be a mapping or a function")
)

// ListenerError describes a listener that failed during [Channel.Emit].
//
// A listener fails either by returning a non-nil error or by panicking.
// In both cases the failure is reported and emission continues with the
// next listener; the caller of Emit never sees it.
type ListenerError struct {
	// Channel is the name of the emitting channel.
	Channel string

	// ListenerID identifies the failing listener. See [Listener.ID].
	ListenerID uuid.UUID

	// CorrelationID ties this report to the matching log record.
	CorrelationID string

	// Err is the error returned by the listener, or an error describing
	// the recovered panic.
	Err error

	// Panic is the recovered panic value. nil if the listener returned an error.
	Panic any
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("listener %s on channel %q panicked (correlation_id: %s): %v",
			e.ListenerID, e.Channel, e.CorrelationID, e.Panic)
	}
	return fmt.Sprintf("listener %s on channel %q failed (correlation_id: %s): %v",
		e.ListenerID, e.Channel, e.CorrelationID, e.Err)
}

// Unwrap returns the underlying listener error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives listener failures. It is called synchronously from
// [Channel.Emit], after the failure has been logged.
type ErrorHandler func(err *ListenerError)
