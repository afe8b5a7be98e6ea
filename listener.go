package switchboard

import (
	"fmt"

	"github.com/google/uuid"
)

// ListenerFunc is the callback signature accepted by a [Channel].
//
// Arguments are whatever was passed to [Channel.Emit]. For channels driven
// by a [Store] they are (next State, prev State). A returned error is logged
// and does not stop the emission.
type ListenerFunc func(args ...any) error

// Listener is a registered callback.
//
// Go functions are not comparable, so a Listener is the unit of identity:
// connecting the same *Listener twice registers it once, while two
// Listeners wrapping the same function are two separate registrations.
type Listener struct {
	id uuid.UUID
	fn ListenerFunc
}

// NewListener wraps fn in a [Listener] with a fresh ID.
//
// A nil fn produces a Listener that every Connect rejects with
// [ErrInvalidListener].
func NewListener(fn ListenerFunc) *Listener {
	return &Listener{
		id: uuid.New(),
		fn: fn,
	}
}

// StateListener adapts a typed state callback for use with [Store.Connect].
//
// Emissions whose arguments are not (State, State) are ignored.
//
// Example:
//
//	store.Connect("state", "changed", switchboard.StateListener(func(next, prev switchboard.State) {
//	    fmt.Println("count:", prev["count"], "->", next["count"])
//	}))
func StateListener(fn func(next, prev State)) *Listener {
	if fn == nil {
		return NewListener(nil)
	}
	return NewListener(func(args ...any) error {
		if len(args) < 2 {
			return nil
		}
		next, ok1 := args[0].(State)
		prev, ok2 := args[1].(State)
		if !ok1 || !ok2 {
			return nil
		}
		fn(next, prev)
		return nil
	})
}

// ListenerFrom converts a dynamically typed value into a [Listener].
//
// Accepted values are *Listener, ListenerFunc, func(...any) error,
// func(...any), func() and func(next, prev State). Anything else, nil
// included, fails with [ErrInvalidListener].
func ListenerFrom(v any) (*Listener, error) {
	var l *Listener
	switch fn := v.(type) {
	case *Listener:
		l = fn
	case ListenerFunc:
		if fn != nil {
			l = NewListener(fn)
		}
	case func(...any) error:
		if fn != nil {
			l = NewListener(fn)
		}
	case func(...any):
		if fn != nil {
			l = NewListener(func(args ...any) error {
				fn(args...)
				return nil
			})
		}
	case func():
		if fn != nil {
			l = NewListener(func(...any) error {
				fn()
				return nil
			})
		}
	case func(next, prev State):
		if fn != nil {
			l = StateListener(fn)
		}
	}

	if !l.valid() {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidListener, v)
	}
	return l, nil
}

// ID returns the listener's unique identifier. It appears in logs and in
// [ListenerError] reports.
func (l *Listener) ID() uuid.UUID {
	return l.id
}

func (l *Listener) valid() bool {
	return l != nil && l.fn != nil
}

// Disconnect removes exactly one listener from the channel it was connected
// to. Calling it more than once is harmless.
type Disconnect func()
