package switchboard

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/jpalmerr/switchboard/internal/registry"
)

// Channel is a single pub/sub endpoint.
//
// A Channel holds an insertion-ordered set of [Listener] values. [Channel.Emit]
// calls each of them synchronously, in registration order, before returning.
// A Channel is created directly with [NewChannel] or lazily by a
// [ChannelGroup]; it is safe to share between components and goroutines.
//
// Listeners stay registered until disconnected or cleared. Callers that stop
// caring about a channel must disconnect to avoid leaks.
type Channel struct {
	channelConfig
	name      string
	listeners *registry.Set[*Listener]
}

// channelConfig holds the settings shared by every channel built from the
// same options.
type channelConfig struct {
	logger  *slog.Logger
	onError ErrorHandler
}

// newChannelConfig applies opts over the defaults.
func newChannelConfig(opts []ChannelOption) (channelConfig, error) {
	cfg := channelConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			return channelConfig{}, errors.New("channel option cannot be nil")
		}
		if err := opt(&cfg); err != nil {
			return channelConfig{}, err
		}
	}
	return cfg, nil
}

// ChannelOption configures a [Channel] during construction.
//
// An option returns an error if its argument is invalid and the constructor
// fails with that error. The same options can be handed to
// [NewChannelGroup] and [WithChannelOptions] to configure lazily created
// channels.
type ChannelOption func(*channelConfig) error

// WithLogger sets the logger used to report listener failures.
// Defaults to [slog.Default].
//
// Returns an error if logger is nil.
func WithLogger(logger *slog.Logger) ChannelOption {
	return func(cfg *channelConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithErrorHandler registers a handler that receives every listener failure
// in addition to the log record.
func WithErrorHandler(h ErrorHandler) ChannelOption {
	return func(cfg *channelConfig) error {
		cfg.onError = h
		return nil
	}
}

// NewChannel creates an empty [Channel]. The name is used in diagnostics only
// and may be empty.
//
// Returns an error only if an option is invalid.
func NewChannel(name string, opts ...ChannelOption) (*Channel, error) {
	cfg, err := newChannelConfig(opts)
	if err != nil {
		return nil, err
	}
	return newChannel(name, cfg), nil
}

func newChannel(name string, cfg channelConfig) *Channel {
	return &Channel{
		channelConfig: cfg,
		name:          name,
		listeners:     registry.New[*Listener](),
	}
}

// Name returns the channel name given at construction.
func (c *Channel) Name() string {
	return c.name
}

// Connect registers l and returns a handle that disconnects it.
//
// Connecting a listener that is already registered is a no-op; the returned
// handle still disconnects it. Returns [ErrInvalidListener] if l is nil or
// wraps a nil function, in which case nothing is registered.
func (c *Channel) Connect(l *Listener) (Disconnect, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: channel %q", ErrInvalidListener, c.name)
	}

	c.listeners.Add(l)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listeners.Remove(l)
		})
	}, nil
}

// ConnectFunc wraps fn in a new [Listener] and connects it.
//
// The Listener is returned so it can later be passed to [Channel.Disconnect].
func (c *Channel) ConnectFunc(fn ListenerFunc) (*Listener, Disconnect, error) {
	l := NewListener(fn)
	disconnect, err := c.Connect(l)
	if err != nil {
		return nil, nil, err
	}
	return l, disconnect, nil
}

// Disconnect removes l. Returns whether it was registered.
func (c *Channel) Disconnect(l *Listener) bool {
	if l == nil {
		return false
	}
	return c.listeners.Remove(l)
}

// Emit calls every registered listener with args, in registration order.
//
// The listener set is captured when Emit begins: listeners connected or
// disconnected by a running listener take effect from the next Emit. A
// listener that returns an error or panics is reported through the logger
// and the [ErrorHandler], and the remaining listeners still run.
//
// Listeners may call Emit re-entrantly. Nothing guards against unbounded
// recursion.
func (c *Channel) Emit(args ...any) {
	for _, l := range c.listeners.Snapshot() {
		c.invoke(l, args)
	}
}

// invoke calls a single listener with panic recovery.
func (c *Channel) invoke(l *Listener, args []any) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("listener panicked",
				"channel", c.name,
				"listener_id", l.id.String(),
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			c.report(&ListenerError{
				Channel:       c.name,
				ListenerID:    l.id,
				CorrelationID: correlationID,
				Err:           fmt.Errorf("listener panic: %v", r),
				Panic:         r,
			})
		}
	}()

	if err := l.fn(args...); err != nil {
		correlationID := uuid.NewString()
		c.logger.Error("listener failed",
			"channel", c.name,
			"listener_id", l.id.String(),
			"correlation_id", correlationID,
			"error", err.Error(),
		)
		c.report(&ListenerError{
			Channel:       c.name,
			ListenerID:    l.id,
			CorrelationID: correlationID,
			Err:           err,
		})
	}
}

// report forwards a failure to the error handler. A panicking handler is
// logged and otherwise ignored.
func (c *Channel) report(err *ListenerError) {
	if c.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error handler panicked",
				"channel", c.name,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	c.onError(err)
}

// Clear removes every listener.
func (c *Channel) Clear() {
	c.listeners.Clear()
}

// ListenerCount returns the number of registered listeners.
func (c *Channel) ListenerCount() int {
	return c.listeners.Len()
}
