package switchboard

import (
	"errors"
	"log/slog"
)

// storeConfig holds mutable state during Store construction.
type storeConfig struct {
	logger      *slog.Logger
	channelOpts []ChannelOption
}

// StoreOption configures a [Store] during construction.
//
// StoreOption follows the functional options pattern; an option returns an
// error if its argument is invalid and [NewStore] fails with that error.
//
// Built-in options: [WithStoreLogger], [WithChannelOptions].
type StoreOption func(*storeConfig) error

// WithStoreLogger sets the logger for the store and every channel it creates.
//
// Defaults to [slog.Default] if not specified.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	store, err := switchboard.NewStore(nil, nil, switchboard.WithStoreLogger(logger))
//
// Returns an error if logger is nil.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(cfg *storeConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithChannelOptions applies opts to every channel the store creates.
//
// Can be called multiple times; options accumulate in order. [NewStore]
// fails if any option is nil or rejects its argument.
//
// Example:
//
//	store, err := switchboard.NewStore(nil, nil,
//	    switchboard.WithChannelOptions(switchboard.WithErrorHandler(func(err *switchboard.ListenerError) {
//	        failures.Add(1)
//	    })),
//	)
func WithChannelOptions(opts ...ChannelOption) StoreOption {
	return func(cfg *storeConfig) error {
		for _, opt := range opts {
			if opt == nil {
				return errors.New("channel option cannot be nil")
			}
		}
		cfg.channelOpts = append(cfg.channelOpts, opts...)
		return nil
	}
}
