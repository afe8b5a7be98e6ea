// Package switchboard provides an in-process publish/subscribe primitive and
// a small state container built on top of it.
//
// Switchboard lets independent components exchange notifications and shared
// state without holding references to each other. Everything is synchronous:
// when a value is emitted, every listener has run by the time the emitting
// call returns.
//
// # Quick Start
//
// Share one [Store] between the components that care about the same state:
//
//	store, _ := switchboard.NewStore(switchboard.State{"count": 0}, switchboard.GroupNames{"ui"})
//
//	disconnect, _ := store.Connect("state", "changed", switchboard.StateListener(func(next, prev switchboard.State) {
//	    fmt.Println(prev["count"], "->", next["count"])
//	}))
//	defer disconnect()
//
//	store.Update(switchboard.Merge{"count": 1})                    // prints 0 -> 1
//	store.Update(switchboard.UpdateFunc(func(s switchboard.State) switchboard.State {
//	    return switchboard.State{"count": s["count"].(int) + 1}
//	}))                                                             // prints 1 -> 2
//
// # Building Blocks
//
// The package has three layers:
//
//   - [Channel]: an ordered set of [Listener] values with Connect, Disconnect,
//     Emit and Clear
//   - [ChannelGroup]: a namespace of channels created lazily on first access
//   - [Store]: a [State] mapping plus named groups; [Store.Update] and
//     [Store.Reset] replace the state and emit (next, prev)
//
// Listener identity is the *Listener pointer. Connecting the same Listener
// twice registers it once; the [Disconnect] handle returned by Connect removes
// exactly that listener and is safe to call repeatedly.
//
// # Tagged Arguments
//
// Arguments that can take several shapes are small closed sets of types:
//
//   - [Updater]: [Merge] or [UpdateFunc]
//   - [Selector]: [Path], [Keys] or [SelectFunc]
//   - [GroupSpec]: [GroupNames] or [GroupMap]
//
// [UpdaterFrom], [SelectorFrom] and [ListenerFrom] convert dynamically typed
// values, such as decoded YAML, at the boundary.
//
// # Failures
//
// Misuse fails fast: [ErrInvalidListener] from Connect, [ErrInvalidUpdater]
// from Update. A listener that returns an error or panics during emission is
// logged through [log/slog] (and passed to an optional [ErrorHandler]); the
// remaining listeners still run and Emit does not fail.
//
// # Architecture
//
// Internal packages (under internal/):
//
//   - internal/registry: insertion-ordered identity set backing each channel
//   - internal/sbtest: test helpers
//
// The config package and cmd/switchboard replay YAML scenarios against a
// Store for experimentation and debugging.
package switchboard
