package switchboard

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
)

const (
	// DefaultGroup is the group every Store has. Updates target it unless
	// told otherwise, and resets always do.
	DefaultGroup = "state"

	// ChangedChannel is the default channel for [Store.Update].
	ChangedChannel = "changed"

	// ResetChannel is the channel [Store.Reset] emits on.
	ResetChannel = "reset"
)

// Store pairs a [State] with named [ChannelGroup] values and announces state
// changes on them.
//
// Every change replaces the state with a new shallow copy and emits
// (next, prev) on a channel, synchronously, before the changing call
// returns. Listeners may call back into the Store.
//
// A Store is meant to be shared: construct it once and hand the pointer to
// every component that reads, changes or observes the state. It is safe for
// concurrent use; no lock is held while listeners, updaters or selector
// functions run. An update that races with another change is reapplied to
// the newer state, so concurrent merges of different keys all land.
type Store struct {
	mu      sync.RWMutex
	state   State
	version uint64
	groups  map[string]*ChannelGroup
	chanCfg channelConfig
	logger  *slog.Logger
}

// NewStore creates a [Store] holding a shallow copy of initial.
//
// One empty [ChannelGroup] is created per name in groups, plus the
// [DefaultGroup] if groups does not name it. Either form of [GroupSpec]
// is accepted:
//
//	store, err := switchboard.NewStore(
//	    switchboard.State{"count": 0},
//	    switchboard.GroupNames{"ui", "network"},
//	    switchboard.WithStoreLogger(logger),
//	)
//
// Returns an error only if an option is invalid.
func NewStore(initial State, groups GroupSpec, opts ...StoreOption) (*Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	// store logger first so explicit channel options can override it
	chanCfg, err := newChannelConfig(append([]ChannelOption{WithLogger(logger)}, cfg.channelOpts...))
	if err != nil {
		return nil, err
	}

	s := &Store{
		state:   initial.clone(),
		groups:  make(map[string]*ChannelGroup),
		chanCfg: chanCfg,
		logger:  logger,
	}

	var names []string
	if groups != nil {
		names = groups.groupNames()
	}
	for _, name := range names {
		s.ensureGroup(name)
	}
	s.ensureGroup(DefaultGroup)

	logger.Debug("store created",
		"groups", s.Groups(),
		"keys", len(s.state),
	)
	return s, nil
}

// State returns the current state.
//
// The map is the store's own value and is replaced, never modified, by later
// changes. Do not modify it.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// updateTarget names the group and channel an update emits on.
type updateTarget struct {
	group   string
	channel string
}

// UpdateOption selects where [Store.Update] announces the change.
type UpdateOption func(*updateTarget)

// OnGroup makes [Store.Update] emit within the named group.
// Defaults to [DefaultGroup].
func OnGroup(name string) UpdateOption {
	return func(t *updateTarget) {
		t.group = name
	}
}

// OnChannel makes [Store.Update] emit on the named channel.
// Defaults to [ChangedChannel].
func OnChannel(name string) UpdateOption {
	return func(t *updateTarget) {
		t.channel = name
	}
}

// Update applies u and returns the new state.
//
// A [Merge] overwrites matching keys and keeps the rest; an [UpdateFunc]
// supplies the complete new state. Either way the stored state becomes a
// new map, distinct from the previous one and from the prev value handed to
// listeners.
//
// After the state is replaced, the target channel (default "state"/"changed",
// see [OnGroup] and [OnChannel]) is emitted with (next, prev). The channel is
// created if the group exists but lacks it. If the group does not exist the
// change still happens and nothing is emitted; unlike [Store.Connect],
// Update never creates groups.
//
// If another goroutine changes the state while u is being applied, u is
// applied again to the newer state. An [UpdateFunc] may therefore run more
// than once and must not call back into the Store.
//
// Returns [ErrInvalidUpdater] if u is nil or a nil function, leaving the
// state unchanged.
func (s *Store) Update(u Updater, opts ...UpdateOption) (State, error) {
	target := updateTarget{group: DefaultGroup, channel: ChangedChannel}
	for _, opt := range opts {
		opt(&target)
	}

	if u == nil {
		return nil, ErrInvalidUpdater
	}

	var (
		prev, next State
		group      *ChannelGroup
		ok         bool
	)
	for {
		s.mu.RLock()
		current, version := s.state, s.version
		s.mu.RUnlock()

		prev = current.clone()
		var err error
		next, err = u.apply(current)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.version != version {
			// another change landed while u ran; apply u again on top of it
			s.mu.Unlock()
			continue
		}
		s.state = next
		s.version++
		group, ok = s.groups[target.group]
		s.mu.Unlock()
		break
	}

	if !ok {
		s.logger.Debug("update target group missing, not emitting",
			"group", target.group,
			"channel", target.channel,
		)
		return next, nil
	}

	group.Get(target.channel).Emit(next, prev)
	return next, nil
}

// Select reads from the current state.
//
// A [Path] walks nested mappings and yields nil at the first missing key.
// [Keys] yields a map with one entry per key. A [SelectFunc] receives the
// state and its result is returned as-is. A nil selector returns the current
// state itself, not a copy.
func (s *Store) Select(sel Selector) any {
	state := s.State()
	if sel == nil {
		return state
	}
	return sel.selectFrom(state)
}

// Connect registers l on the named channel of the named group, creating
// either if missing, and returns its disconnect handle.
//
// Returns [ErrInvalidListener] if l is not a valid listener.
func (s *Store) Connect(group, channel string, l *Listener) (Disconnect, error) {
	if !l.valid() {
		return nil, ErrInvalidListener
	}
	return s.ensureGroup(group).Get(channel).Connect(l)
}

// ConnectFunc wraps fn in a new [Listener] and connects it as [Store.Connect] does.
func (s *Store) ConnectFunc(group, channel string, fn ListenerFunc) (*Listener, Disconnect, error) {
	l := NewListener(fn)
	disconnect, err := s.Connect(group, channel, l)
	if err != nil {
		return nil, nil, err
	}
	return l, disconnect, nil
}

// Reset replaces the state with a shallow copy of initial (empty if nil) and
// emits (next, prev) on "state"/"reset". The target is fixed; update options
// do not apply.
func (s *Store) Reset(initial State) State {
	next := initial.clone()

	s.mu.Lock()
	prev := s.state.clone()
	s.state = next
	s.version++
	s.mu.Unlock()

	s.ensureGroup(DefaultGroup).Get(ResetChannel).Emit(next, prev)
	return next
}

// Group returns the named group, if it exists.
func (s *Store) Group(name string) (*ChannelGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[name]
	return g, ok
}

// Groups returns the names of all groups, sorted.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.groups))
}

// ensureGroup returns the named group, creating it if missing.
func (s *Store) ensureGroup(name string) *ChannelGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[name]
	if !ok {
		g = newChannelGroup(name, s.chanCfg)
		s.groups[name] = g
	}
	return g
}
