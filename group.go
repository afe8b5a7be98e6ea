package switchboard

import (
	"maps"
	"slices"
	"sync"
)

// ChannelGroup is a namespace of [Channel] values keyed by name.
//
// Channels are created lazily: [ChannelGroup.Get] never returns nil and
// returns the same *Channel for the same name until that channel is removed.
type ChannelGroup struct {
	name     string
	cfg      channelConfig
	mu       sync.Mutex
	channels map[string]*Channel
}

// NewChannelGroup creates an empty [ChannelGroup].
//
// opts are applied to every channel the group creates. Returns an error only
// if an option is invalid.
func NewChannelGroup(name string, opts ...ChannelOption) (*ChannelGroup, error) {
	cfg, err := newChannelConfig(opts)
	if err != nil {
		return nil, err
	}
	return newChannelGroup(name, cfg), nil
}

func newChannelGroup(name string, cfg channelConfig) *ChannelGroup {
	return &ChannelGroup{
		name:     name,
		cfg:      cfg,
		channels: make(map[string]*Channel),
	}
}

// Name returns the group name given at construction.
func (g *ChannelGroup) Name() string {
	return g.name
}

// Get returns the channel called name, creating an empty one if needed.
func (g *ChannelGroup) Get(name string) *Channel {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.channels[name]
	if !ok {
		ch = newChannel(g.qualify(name), g.cfg)
		g.channels[name] = ch
	}
	return ch
}

// Has reports whether a channel called name exists. It never creates one.
func (g *ChannelGroup) Has(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.channels[name]
	return ok
}

// Remove clears the channel called name and drops it from the group.
// Returns whether the channel existed.
func (g *ChannelGroup) Remove(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.channels[name]
	if !ok {
		return false
	}
	ch.Clear()
	delete(g.channels, name)
	return true
}

// Clear clears every channel in the group, then empties the group.
func (g *ChannelGroup) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, ch := range g.channels {
		ch.Clear()
	}
	clear(g.channels)
}

// Names returns the names of the existing channels, sorted.
func (g *ChannelGroup) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Sorted(maps.Keys(g.channels))
}

// Len returns the number of existing channels.
func (g *ChannelGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.channels)
}

// qualify builds the diagnostic name of a channel in this group.
func (g *ChannelGroup) qualify(channel string) string {
	if g.name == "" {
		return channel
	}
	return g.name + "/" + channel
}
