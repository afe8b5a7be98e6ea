package switchboard

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

// newTestGroup creates a group, failing the test on invalid options.
func newTestGroup(t *testing.T, name string, opts ...ChannelOption) *ChannelGroup {
	t.Helper()

	g, err := NewChannelGroup(name, opts...)
	if err != nil {
		t.Fatalf("NewChannelGroup() error = %v", err)
	}
	return g
}

func TestChannelGroup_GetCreatesLazily(t *testing.T) {
	g := newTestGroup(t, "ui")

	if g.Has("click") {
		t.Error("Has(click) = true before Get")
	}

	ch := g.Get("click")
	if ch == nil {
		t.Fatal("Get(click) = nil")
	}
	if !g.Has("click") {
		t.Error("Has(click) = false after Get")
	}
	if ch.Name() != "ui/click" {
		t.Errorf("Name() = %q, want %q", ch.Name(), "ui/click")
	}
}

func TestChannelGroup_GetReturnsSameChannel(t *testing.T) {
	g := newTestGroup(t, "ui")

	if g.Get("click") != g.Get("click") {
		t.Error("Get() returned different channels for the same name")
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestChannelGroup_HasDoesNotCreate(t *testing.T) {
	g := newTestGroup(t, "ui")

	_ = g.Has("missing")
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestChannelGroup_Remove(t *testing.T) {
	g := newTestGroup(t, "ui")

	ch := g.Get("click")
	called := false
	_, _, _ = ch.ConnectFunc(func(args ...any) error {
		called = true
		return nil
	})

	if !g.Remove("click") {
		t.Error("Remove(click) = false, want true")
	}
	if g.Has("click") {
		t.Error("Has(click) = true after Remove")
	}
	if ch.ListenerCount() != 0 {
		t.Errorf("removed channel ListenerCount() = %d, want 0", ch.ListenerCount())
	}

	// a stale reference no longer reaches the old listener
	ch.Emit()
	if called {
		t.Error("listener on removed channel should have been cleared")
	}

	if g.Remove("click") {
		t.Error("second Remove(click) = true, want false")
	}

	// a fresh channel replaces the removed one
	if g.Get("click") == ch {
		t.Error("Get() after Remove returned the removed channel")
	}
}

func TestChannelGroup_Clear(t *testing.T) {
	g := newTestGroup(t, "ui")

	a := g.Get("a")
	b := g.Get("b")
	_, _, _ = a.ConnectFunc(func(args ...any) error { return nil })
	_, _, _ = b.ConnectFunc(func(args ...any) error { return nil })

	g.Clear()

	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
	if a.ListenerCount() != 0 || b.ListenerCount() != 0 {
		t.Error("Clear() should clear every channel's listeners")
	}
}

func TestChannelGroup_Names(t *testing.T) {
	g := newTestGroup(t, "ui")
	g.Get("zeta")
	g.Get("alpha")
	g.Get("mid")

	want := []string{"alpha", "mid", "zeta"}
	if got := g.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestChannelGroup_ChannelsInheritOptions(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	g := newTestGroup(t, "ui", WithLogger(logger))
	_, _, _ = g.Get("click").ConnectFunc(func(args ...any) error {
		panic("boom")
	})

	g.Get("click").Emit()

	if !strings.Contains(logBuf.String(), "ui/click") {
		t.Errorf("log should mention qualified channel name, got %q", logBuf.String())
	}
}

func TestChannelGroup_UnnamedGroupKeepsChannelName(t *testing.T) {
	g := newTestGroup(t, "")
	if got := g.Get("click").Name(); got != "click" {
		t.Errorf("Name() = %q, want %q", got, "click")
	}
}

func TestNewChannelGroup_NilLoggerRejected(t *testing.T) {
	g, err := NewChannelGroup("ui", WithLogger(nil))
	if err == nil {
		t.Fatal("expected error for nil logger")
	}
	if g != nil {
		t.Error("NewChannelGroup() returned a group on error")
	}
}
