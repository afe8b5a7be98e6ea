package switchboard

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// State is the mapping held by a [Store].
//
// The store replaces its State wholesale on every change and never mutates
// one in place. Callers must treat any State they receive as read-only.
type State map[string]any

// clone returns a shallow copy of s. The result is never nil.
func (s State) clone() State {
	out := make(State, len(s))
	maps.Copy(out, s)
	return out
}

// Updater describes a state change for [Store.Update].
//
// The implementations are [Merge] and [UpdateFunc]. Use [UpdaterFrom] to
// convert a dynamically typed value.
type Updater interface {
	apply(current State) (State, error)
}

// Merge is an [Updater] whose keys overwrite the matching keys of the
// current state. Keys not present in the Merge are kept.
type Merge State

func (m Merge) apply(current State) (State, error) {
	next := current.clone()
	maps.Copy(next, m)
	return next, nil
}

// UpdateFunc is an [Updater] that computes the complete new state from the
// current one. The function may return its argument; the store copies the
// result either way.
type UpdateFunc func(current State) State

func (f UpdateFunc) apply(current State) (State, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil UpdateFunc", ErrInvalidUpdater)
	}
	return f(current).clone(), nil
}

// UpdaterFrom converts a dynamically typed value into an [Updater].
//
// Mappings (State, Merge, map[string]any) become a [Merge]; functions of
// type func(State) State or func(map[string]any) map[string]any become an
// [UpdateFunc]. Anything else, nil included, fails with [ErrInvalidUpdater].
func UpdaterFrom(v any) (Updater, error) {
	switch u := v.(type) {
	case Merge:
		return u, nil
	case State:
		return Merge(u), nil
	case map[string]any:
		return Merge(u), nil
	case UpdateFunc:
		if u != nil {
			return u, nil
		}
	case func(State) State:
		if u != nil {
			return UpdateFunc(u), nil
		}
	case func(map[string]any) map[string]any:
		if u != nil {
			return UpdateFunc(func(s State) State {
				return u(s)
			}), nil
		}
	}
	return nil, fmt.Errorf("%w: got %T", ErrInvalidUpdater, v)
}

// Selector reads a value out of a [State] for [Store.Select].
//
// The implementations are [Path], [Keys] and [SelectFunc]. Use
// [SelectorFrom] to convert a dynamically typed value.
type Selector interface {
	selectFrom(s State) any
}

// Path selects a nested value by dot-delimited keys, e.g. "user.name".
//
// Traversal stops with nil as soon as a key is missing or an intermediate
// value is not a mapping.
type Path string

func (p Path) selectFrom(s State) any {
	var current any = s
	for _, key := range strings.Split(string(p), ".") {
		var ok bool
		current, ok = lookupKey(current, key)
		if !ok {
			return nil
		}
	}
	return current
}

// Keys selects several top-level keys at once. The result is a
// map[string]any holding one entry per key, nil for missing keys.
//
// Keys are looked up as-is: "a.b" is the top-level key "a.b", not a path.
type Keys []string

func (k Keys) selectFrom(s State) any {
	out := make(map[string]any, len(k))
	for _, key := range k {
		out[key] = s[key]
	}
	return out
}

// SelectFunc is a [Selector] that receives the whole state. Its return value
// is passed through unchanged.
type SelectFunc func(s State) any

func (f SelectFunc) selectFrom(s State) any {
	if f == nil {
		return s
	}
	return f(s)
}

// SelectorFrom converts a dynamically typed value into a [Selector].
//
// A string becomes a [Path]; a []string, or a []any whose elements are all
// strings, becomes [Keys]; func(State) any becomes a [SelectFunc]. nil
// yields a nil Selector, which selects the whole state.
func SelectorFrom(v any) (Selector, error) {
	switch sel := v.(type) {
	case nil:
		return nil, nil
	case Selector:
		return sel, nil
	case string:
		return Path(sel), nil
	case []string:
		return Keys(sel), nil
	case []any:
		keys := make(Keys, 0, len(sel))
		for i, item := range sel {
			key, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("selector key [%d] must be a string, got %T", i, item)
			}
			keys = append(keys, key)
		}
		return keys, nil
	case func(State) any:
		return SelectFunc(sel), nil
	}
	return nil, fmt.Errorf("selector must be a path, a list of keys or a function, got %T", v)
}

// lookupKey returns v[key] if v is a mapping with string keys holding key.
// Any map type whose key kind is string qualifies, e.g. map[string]string.
func lookupKey(v any, key string) (any, bool) {
	switch m := v.(type) {
	case State:
		val, ok := m[key]
		return val, ok
	case Merge:
		val, ok := m[key]
		return val, ok
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

// GroupSpec lists the channel groups a [Store] starts with.
//
// The implementations are [GroupNames] and [GroupMap]. A nil GroupSpec
// creates only the default group.
type GroupSpec interface {
	groupNames() []string
}

// GroupNames is a [GroupSpec] given as an ordered list of names.
type GroupNames []string

func (n GroupNames) groupNames() []string {
	return slices.Clone(n)
}

// GroupMap is a [GroupSpec] given as a mapping; its keys are the group
// names and its values are ignored.
type GroupMap[V any] map[string]V

func (m GroupMap[V]) groupNames() []string {
	return slices.Sorted(maps.Keys(m))
}
