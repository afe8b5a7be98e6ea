package registry

import (
	"slices"
	"sync"
)

// Set is an insertion-ordered set of comparable values.
//
// Set is safe for concurrent access. Membership is decided by ==, so for
// pointer types two distinct pointers are two distinct members even when
// they point at equal values.
type Set[T comparable] struct {
	mu      sync.RWMutex
	order   []T
	members map[T]struct{}
}

// New creates an empty [Set].
func New[T comparable]() *Set[T] {
	return &Set[T]{
		members: make(map[T]struct{}),
	}
}

// Add appends v to the set. Returns false if v was already a member, in
// which case its original position is kept.
func (s *Set[T]) Add(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Remove deletes v from the set. Returns whether v was a member.
// Safe to call with a value that was never added.
func (s *Set[T]) Remove(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[v]; !ok {
		return false
	}
	delete(s.members, v)
	if i := slices.Index(s.order, v); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Has reports whether v is a member.
func (s *Set[T]) Has(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[v]
	return ok
}

// Snapshot returns the members in insertion order.
//
// The returned slice is a copy; later changes to the set do not affect it.
func (s *Set[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order)
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Clear removes every member.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	clear(s.members)
}
