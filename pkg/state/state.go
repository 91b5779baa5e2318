// Package state provides the shared binding environment read by the render
// pipeline and mutated by application callbacks.
//
// A Store maps variable names to arbitrary values. Reads of unset names never
// fail: Get reports absence and leaves the choice of placeholder to the caller,
// which lets the render pipeline show different sentinels for content and
// property bindings.
//
//	store := state.New()
//	store.Set("count", 0)
//	store.Update("count", func(v any) any { return state.AsInt(v) + 1 })
//
// Stores carry no change notification. Callers re-render explicitly after
// mutating them.
package state

import (
	"maps"
	"slices"
	"sync"
)

// Sigil prefixes a variable name to form a binding token, as in "$count".
const Sigil = "$"

// Placeholder returns the binding token for name. It is the value a property
// binding resolves to when name is unset.
func Placeholder(name string) string {
	return Sigil + name
}

// Store is a mutable name to value mapping.
//
// The mutex only guards the map itself. A read-modify-write spread across Get
// and Set is not atomic, and a Store shared by several clients gives them no
// isolation from each other. Use Update for single-variable increments.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// Get returns the value bound to name and whether it is set.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set binds name to value, replacing any previous value.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = value
}

// Update replaces the value of name with fn applied to its current value.
// fn receives nil when name is unset.
func (s *Store) Update(name string, fn func(any) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = fn(s.values[name])
}

// Delete unbinds name. Deleting an unset name is a no-op.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}

// Len returns the number of bound names.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Names returns the bound names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Snapshot returns a shallow copy of the store contents.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// As returns the value of name converted to T, or the zero value of T when
// name is unset or holds a value of another type.
func As[T any](s *Store, name string) T {
	v, _ := s.Get(name)
	t, _ := v.(T)
	return t
}

// AsInt converts common numeric representations to int. Values decoded from
// client frames arrive as float64, so counters set from both sides stay usable.
func AsInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
