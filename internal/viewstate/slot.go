// Package viewstate keeps the latest snapshot of each console view and discards
// responses that arrive after a newer load of the same view has started.
package viewstate

import (
	"sync"
	"time"
)

// Ticket identifies one load of a view.
type Ticket struct {
	generation uint64
}

// Slot holds the current snapshot of a single view.
type Slot[T any] struct {
	mu         sync.Mutex
	generation uint64
	value      T
	loaded     bool
	key        string
	updatedAt  time.Time
}

// Begin starts a new load and supersedes any load still in flight.
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return Ticket{generation: s.generation}
}

// Current reports whether t is still the newest load.
func (s *Slot[T]) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.generation == s.generation
}

// Commit stores value if t is still current. Stale results are dropped and false
// is returned.
func (s *Slot[T]) Commit(t Ticket, key string, value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.generation != s.generation {
		return false
	}
	s.value = value
	s.key = key
	s.loaded = true
	s.updatedAt = time.Now().UTC()
	return true
}

// Snapshot returns the last committed value and the key it was loaded for.
func (s *Slot[T]) Snapshot() (value T, key string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.key, s.loaded
}

// Reset forgets the snapshot and invalidates in-flight loads.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.generation++
	s.value = zero
	s.key = ""
	s.loaded = false
	s.updatedAt = time.Time{}
}

// UpdatedAt returns when the snapshot was committed.
func (s *Slot[T]) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
