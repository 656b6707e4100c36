// Package favorites holds the set of record ids the user has starred.
package favorites

import (
	"sort"
	"sync"

	"github.com/V2473/pokedex/internal/observe"
)

// StorageKey is the persisted blob name.
const StorageKey = "favorites-storage"

// Set maps a record id to true. Absence means "not a favorite"; a false
// value is never stored.
type Set map[int]bool

// Has reports whether id is in the set. Safe on a nil set.
func (s Set) Has(id int) bool {
	return s[id]
}

// Add returns a copy of s containing id.
func (s Set) Add(id int) Set {
	out := s.Clone()
	out[id] = true
	return out
}

// Remove returns a copy of s without id.
func (s Set) Remove(id int) Set {
	out := s.Clone()
	delete(out, id)
	return out
}

// Toggle returns a copy of s with id flipped.
func (s Set) Toggle(id int) Set {
	if s.Has(id) {
		return s.Remove(id)
	}
	return s.Add(id)
}

// Clone copies s, dropping any false entries. The result is never nil.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id, ok := range s {
		if ok {
			out[id] = true
		}
	}
	return out
}

// IDs returns the member ids in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for id, ok := range s {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Blob is the persisted shape.
type Blob struct {
	Favorites Set `json:"favorites"`
}

// Store is the favorites container. Mutations notify subscribers with the
// new set after the lock is released.
type Store struct {
	mu      sync.RWMutex
	set     Set
	changes observe.Ordered[Set]
}

// NewStore returns a store seeded with initial (may be nil).
func NewStore(initial Set) *Store {
	return &Store{set: initial.Clone()}
}

// Add marks id as favorite.
func (s *Store) Add(id int) {
	s.update(func(cur Set) Set { return cur.Add(id) })
}

// Remove unmarks id.
func (s *Store) Remove(id int) {
	s.update(func(cur Set) Set { return cur.Remove(id) })
}

// Toggle flips id and returns whether it is now a favorite.
func (s *Store) Toggle(id int) bool {
	var now bool
	s.update(func(cur Set) Set {
		next := cur.Toggle(id)
		now = next.Has(id)
		return next
	})
	return now
}

// Clear empties the set.
func (s *Store) Clear() {
	s.update(func(Set) Set { return Set{} })
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Has(id)
}

// IDs returns the favorite ids in ascending order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.IDs()
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set)
}

// Snapshot returns a copy of the current set.
func (s *Store) Snapshot() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Clone()
}

// Blob returns the persisted shape of the current set.
func (s *Store) Blob() Blob {
	return Blob{Favorites: s.Snapshot()}
}

// Subscribe registers fn for every mutation and returns its unsubscribe.
func (s *Store) Subscribe(fn func(Set)) func() {
	return s.changes.Subscribe(fn)
}

func (s *Store) update(fn func(Set) Set) {
	s.mu.Lock()
	s.set = fn(s.set)
	s.changes.Queue(s.set.Clone())
	s.mu.Unlock()

	s.changes.Flush()
}
