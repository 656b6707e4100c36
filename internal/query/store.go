package query

import (
	"sync"

	"github.com/V2473/pokedex/internal/observe"
)

// Change describes one state transition.
type Change struct {
	Old State
	New State

	// WindowChanged is set when the page or page size moved, so the
	// catalog must be re-fetched.
	WindowChanged bool

	// FilterChanged is set when a filter or the sort moved, so the view
	// must be recomputed.
	FilterChanged bool
}

// Store is the query container. Subscribers hear about transitions that
// changed something, in commit order; no-op setters stay silent.
type Store struct {
	mu      sync.RWMutex
	state   State
	changes observe.Ordered[Change]
}

// NewStore returns a store holding initial.
func NewStore(initial State) *Store {
	return &Store{state: initial.clone()}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Prefs returns the persisted subset of the current state.
func (s *Store) Prefs() Prefs {
	return PrefsOf(s.State())
}

// Subscribe registers fn for every transition and returns its unsubscribe.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.changes.Subscribe(fn)
}

// Update applies fn atomically. A transition that returns an error leaves
// the state untouched. Callers batching several setters (a submitted form)
// use this to publish a single change.
func (s *Store) Update(fn func(State) (State, error)) error {
	s.mu.Lock()
	old := s.state
	next, err := fn(old.clone())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next

	change := Change{
		Old:           old,
		New:           next.clone(),
		WindowChanged: old.Page != next.Page || old.PerPage != next.PerPage,
		FilterChanged: !old.sameFilter(next),
	}
	if change.WindowChanged || change.FilterChanged {
		s.changes.Queue(change)
	}
	s.mu.Unlock()

	s.changes.Flush()
	return nil
}

func (s *Store) set(fn func(State) State) {
	_ = s.Update(func(st State) (State, error) { return fn(st), nil })
}

// SetSearch sets the text filter.
func (s *Store) SetSearch(q string) {
	s.set(func(st State) State { return st.WithSearch(q) })
}

// SetTypes replaces the selected types.
func (s *Store) SetTypes(types []string) error {
	return s.Update(func(st State) (State, error) { return st.WithTypes(types) })
}

// ToggleType flips one type.
func (s *Store) ToggleType(t string) error {
	return s.Update(func(st State) (State, error) { return st.ToggleType(t) })
}

// SetGenerations replaces the selected groups.
func (s *Store) SetGenerations(gens []int) error {
	return s.Update(func(st State) (State, error) { return st.WithGenerations(gens) })
}

// ToggleGeneration flips one group.
func (s *Store) ToggleGeneration(g int) error {
	return s.Update(func(st State) (State, error) { return st.ToggleGeneration(g) })
}

// SetFavoritesOnly sets the favorites filter.
func (s *Store) SetFavoritesOnly(on bool) {
	s.set(func(st State) State { return st.WithFavoritesOnly(on) })
}

// SetMinStats merges lower stat bounds.
func (s *Store) SetMinStats(partial Stats) error {
	return s.Update(func(st State) (State, error) { return st.WithMinStats(partial) })
}

// SetMaxStats merges upper stat bounds.
func (s *Store) SetMaxStats(partial Stats) error {
	return s.Update(func(st State) (State, error) { return st.WithMaxStats(partial) })
}

// ResetStats restores default stat bounds.
func (s *Store) ResetStats() {
	s.set(State.ResetStats)
}

// SetSort changes the sort.
func (s *Store) SetSort(sort Sort) error {
	return s.Update(func(st State) (State, error) { return st.WithSort(sort) })
}

// SetPage moves to page n.
func (s *Store) SetPage(n int) {
	s.set(func(st State) State { return st.WithPage(n) })
}

// SetPerPage changes the page size.
func (s *Store) SetPerPage(n int) error {
	return s.Update(func(st State) (State, error) { return st.WithPerPage(n) })
}

// Reset clears every filter.
func (s *Store) Reset() {
	s.set(State.Reset)
}
