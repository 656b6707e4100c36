// Package query holds the search, filter, sort and pagination state that
// drives the catalog view.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/pokemon"
)

// StorageKey is the persisted blob name for Prefs.
const StorageKey = "filter-storage"

// Field is a sort key.
type Field string

const (
	FieldID             Field = "id"
	FieldName           Field = "name"
	FieldBaseExperience Field = "base_experience"
	FieldHeight         Field = "height"
	FieldWeight         Field = "weight"
	FieldTotalStats     Field = "total_stats"
)

// Fields lists the sort keys in the order the sort menu shows them.
var Fields = []Field{FieldID, FieldName, FieldBaseExperience, FieldHeight, FieldWeight, FieldTotalStats}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the sort key and direction.
type Sort struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// Validate checks the field and direction.
func (s Sort) Validate() error {
	if !slices.Contains(Fields, s.Field) {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown sort field %q", s.Field))
	}
	if s.Direction != Asc && s.Direction != Desc {
		return errors.NewInvalidRequest(fmt.Sprintf("sort direction must be asc or desc, got %q", s.Direction))
	}
	return nil
}

// ParseSort reads "field" or "field:dir" (e.g. "name:desc").
func ParseSort(s string) (Sort, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	out := Sort{Field: Field(strings.ToLower(field)), Direction: Direction(strings.ToLower(dir))}
	if out.Direction == "" {
		out.Direction = Asc
	}
	return out, out.Validate()
}

// String renders "field:dir".
func (s Sort) String() string {
	return string(s.Field) + ":" + string(s.Direction)
}

// Stat bounds.
const (
	MinStatValue = 0
	MaxStatValue = 255
)

// PerPageOptions are the accepted page sizes.
var PerPageOptions = []int{10, 20, 50, 100}

// DefaultPerPage is the page size before the user picks one.
const DefaultPerPage = 20

// Stats maps base-stat names to a bound.
type Stats map[string]int

func defaultStats(v int) Stats {
	out := make(Stats, len(pokemon.StatNames))
	for _, name := range pokemon.StatNames {
		out[name] = v
	}
	return out
}

// merge returns a copy of s with partial applied. Unknown names and values
// outside [MinStatValue, MaxStatValue] are rejected.
func (s Stats) merge(partial Stats) (Stats, error) {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		if !slices.Contains(pokemon.StatNames, k) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown stat %q", k))
		}
		if v < MinStatValue || v > MaxStatValue {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("stat %s must be between %d and %d", k, MinStatValue, MaxStatValue))
		}
		out[k] = v
	}
	return out, nil
}

// State is the full query. Transitions return a new State; the receiver is
// never modified.
type State struct {
	Search        string   `json:"search"`
	Types         []string `json:"types"`
	Generations   []int    `json:"generations"`
	FavoritesOnly bool     `json:"favorites_only"`
	Sort          Sort     `json:"sort"`
	Page          int      `json:"page"`
	PerPage       int      `json:"per_page"`
	MinStats      Stats    `json:"min_stats"`
	MaxStats      Stats    `json:"max_stats"`
}

// Default returns the initial state: no filters, id ascending, page 1 of 20.
func Default() State {
	return State{
		Types:       []string{},
		Generations: []int{},
		Sort:        Sort{Field: FieldID, Direction: Asc},
		Page:        1,
		PerPage:     DefaultPerPage,
		MinStats:    defaultStats(MinStatValue),
		MaxStats:    defaultStats(MaxStatValue),
	}
}

func (s State) clone() State {
	out := s
	out.Types = slices.Clone(s.Types)
	out.Generations = slices.Clone(s.Generations)
	out.MinStats, _ = s.MinStats.merge(nil)
	out.MaxStats, _ = s.MaxStats.merge(nil)
	return out
}

// WithSearch sets the text filter and returns to page 1.
func (s State) WithSearch(q string) State {
	out := s.clone()
	out.Search = q
	out.Page = 1
	return out
}

// WithTypes replaces the selected types and returns to page 1.
func (s State) WithTypes(types []string) (State, error) {
	clean := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !pokemon.IsKnownType(t) {
			return s, errors.NewInvalidRequest(fmt.Sprintf("unknown type %q", t))
		}
		if !slices.Contains(clean, t) {
			clean = append(clean, t)
		}
	}
	out := s.clone()
	out.Types = clean
	out.Page = 1
	return out, nil
}

// ToggleType adds or removes one type and returns to page 1.
func (s State) ToggleType(t string) (State, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if !pokemon.IsKnownType(t) {
		return s, errors.NewInvalidRequest(fmt.Sprintf("unknown type %q", t))
	}
	if i := slices.Index(s.Types, t); i >= 0 {
		return s.WithTypes(slices.Delete(slices.Clone(s.Types), i, i+1))
	}
	return s.WithTypes(append(slices.Clone(s.Types), t))
}

// WithGenerations replaces the selected groups and returns to page 1.
func (s State) WithGenerations(gens []int) (State, error) {
	clean := make([]int, 0, len(gens))
	for _, g := range gens {
		if _, ok := pokemon.GroupByID(g); !ok {
			return s, errors.NewInvalidRequest(fmt.Sprintf("unknown generation %d", g))
		}
		if !slices.Contains(clean, g) {
			clean = append(clean, g)
		}
	}
	out := s.clone()
	out.Generations = clean
	out.Page = 1
	return out, nil
}

// ToggleGeneration adds or removes one group and returns to page 1.
func (s State) ToggleGeneration(g int) (State, error) {
	if i := slices.Index(s.Generations, g); i >= 0 {
		return s.WithGenerations(slices.Delete(slices.Clone(s.Generations), i, i+1))
	}
	return s.WithGenerations(append(slices.Clone(s.Generations), g))
}

// WithFavoritesOnly sets the favorites filter and returns to page 1.
func (s State) WithFavoritesOnly(on bool) State {
	out := s.clone()
	out.FavoritesOnly = on
	out.Page = 1
	return out
}

// WithMinStats merges partial lower bounds and returns to page 1.
func (s State) WithMinStats(partial Stats) (State, error) {
	merged, err := s.MinStats.merge(partial)
	if err != nil {
		return s, err
	}
	out := s.clone()
	out.MinStats = merged
	out.Page = 1
	return out, nil
}

// WithMaxStats merges partial upper bounds and returns to page 1.
func (s State) WithMaxStats(partial Stats) (State, error) {
	merged, err := s.MaxStats.merge(partial)
	if err != nil {
		return s, err
	}
	out := s.clone()
	out.MaxStats = merged
	out.Page = 1
	return out, nil
}

// ResetStats restores the default stat bounds and returns to page 1.
func (s State) ResetStats() State {
	out := s.clone()
	out.MinStats = defaultStats(MinStatValue)
	out.MaxStats = defaultStats(MaxStatValue)
	out.Page = 1
	return out
}

// WithSort changes the sort. The page is kept.
func (s State) WithSort(sort Sort) (State, error) {
	if err := sort.Validate(); err != nil {
		return s, err
	}
	out := s.clone()
	out.Sort = sort
	return out, nil
}

// WithPage moves to page n, clamping values below 1 to 1. The upper bound
// depends on the total, see Clamp.
func (s State) WithPage(n int) State {
	out := s.clone()
	out.Page = max(1, n)
	return out
}

// WithPerPage changes the page size and returns to page 1.
func (s State) WithPerPage(n int) (State, error) {
	if !slices.Contains(PerPageOptions, n) {
		return s, errors.NewInvalidRequest(fmt.Sprintf("per-page must be one of %v, got %d", PerPageOptions, n))
	}
	out := s.clone()
	out.PerPage = n
	out.Page = 1
	return out, nil
}

// Reset clears every filter and the sort, returning to page 1. The page
// size is kept.
func (s State) Reset() State {
	out := Default()
	out.PerPage = s.PerPage
	return out
}

// HasFilters reports whether any filter narrows the result.
func (s State) HasFilters() bool {
	return s.Search != "" ||
		len(s.Types) > 0 ||
		len(s.Generations) > 0 ||
		s.FavoritesOnly ||
		s.HasStatFilter()
}

// HasStatFilter reports whether any stat bound differs from its default.
func (s State) HasStatFilter() bool {
	for _, name := range pokemon.StatNames {
		if s.MinBound(name) != MinStatValue || s.MaxBound(name) != MaxStatValue {
			return true
		}
	}
	return false
}

// MinBound returns the lower bound for a stat, defaulting to MinStatValue.
func (s State) MinBound(stat string) int {
	if v, ok := s.MinStats[stat]; ok {
		return v
	}
	return MinStatValue
}

// MaxBound returns the upper bound for a stat, defaulting to MaxStatValue.
func (s State) MaxBound(stat string) int {
	if v, ok := s.MaxStats[stat]; ok {
		return v
	}
	return MaxStatValue
}

// Window derives the list window for the current page.
func (s State) Window() Window {
	perPage := s.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Window{Limit: perPage, Offset: (max(1, s.Page) - 1) * perPage}
}

// Equal reports whether two states are the same query.
func (s State) Equal(o State) bool {
	return s.sameFilter(o) && s.Page == o.Page && s.PerPage == o.PerPage
}

func (s State) sameFilter(o State) bool {
	if s.Search != o.Search || s.FavoritesOnly != o.FavoritesOnly || s.Sort != o.Sort {
		return false
	}
	if !slices.Equal(s.Types, o.Types) || !slices.Equal(s.Generations, o.Generations) {
		return false
	}
	for _, name := range pokemon.StatNames {
		if s.MinBound(name) != o.MinBound(name) || s.MaxBound(name) != o.MaxBound(name) {
			return false
		}
	}
	return true
}

// Prefs is the persisted subset of State.
type Prefs struct {
	SortBy       Sort `json:"sort_by"`
	ItemsPerPage int  `json:"items_per_page"`
}

// PrefsOf extracts the persisted subset.
func PrefsOf(s State) Prefs {
	return Prefs{SortBy: s.Sort, ItemsPerPage: s.PerPage}
}

// WithPrefs applies persisted preferences, ignoring invalid values.
func (s State) WithPrefs(p Prefs) State {
	out := s.clone()
	if p.SortBy.Validate() == nil {
		out.Sort = p.SortBy
	}
	if slices.Contains(PerPageOptions, p.ItemsPerPage) {
		out.PerPage = p.ItemsPerPage
	}
	return out
}
