package ops

import (
	"context"
	"fmt"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

var errNoAPI = errors.NewInternal(fmt.Errorf("no catalog API configured"))

// QueryInput is a batch of query changes. Nil fields are left unchanged.
// Reset runs first and Page last, so an explicit page survives the page-1
// reset that filter changes imply.
type QueryInput struct {
	Reset         bool
	Search        *string
	Types         *[]string
	ToggleType    string
	Generations   *[]int
	FavoritesOnly *bool
	MinStats      query.Stats
	MaxStats      query.Stats
	ResetStats    bool
	Sort          *string // "field" or "field:dir"
	PerPage       *int
	Page          *int
}

// IsZero reports whether the input changes nothing.
func (in QueryInput) IsZero() bool {
	return !in.Reset && in.Search == nil && in.Types == nil && in.ToggleType == "" &&
		in.Generations == nil && in.FavoritesOnly == nil && len(in.MinStats) == 0 &&
		len(in.MaxStats) == 0 && !in.ResetStats && in.Sort == nil && in.PerPage == nil && in.Page == nil
}

// QueryOutput is the resulting query state.
type QueryOutput struct {
	State query.State `json:"state"`
}

// ApplyQuery applies a batch of query changes as one transition, so
// subscribers fetch or recompute at most once.
func (s *Session) ApplyQuery(ctx context.Context, input QueryInput) (*QueryOutput, error) {
	if input.IsZero() {
		return &QueryOutput{State: s.Query.State()}, nil
	}
	err := s.Query.Update(func(st query.State) (query.State, error) {
		var err error
		if input.Reset {
			st = st.Reset()
		}
		if input.Search != nil {
			st = st.WithSearch(*input.Search)
		}
		if input.Types != nil {
			if st, err = st.WithTypes(*input.Types); err != nil {
				return st, err
			}
		}
		if input.ToggleType != "" {
			if st, err = st.ToggleType(input.ToggleType); err != nil {
				return st, err
			}
		}
		if input.Generations != nil {
			if st, err = st.WithGenerations(*input.Generations); err != nil {
				return st, err
			}
		}
		if input.FavoritesOnly != nil {
			st = st.WithFavoritesOnly(*input.FavoritesOnly)
		}
		if input.ResetStats {
			st = st.ResetStats()
		}
		if len(input.MinStats) > 0 {
			if st, err = st.WithMinStats(input.MinStats); err != nil {
				return st, err
			}
		}
		if len(input.MaxStats) > 0 {
			if st, err = st.WithMaxStats(input.MaxStats); err != nil {
				return st, err
			}
		}
		if input.Sort != nil {
			sort, err := query.ParseSort(*input.Sort)
			if err != nil {
				return st, err
			}
			st, _ = st.WithSort(sort)
		}
		if input.PerPage != nil {
			if st, err = st.WithPerPage(*input.PerPage); err != nil {
				return st, err
			}
		}
		if input.Page != nil {
			st = st.WithPage(*input.Page)
		}
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return &QueryOutput{State: s.Query.State()}, nil
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Query QueryInput

	// Refresh re-fetches the current window even if it is loaded
	Refresh bool
}

// ListOutput is one page of the catalog view.
type ListOutput struct {
	Items      []pokemon.Summary `json:"items"`
	Views      []pokemon.View    `json:"-"`
	Status     catalog.Status    `json:"status"`
	Error      string            `json:"error,omitempty"`
	HasData    bool              `json:"has_data"`
	Query      query.State       `json:"query"`
	Pagination Pagination        `json:"pagination"`
}

// List applies the query changes, makes sure the current window is loaded
// and returns the derived view. A failed fetch is reported both in Status
// and as the returned error; the output still carries the previous records.
func (s *Session) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if _, err := s.ApplyQuery(ctx, input.Query); err != nil {
		return nil, err
	}
	if err := s.EnsureLoaded(ctx, input.Refresh); err != nil {
		return s.listOutput(), err
	}
	return s.listOutput(), nil
}

// EnsureLoaded fetches the current query window when the catalog has not
// loaded it yet, or always when force is set.
func (s *Session) EnsureLoaded(ctx context.Context, force bool) error {
	if err := s.requireAPI(); err != nil {
		return err
	}
	w := s.Query.State().Window()
	snap := s.Catalog.Snapshot()
	if !force && snap.Window == w && snap.Status != catalog.StatusIdle {
		return snap.Err
	}
	if err := s.Catalog.FetchPage(ctx, w); err != nil {
		return err
	}
	st := s.Query.State()
	if clamped := query.Clamp(st.Page, st.PerPage, s.Catalog.Snapshot().Count); clamped != st.Page {
		// the query subscription fetches the clamped page
		s.Query.SetPage(clamped)
	}
	return s.Catalog.Snapshot().Err
}

// Retry re-issues the last requested page.
func (s *Session) Retry(ctx context.Context) (*ListOutput, error) {
	if err := s.Catalog.Retry(ctx); err != nil {
		return s.listOutput(), err
	}
	return s.listOutput(), nil
}

// Current returns the view without fetching.
func (s *Session) Current() *ListOutput {
	return s.listOutput()
}

func (s *Session) listOutput() *ListOutput {
	snap := s.Catalog.Snapshot()
	st := s.Query.State()
	return &ListOutput{
		Items:      pokemon.Summaries(snap.Views),
		Views:      snap.Views,
		Status:     snap.Status,
		Error:      snap.Error,
		HasData:    snap.HasData,
		Query:      st,
		Pagination: NewPagination(st, snap.Count),
	}
}
