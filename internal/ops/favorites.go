package ops

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/pokeapi"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
	"github.com/V2473/pokedex/internal/uiprefs"
)

// FavoriteInput addresses one record.
type FavoriteInput struct {
	ID int
}

// FavoriteOutput is the favorite state of one record after a change.
type FavoriteOutput struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Favorite bool   `json:"favorite"`
}

// ToggleFavorite flips the favorite state of a record. Ids are not checked
// against the catalog.
func (s *Session) ToggleFavorite(ctx context.Context, input FavoriteInput) (*FavoriteOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}
	now := s.Favorites.Toggle(input.ID)
	return s.favoriteOutput(input.ID, now), nil
}

// SetFavorite adds or removes a record.
func (s *Session) SetFavorite(ctx context.Context, input FavoriteInput, favorite bool) (*FavoriteOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}
	if favorite {
		s.Favorites.Add(input.ID)
	} else {
		s.Favorites.Remove(input.ID)
	}
	return s.favoriteOutput(input.ID, favorite), nil
}

func (s *Session) favoriteOutput(id int, favorite bool) *FavoriteOutput {
	out := &FavoriteOutput{ID: id, Favorite: favorite}
	label := pokemon.FormatID(id)
	if p, ok := s.Catalog.Lookup(strconv.Itoa(id)); ok {
		out.Name = p.Name
		label = pokemon.FormatName(p.Name)
	}
	if favorite {
		s.UI.Notify(uiprefs.KindSuccess, label+" added to favorites", 0)
	} else {
		s.UI.Notify(uiprefs.KindInfo, label+" removed from favorites", 0)
	}
	return out
}

// FavoritesInput contains parameters for the ListFavorites operation.
type FavoritesInput struct {
	// Sort orders the result, "field[:dir]"; empty uses the current sort
	Sort string
}

// FavoriteFailure is a favorite whose record could not be loaded.
type FavoriteFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// FavoritesOutput lists every favorite with its record.
type FavoritesOutput struct {
	Items  []pokemon.Summary `json:"items"`
	Views  []pokemon.View    `json:"-"`
	Failed []FavoriteFailure `json:"failed"`
	Total  int               `json:"total"`
}

// ListFavorites loads every favorite record, fetching the ones that are not
// in the current page. Records that fail to load are reported in Failed
// rather than failing the whole listing.
func (s *Session) ListFavorites(ctx context.Context, input FavoritesInput) (*FavoritesOutput, error) {
	sort := s.Query.State().Sort
	if input.Sort != "" {
		parsed, err := query.ParseSort(input.Sort)
		if err != nil {
			return nil, err
		}
		sort = parsed
	}

	ids := s.Favorites.IDs()
	if len(ids) > MaxFavoritesDetail {
		ids = ids[:MaxFavoritesDetail]
	}

	records := make([]pokemon.Pokemon, len(ids))
	loaded := make([]bool, len(ids))
	var mu sync.Mutex
	failed := []FavoriteFailure{}

	limit := s.cfg.DetailConcurrency
	if limit <= 0 {
		limit = pokeapi.DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.Catalog.Detail(gctx, id)
			if err != nil {
				mu.Lock()
				failed = append(failed, FavoriteFailure{ID: id, Error: errors.Message(err)})
				mu.Unlock()
				return nil
			}
			records[i] = *p
			loaded[i] = true
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]pokemon.Pokemon, 0, len(records))
	for i, p := range records {
		if loaded[i] {
			kept = append(kept, p)
		}
	}
	if len(failed) > 0 {
		s.logger.Warn("some favorites failed to load", zap.Int("failed", len(failed)))
	}

	st := query.Default()
	st, _ = st.WithSort(sort)
	views := catalog.Apply(kept, s.Favorites.Snapshot(), st)

	return &FavoritesOutput{
		Items:  pokemon.Summaries(views),
		Views:  views,
		Failed: failed,
		Total:  s.Favorites.Len(),
	}, nil
}

// ClearFavoritesOutput reports how many favorites were removed.
type ClearFavoritesOutput struct {
	Removed int `json:"removed"`
}

// ClearFavorites removes every favorite.
func (s *Session) ClearFavorites(ctx context.Context) (*ClearFavoritesOutput, error) {
	n := s.Favorites.Len()
	s.Favorites.Clear()
	return &ClearFavoritesOutput{Removed: n}, nil
}
