// Package catalog owns the fetched records, their load status and the
// derived view the shells display.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/observe"
	"github.com/V2473/pokedex/internal/pokeapi"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

// Status is the load state of the page or of one detail record.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fetcher is the subset of the API client the store needs.
type Fetcher interface {
	Page(ctx context.Context, w pokeapi.Window) (*pokeapi.Page, error)
	Pokemon(ctx context.Context, ident string) (*pokemon.Pokemon, error)
}

// FavoritesSource supplies the current favorites when the store recomputes
// on its own, after a fetch.
type FavoritesSource interface {
	Snapshot() favorites.Set
}

// DetailState is the load state of one detail record.
type DetailState struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Snapshot is a consistent read of the store. Slices are shared with the
// store and must not be modified.
type Snapshot struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	// Err is the error behind Error, for callers that need its code
	Err error `json:"-"`

	// Count is the total number of records upstream, from the last success
	Count int `json:"count"`

	// Window is the last requested window
	Window pokeapi.Window `json:"window"`

	// Records is the last successfully fetched page, in list order
	Records []pokemon.Pokemon `json:"-"`

	// Views is the filtered, sorted view of Records
	Views []pokemon.View `json:"views"`

	// HasData distinguishes "loading with prior data" from a first load
	HasData bool `json:"has_data"`

	Query query.State `json:"-"`
}

// Store is the catalog container. Fetches run on the caller's goroutine;
// only the latest issued fetch may update the records.
type Store struct {
	fetcher Fetcher
	favs    FavoritesSource
	logger  *zap.Logger

	mu         sync.RWMutex
	status     Status
	errMsg     string
	err        error
	records    []pokemon.Pokemon
	count      int
	hasData    bool
	window     pokeapi.Window
	hasWindow  bool
	seq        uint64
	details    map[int]pokemon.Pokemon
	detailStat map[int]DetailState
	query      query.State
	views      []pokemon.View

	changes observe.Ordered[Snapshot]
}

// New creates an idle store. favs may be nil, meaning no favorites.
func New(fetcher Fetcher, favs FavoritesSource, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher:    fetcher,
		favs:       favs,
		logger:     logger.Named("catalog"),
		status:     StatusIdle,
		details:    map[int]pokemon.Pokemon{},
		detailStat: map[int]DetailState{},
		query:      query.Default(),
		views:      []pokemon.View{},
	}
}

// Subscribe registers fn for every transition and returns its unsubscribe.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.changes.Subscribe(fn)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Status:  s.status,
		Error:   s.errMsg,
		Err:     s.err,
		Count:   s.count,
		Window:  s.window,
		Records: s.records,
		Views:   s.views,
		HasData: s.hasData,
		Query:   s.query,
	}
}

// FetchPage loads window w. Records are replaced only on success and only
// if no newer fetch was issued meanwhile; a failure keeps the previous
// records. The returned error is the fetch error, nil for a dropped stale
// response.
func (s *Store) FetchPage(ctx context.Context, w pokeapi.Window) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = StatusLoading
	s.errMsg = ""
	s.err = nil
	s.window = w
	s.hasWindow = true
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()
	s.changes.Flush()

	start := time.Now()
	page, err := s.fetcher.Page(ctx, w)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("stale page dropped",
			zap.Uint64("seq", seq),
			zap.Int("limit", w.Limit),
			zap.Int("offset", w.Offset))
		return nil
	}
	if err != nil {
		s.status = StatusError
		s.errMsg = errors.Message(err)
		s.err = err
		s.changes.Queue(s.snapshotLocked())
		s.mu.Unlock()
		s.logger.Warn("page fetch failed",
			zap.Int("limit", w.Limit),
			zap.Int("offset", w.Offset),
			zap.Error(err))
		s.changes.Flush()
		return err
	}

	s.records = page.Records
	s.count = page.Count
	s.hasData = true
	s.status = StatusSuccess
	s.recomputeLocked(s.query, s.currentFavorites())
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()

	s.logger.Info("page loaded",
		zap.Int("limit", w.Limit),
		zap.Int("offset", w.Offset),
		zap.Int("count", page.Count),
		zap.Int("records", len(page.Records)),
		zap.Duration("elapsed", time.Since(start)))
	s.changes.Flush()
	return nil
}

// Retry re-issues the last requested window.
func (s *Store) Retry(ctx context.Context) error {
	s.mu.RLock()
	w, ok := s.window, s.hasWindow
	s.mu.RUnlock()
	if !ok {
		return errors.NewNoFetch()
	}
	return s.FetchPage(ctx, w)
}

// Recompute stores q and rebuilds the view from the current records.
func (s *Store) Recompute(q query.State, favs favorites.Set) {
	s.mu.Lock()
	s.recomputeLocked(q, favs)
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()
	s.changes.Flush()
}

func (s *Store) recomputeLocked(q query.State, favs favorites.Set) {
	s.query = q
	s.views = Apply(s.mergedLocked(), favs, q)
}

// mergedLocked overlays cached detail records on the page records by id.
func (s *Store) mergedLocked() []pokemon.Pokemon {
	if len(s.details) == 0 {
		return s.records
	}
	out := make([]pokemon.Pokemon, len(s.records))
	for i, p := range s.records {
		if d, ok := s.details[p.ID]; ok {
			p = d
		}
		out[i] = p
	}
	return out
}

func (s *Store) currentFavorites() favorites.Set {
	if s.favs == nil {
		return nil
	}
	return s.favs.Snapshot()
}

// Detail returns record id, fetching and caching it on first use. Its load
// state is tracked separately from the page status.
func (s *Store) Detail(ctx context.Context, id int) (*pokemon.Pokemon, error) {
	if id <= 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}

	s.mu.Lock()
	if p, ok := s.details[id]; ok {
		s.mu.Unlock()
		return &p, nil
	}
	if s.fetcher == nil {
		s.mu.Unlock()
		return nil, errors.NewInternal(fmt.Errorf("no fetcher for record %d", id))
	}
	s.detailStat[id] = DetailState{Status: StatusLoading}
	s.mu.Unlock()

	p, err := s.fetcher.Pokemon(ctx, strconv.Itoa(id))

	s.mu.Lock()
	if err != nil {
		s.detailStat[id] = DetailState{Status: StatusError, Error: errors.Message(err)}
		s.mu.Unlock()
		s.logger.Warn("detail fetch failed", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	s.details[id] = *p
	s.detailStat[id] = DetailState{Status: StatusSuccess}
	s.recomputeLocked(s.query, s.currentFavorites())
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()

	s.changes.Flush()
	return p, nil
}

// Remember caches a record fetched elsewhere (for example by name).
func (s *Store) Remember(p pokemon.Pokemon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[p.ID] = p
	s.detailStat[p.ID] = DetailState{Status: StatusSuccess}
}

// DetailStatus returns the load state of record id.
func (s *Store) DetailStatus(id int) DetailState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.detailStat[id]; ok {
		return st
	}
	return DetailState{Status: StatusIdle}
}

// Lookup finds a loaded record by id or name in the page or the detail cache.
func (s *Store) Lookup(ident string) (pokemon.Pokemon, bool) {
	ident = strings.ToLower(strings.TrimSpace(ident))
	id, _ := strconv.Atoi(ident)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if id > 0 {
		if p, ok := s.details[id]; ok {
			return p, true
		}
	}
	for _, p := range s.records {
		if p.ID == id || p.Name == ident {
			return p, true
		}
	}
	for _, p := range s.details {
		if p.Name == ident {
			return p, true
		}
	}
	return pokemon.Pokemon{}, false
}

// ClearError drops the page error and every detail error. A store in the
// error state falls back to success when it still holds records, else idle.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.err = nil
	if s.status == StatusError {
		if s.hasData {
			s.status = StatusSuccess
		} else {
			s.status = StatusIdle
		}
	}
	for id, st := range s.detailStat {
		if st.Status == StatusError {
			delete(s.detailStat, id)
		}
	}
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()
	s.changes.Flush()
}

// ClearDetailError drops the error of one detail record.
func (s *Store) ClearDetailError(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.detailStat[id]; ok && st.Status == StatusError {
		delete(s.detailStat, id)
	}
}

// Reset returns the store to idle with no records. Any in-flight fetch is
// dropped when it completes.
func (s *Store) Reset() {
	s.mu.Lock()
	s.seq++
	s.status = StatusIdle
	s.errMsg = ""
	s.err = nil
	s.records = nil
	s.count = 0
	s.hasData = false
	s.window = pokeapi.Window{}
	s.hasWindow = false
	s.details = map[int]pokemon.Pokemon{}
	s.detailStat = map[int]DetailState{}
	s.query = query.Default()
	s.views = []pokemon.View{}
	s.changes.Queue(s.snapshotLocked())
	s.mu.Unlock()
	s.changes.Flush()
}
