package ops

import (
	"context"
	"database/sql"
	"sync"

	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/config"
	"github.com/V2473/pokedex/internal/db"
	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
	"github.com/V2473/pokedex/internal/uiprefs"
)

// API is the catalog API surface the operations use. *pokeapi.Client
// implements it.
type API interface {
	catalog.Fetcher
	Species(ctx context.Context, ident string) (*pokemon.Species, error)
	EvolutionChain(ctx context.Context, id int) (*pokemon.EvolutionChain, error)
	Move(ctx context.Context, ident string) (*pokemon.Move, error)
	Ability(ctx context.Context, ident string) (*pokemon.Ability, error)
	Type(ctx context.Context, ident string) (*pokemon.TypeInfo, error)
	Generation(ctx context.Context, ident string) (*pokemon.GenerationInfo, error)
}

// SessionDeps are the collaborators of a session.
type SessionDeps struct {
	// DB persists preferences and favorites; nil disables persistence
	DB *sql.DB

	API    API
	Config *config.Config
	Logger *zap.Logger
}

// Session owns the four stores and the wiring between them. Every shell
// (CLI, MCP, web, terminal UI) drives one session through the operations
// in this package.
type Session struct {
	Catalog   *catalog.Store
	Favorites *favorites.Store
	Query     *query.Store
	UI        *uiprefs.Store

	api    API
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger

	// ctx bounds fetches started by the query subscription
	ctx    context.Context
	unsubs []func()
	once   sync.Once
}

// NewSession loads persisted state, builds the stores and wires:
//   - every favorites, query-prefs and UI-prefs change to its blob
//   - window changes to a catalog fetch
//   - filter, sort and favorites changes to a catalog recompute
//
// Persistence failures are logged and never returned; a missing or
// unreadable blob falls back to defaults.
func NewSession(ctx context.Context, deps SessionDeps) (*Session, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("session")

	s := &Session{
		api:    deps.API,
		db:     deps.DB,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
	}

	var favBlob favorites.Blob
	s.load(ctx, favorites.StorageKey, &favBlob)
	s.Favorites = favorites.NewStore(favBlob.Favorites)

	initial := query.Default()
	if st, err := initial.WithPerPage(cfg.DefaultPerPage); err == nil {
		initial = st
	}
	var prefs query.Prefs
	if s.load(ctx, query.StorageKey, &prefs) {
		initial = initial.WithPrefs(prefs)
	}
	s.Query = query.NewStore(initial)

	ui := uiprefs.DefaultPrefs()
	s.load(ctx, uiprefs.StorageKey, &ui)
	s.UI = uiprefs.NewStore(ui)

	s.Catalog = catalog.New(deps.API, s.Favorites, logger)
	s.Catalog.Recompute(initial, s.Favorites.Snapshot())

	s.unsubs = append(s.unsubs,
		s.Favorites.Subscribe(s.onFavorites),
		s.Query.Subscribe(s.onQuery),
		s.UI.Subscribe(s.onUI),
	)
	return s, nil
}

// Close detaches the store wiring. The database is owned by the caller.
func (s *Session) Close() {
	s.once.Do(func() {
		for _, unsub := range s.unsubs {
			unsub()
		}
	})
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config {
	return s.cfg
}

func (s *Session) onFavorites(set favorites.Set) {
	s.Catalog.Recompute(s.Query.State(), set)
	s.save(favorites.StorageKey, favorites.Blob{Favorites: set})
}

func (s *Session) onQuery(c query.Change) {
	if c.FilterChanged {
		s.Catalog.Recompute(c.New, s.Favorites.Snapshot())
	}
	if query.PrefsOf(c.Old) != query.PrefsOf(c.New) {
		s.save(query.StorageKey, query.PrefsOf(c.New))
	}
	if !c.WindowChanged || s.api == nil {
		return
	}

	if err := s.Catalog.FetchPage(s.ctx, c.New.Window()); err != nil {
		return
	}
	// A page past the end moves to the last page, which fetches again.
	count := s.Catalog.Snapshot().Count
	if clamped := query.Clamp(c.New.Page, c.New.PerPage, count); clamped != c.New.Page {
		s.logger.Debug("page clamped", zap.Int("page", c.New.Page), zap.Int("clamped", clamped))
		s.Query.SetPage(clamped)
	}
}

func (s *Session) onUI(p uiprefs.Prefs) {
	s.save(uiprefs.StorageKey, p)
}

func (s *Session) load(ctx context.Context, key string, dst any) bool {
	if s.db == nil {
		return false
	}
	found, err := db.GetJSON(ctx, s.db, key, dst)
	if err != nil {
		s.logger.Warn("ignoring unreadable state", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *Session) save(key string, v any) {
	if s.db == nil {
		return
	}
	if err := db.PutJSON(s.ctx, s.db, key, v); err != nil {
		s.logger.Warn("failed to persist state", zap.String("key", key), zap.Error(err))
	}
}
