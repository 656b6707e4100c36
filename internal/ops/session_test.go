package ops

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/goleak"

	"github.com/V2473/pokedex/internal/config"
	"github.com/V2473/pokedex/internal/db"
	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/pokeapi"
	"github.com/V2473/pokedex/internal/pokeapi/pokeapitest"
	"github.com/V2473/pokedex/internal/query"
	"github.com/V2473/pokedex/internal/uiprefs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// database/sql keeps one opener per pool until Close
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func sessionWith(t *testing.T, database *sql.DB, srv *pokeapitest.Server) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	deps := SessionDeps{DB: database, Config: cfg}
	if srv != nil {
		cfg.APIBaseURL = srv.URL
		deps.API = pokeapi.New(cfg, nil)
	}
	s, err := NewSession(context.Background(), deps)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// newTestSession returns a session backed by a fresh database and a fake
// API serving total records.
func newTestSession(t *testing.T, total int) (*Session, *pokeapitest.Server) {
	t.Helper()
	srv := pokeapitest.New(t, total)
	return sessionWith(t, openTestDB(t), srv), srv
}

func TestNewSession_Defaults(t *testing.T) {
	s := sessionWith(t, nil, nil)

	st := s.Query.State()
	if !st.Equal(query.Default()) {
		t.Errorf("initial query = %+v, want defaults", st)
	}
	if got := s.UI.Prefs(); got != uiprefs.DefaultPrefs() {
		t.Errorf("ui prefs = %+v, want defaults", got)
	}
	if s.Favorites.Len() != 0 {
		t.Errorf("favorites = %d, want 0", s.Favorites.Len())
	}
	if got := s.Catalog.Snapshot().Status; got != "idle" {
		t.Errorf("catalog status = %q, want idle", got)
	}
}

func TestNewSession_ConfiguredPerPage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultPerPage = 50
	s, err := NewSession(context.Background(), SessionDeps{Config: cfg})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	if s.Query.State().PerPage != 50 {
		t.Errorf("PerPage = %d, want 50", s.Query.State().PerPage)
	}
}

func TestNewSession_ReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	srv := pokeapitest.New(t, 60)
	database := openTestDB(t)

	first := sessionWith(t, database, srv)
	if _, err := first.ToggleFavorite(ctx, FavoriteInput{ID: 25}); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if _, err := first.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if _, err := first.List(ctx, ListInput{Query: QueryInput{
		Sort:    stringPtr("name:desc"),
		PerPage: intPtr(50),
		Search:  stringPtr("char"),
	}}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	first.Close()

	second := sessionWith(t, database, srv)
	if !second.Favorites.IsFavorite(25) {
		t.Error("favorite 25 not restored")
	}
	if got := second.UI.Prefs().Theme; got != uiprefs.ThemeDark {
		t.Errorf("Theme = %q, want dark", got)
	}
	st := second.Query.State()
	if st.Sort != (query.Sort{Field: query.FieldName, Direction: query.Desc}) {
		t.Errorf("Sort = %v, want name:desc", st.Sort)
	}
	if st.PerPage != 50 {
		t.Errorf("PerPage = %d, want 50", st.PerPage)
	}
	if st.Search != "" {
		t.Errorf("Search = %q, want it not persisted", st.Search)
	}
}

func TestNewSession_UnreadableBlobFallsBack(t *testing.T) {
	database := openTestDB(t)
	if _, err := database.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, 0), (?, ?, 0)`,
		uiprefs.StorageKey, "{not json", favorites.StorageKey, `{"favorites": "nope"}`,
	); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	s := sessionWith(t, database, nil)
	if got := s.UI.Prefs(); got != uiprefs.DefaultPrefs() {
		t.Errorf("ui prefs = %+v, want defaults", got)
	}
	if s.Favorites.Len() != 0 {
		t.Errorf("favorites = %d, want 0", s.Favorites.Len())
	}
}

func TestSession_CloseStopsPersisting(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	s := sessionWith(t, database, nil)
	s.Close()
	s.Close()

	s.Favorites.Add(7)

	var blob favorites.Blob
	found, err := db.GetJSON(ctx, database, favorites.StorageKey, &blob)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if found {
		t.Errorf("favorites persisted after Close: %v", blob.Favorites.IDs())
	}
}

func stringPtr(s string) *string { return &s }
func intPtr(n int) *int          { return &n }
func boolPtr(b bool) *bool       { return &b }
