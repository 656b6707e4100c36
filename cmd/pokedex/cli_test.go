package main

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/V2473/pokedex/internal/config"
	"github.com/V2473/pokedex/internal/db"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokeapi"
	"github.com/V2473/pokedex/internal/pokeapi/pokeapitest"
)

func setupTestSession(t *testing.T) *ops.Session {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	api := pokeapitest.New(t, 151)
	cfg := config.DefaultConfig()
	cfg.APIBaseURL = api.URL

	sess, err := ops.NewSession(context.Background(), ops.SessionDeps{
		DB:     database,
		API:    pokeapi.New(cfg, nil),
		Config: cfg,
	})
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

// runCLI runs one command line against sess and returns what it printed.
func runCLI(t *testing.T, sess *ops.Session, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	app := newCLIApp(sess, nil)
	err := app.Run(append([]string{"pokedex"}, args...))
	return buf.String(), err
}

type listResult struct {
	Items []struct {
		ID    int      `json:"id"`
		Name  string   `json:"name"`
		Types []string `json:"types"`
	} `json:"items"`
	Status     string         `json:"status"`
	Pagination ops.Pagination `json:"pagination"`
}

func (r listResult) ids() []int {
	out := make([]int, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.ID
	}
	return out
}

func decodeList(t *testing.T, out string) listResult {
	t.Helper()
	var r listResult
	require.NoError(t, json.Unmarshal([]byte(out), &r), "output: %s", out)
	return r
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"25", 25, false},
		{"#4", 4, false},
		{" 7 ", 7, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"pikachu", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseID(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"single", []string{"fire"}, []string{"fire"}},
		{"repeated", []string{"fire", "water"}, []string{"fire", "water"}},
		{"comma separated", []string{"fire, water"}, []string{"fire", "water"}},
		{"blank clears", []string{""}, []string{}},
		{"drops blanks", []string{"fire,,", " "}, []string{"fire"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nonEmpty(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("nonEmpty(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseGenerations(t *testing.T) {
	got, err := parseGenerations([]string{"1", "iii", "Johto"})
	if err != nil {
		t.Fatalf("parseGenerations error: %v", err)
	}
	if want := []int{1, 3, 2}; !slices.Equal(got, want) {
		t.Errorf("parseGenerations = %v, want %v", got, want)
	}

	if _, err := parseGenerations([]string{"atlantis"}); err == nil {
		t.Error("expected error for unknown generation")
	}
}

func TestCLIList(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "list", "--per-page", "10", "--page", "2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	r := decodeList(t, out)
	if len(r.Items) != 10 || r.Items[0].ID != 11 {
		t.Errorf("ids = %v, want 11..20", r.ids())
	}
	if r.Status != "success" {
		t.Errorf("status = %q, want success", r.Status)
	}
	if r.Pagination.Page != 2 || r.Pagination.Total != 151 || r.Pagination.TotalPages != 16 {
		t.Errorf("pagination = %+v", r.Pagination)
	}
}

func TestCLIList_QueryIsSticky(t *testing.T) {
	sess := setupTestSession(t)

	if _, err := runCLI(t, sess, "list", "--sort", "id:desc"); err != nil {
		t.Fatalf("list --sort failed: %v", err)
	}

	out, err := runCLI(t, sess, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	ids := decodeList(t, out).ids()
	if !slices.IsSortedFunc(ids, func(a, b int) int { return b - a }) {
		t.Errorf("ids = %v, want descending", ids)
	}

	out, err = runCLI(t, sess, "list", "--reset")
	if err != nil {
		t.Fatalf("list --reset failed: %v", err)
	}
	if ids := decodeList(t, out).ids(); ids[0] != 1 {
		t.Errorf("after reset ids = %v, want ascending from 1", ids)
	}
}

func TestCLIList_Filters(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "list", "--search", "char")
	if err != nil {
		t.Fatalf("list --search failed: %v", err)
	}
	if got := decodeList(t, out).ids(); !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("search ids = %v, want [4 5 6]", got)
	}

	out, err = runCLI(t, sess, "list", "--search", "", "--type", "fire")
	if err != nil {
		t.Fatalf("list --type failed: %v", err)
	}
	r := decodeList(t, out)
	if len(r.Items) == 0 || r.Items[0].ID != 4 {
		t.Fatalf("fire ids = %v, want starting at 4", r.ids())
	}
	for _, it := range r.Items {
		if !slices.Contains(it.Types, "fire") {
			t.Errorf("%s types = %v, want fire", it.Name, it.Types)
		}
	}

	// An empty value clears the type filter
	out, err = runCLI(t, sess, "list", "--type", "")
	if err != nil {
		t.Fatalf("list --type '' failed: %v", err)
	}
	if got := len(decodeList(t, out).Items); got != 20 {
		t.Errorf("items after clearing = %d, want 20", got)
	}
}

func TestCLIList_Favorites(t *testing.T) {
	sess := setupTestSession(t)

	if _, err := runCLI(t, sess, "fav", "add", "7"); err != nil {
		t.Fatalf("fav add failed: %v", err)
	}
	out, err := runCLI(t, sess, "list", "--favorites")
	if err != nil {
		t.Fatalf("list --favorites failed: %v", err)
	}
	if got := decodeList(t, out).ids(); !slices.Equal(got, []int{7}) {
		t.Errorf("favorite ids = %v, want [7]", got)
	}
}

func TestCLIList_Errors(t *testing.T) {
	sess := setupTestSession(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown generation", []string{"list", "--gen", "atlantis"}, "[INVALID_REQUEST]"},
		{"bad sort", []string{"list", "--sort", "color"}, "[INVALID_REQUEST]"},
		{"bad page size", []string{"list", "--per-page", "7"}, "[INVALID_REQUEST]"},
		{"bad format", []string{"list", "--format", "xml"}, "[INVALID_REQUEST]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, sess, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %s", err.Error(), tt.want)
			}
		})
	}
}

func TestCLIList_YAML(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "list", "--per-page", "10", "-o", "yaml")
	if err != nil {
		t.Fatalf("list -o yaml failed: %v", err)
	}

	var r struct {
		Items []struct {
			ID   int    `yaml:"id"`
			Name string `yaml:"name"`
		} `yaml:"items"`
		Pagination struct {
			PerPage int `yaml:"per_page"`
		} `yaml:"pagination"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &r), "output: %s", out)
	require.Len(t, r.Items, 10)
	require.Equal(t, "bulbasaur", r.Items[0].Name)
	require.Equal(t, 10, r.Pagination.PerPage)
}

func TestCLIShow(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "show", "charmander")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var shown struct {
		ID        int        `json:"id"`
		Genus     string     `json:"genus"`
		Evolution [][]string `json:"evolution"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	if shown.ID != 4 {
		t.Errorf("id = %d, want 4", shown.ID)
	}
	if shown.Genus == "" {
		t.Error("genus is empty")
	}
	if len(shown.Evolution) == 0 {
		t.Error("evolution is empty")
	}

	out, err = runCLI(t, sess, "show", "--markdown", "4")
	if err != nil {
		t.Fatalf("show --markdown failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Charmander #004") {
		t.Errorf("markdown = %q, want heading first", out)
	}
}

func TestCLIShow_Errors(t *testing.T) {
	sess := setupTestSession(t)

	_, err := runCLI(t, sess, "show")
	if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("show without ident: err = %v, want INVALID_REQUEST", err)
	}

	_, err = runCLI(t, sess, "show", "9999")
	if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("show 9999: err = %v, want NOT_FOUND", err)
	}
}

func TestCLIFav(t *testing.T) {
	sess := setupTestSession(t)

	var fav struct {
		ID       int  `json:"id"`
		Favorite bool `json:"favorite"`
	}

	out, err := runCLI(t, sess, "fav", "add", "25")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &fav))
	if fav.ID != 25 || !fav.Favorite {
		t.Errorf("after add = %+v", fav)
	}

	out, err = runCLI(t, sess, "fav", "toggle", "#1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &fav))
	if fav.ID != 1 || !fav.Favorite {
		t.Errorf("after toggle = %+v", fav)
	}

	out, err = runCLI(t, sess, "fav", "list", "--sort", "id:desc")
	require.NoError(t, err)
	var listed struct {
		Items []struct {
			ID int `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	if listed.Total != 2 || len(listed.Items) != 2 || listed.Items[0].ID != 25 {
		t.Errorf("fav list = %+v", listed)
	}

	out, err = runCLI(t, sess, "fav", "remove", "25")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &fav))
	if fav.Favorite {
		t.Errorf("after remove = %+v", fav)
	}

	if _, err := runCLI(t, sess, "fav", "add", "pikachu"); err == nil {
		t.Error("expected error for non-numeric id")
	}

	_, err = runCLI(t, sess, "fav", "clear")
	if err == nil || !strings.Contains(err.Error(), "--confirm") {
		t.Errorf("clear without confirm: err = %v", err)
	}

	out, err = runCLI(t, sess, "fav", "clear", "--confirm")
	require.NoError(t, err)
	var cleared struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cleared))
	if cleared.Removed != 1 {
		t.Errorf("removed = %d, want 1", cleared.Removed)
	}
	if sess.Favorites.Len() != 0 {
		t.Errorf("favorites left = %d", sess.Favorites.Len())
	}
}

func TestCLIPrefs(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "prefs", "--theme", "dark", "--view", "list")
	require.NoError(t, err)
	var prefs ops.PrefsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	if prefs.Theme != "dark" || prefs.ViewType != "list" {
		t.Errorf("prefs = %+v", prefs)
	}

	_, err = runCLI(t, sess, "prefs", "--theme", "neon")
	if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("invalid theme: err = %v", err)
	}

	out, err = runCLI(t, sess, "prefs")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	if prefs.Theme != "dark" {
		t.Errorf("theme after invalid change = %q, want dark", prefs.Theme)
	}
}

func TestCLIReference(t *testing.T) {
	sess := setupTestSession(t)

	out, err := runCLI(t, sess, "types", "fire")
	require.NoError(t, err)
	var types ops.TypesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	if types.Detail == nil || types.Detail.Name != "fire" {
		t.Errorf("types fire = %+v", types)
	}

	out, err = runCLI(t, sess, "types")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	if len(types.Types) != 18 {
		t.Errorf("types = %d, want 18", len(types.Types))
	}

	out, err = runCLI(t, sess, "generations", "1")
	require.NoError(t, err)
	var gen struct {
		Detail struct {
			Region string `json:"region"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &gen))
	if gen.Detail.Region != "kanto" {
		t.Errorf("region = %q, want kanto", gen.Detail.Region)
	}

	out, err = runCLI(t, sess, "move", "tackle")
	require.NoError(t, err)
	var move ops.MoveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &move))
	if move.Power == nil || *move.Power != 40 {
		t.Errorf("tackle power = %v, want 40", move.Power)
	}

	out, err = runCLI(t, sess, "ability", "blaze")
	require.NoError(t, err)
	var ability ops.AbilityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &ability))
	if ability.Label != "Blaze" {
		t.Errorf("label = %q, want Blaze", ability.Label)
	}

	_, err = runCLI(t, sess, "move", "missingno")
	if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("move missingno: err = %v, want NOT_FOUND", err)
	}
}

func TestCLIHelpWithoutSession(t *testing.T) {
	_, err := runCLI(t, nil, "--help")
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
}
