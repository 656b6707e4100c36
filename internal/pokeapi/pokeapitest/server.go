// Package pokeapitest serves a deterministic fake catalog API for tests.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/V2473/pokedex/internal/pokemon"
)

// Server is an httptest server that answers the catalog endpoints for ids
// 1..Total. Records are generated by Record, so tests can predict them.
type Server struct {
	*httptest.Server

	Total int

	mu         sync.Mutex
	failStatus int
	failPath   string
	requests   []string
}

// New starts a server with total records and closes it when the test ends.
func New(t testing.TB, total int) *Server {
	t.Helper()
	s := &Server{Total: total}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /pokemon", s.handleList)
	mux.HandleFunc("GET /pokemon/{ident}", s.handlePokemon)
	mux.HandleFunc("GET /pokemon-species/{ident}", s.handleSpecies)
	mux.HandleFunc("GET /evolution-chain/{id}", s.handleChain)
	mux.HandleFunc("GET /move/{ident}", s.handleMove)
	mux.HandleFunc("GET /ability/{ident}", s.handleAbility)
	mux.HandleFunc("GET /type", s.handleTypeList)
	mux.HandleFunc("GET /type/{ident}", s.handleType)
	mux.HandleFunc("GET /generation", s.handleGenerationList)
	mux.HandleFunc("GET /generation/{ident}", s.handleGeneration)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// FailWith makes every request whose path starts with prefix answer status.
// An empty prefix matches everything; status 0 clears the failure.
func (s *Server) FailWith(status int, prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failPath = prefix
}

// Requests returns the request URIs seen so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ListRequests returns only the list-endpoint request URIs.
func (s *Server) ListRequests() []string {
	var out []string
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, "/pokemon?") {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		status, prefix := s.failStatus, s.failPath
		s.mu.Unlock()

		if status != 0 && strings.HasPrefix(r.URL.Path, prefix) {
			http.Error(w, http.StatusText(status), status)
			return
		}
		// Resource URLs in list stubs end in a slash, as upstream does.
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = strings.TrimSuffix(r.URL.Path, "/")
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

var names = []string{
	"bulbasaur", "ivysaur", "venusaur", "charmander", "charmeleon", "charizard",
	"squirtle", "wartortle", "blastoise", "caterpie", "metapod", "butterfree",
}

var types = map[int][]string{
	1: {"grass", "poison"}, 2: {"grass", "poison"}, 3: {"grass", "poison"},
	4: {"fire"}, 5: {"fire"}, 6: {"fire", "flying"},
	7: {"water"}, 8: {"water"}, 9: {"water"},
	10: {"bug"}, 11: {"bug"}, 12: {"bug", "flying"},
}

// Name returns the generated slug for id.
func Name(id int) string {
	if id >= 1 && id <= len(names) {
		return names[id-1]
	}
	return fmt.Sprintf("pokemon-%d", id)
}

// StatValue is the value every base stat of id has.
func StatValue(id int) int {
	return 10 + id%90
}

// Record returns the generated record for id. Ids 1-12 carry their real
// names and types; later ids cycle through the type list.
func Record(baseURL string, id int) pokemon.Pokemon {
	tt, ok := types[id]
	if !ok {
		tt = []string{pokemon.TypeNames[id%len(pokemon.TypeNames)]}
		if id%2 == 0 {
			tt = append(tt, pokemon.TypeNames[(id+5)%len(pokemon.TypeNames)])
		}
	}

	p := pokemon.Pokemon{
		ID:             id,
		Name:           Name(id),
		Height:         id,
		Weight:         id * 10,
		BaseExperience: 50 + id,
		Order:          id,
		Species:        pokemon.NamedResource{Name: Name(id), URL: fmt.Sprintf("%s/pokemon-species/%d/", baseURL, id)},
		Abilities: []pokemon.AbilitySlot{
			{Ability: pokemon.NamedResource{Name: "overgrow"}, Slot: 1},
			{Ability: pokemon.NamedResource{Name: "chlorophyll"}, IsHidden: true, Slot: 3},
		},
		Moves: []pokemon.MoveRef{{
			Move: pokemon.NamedResource{Name: "tackle"},
			VersionGroupDetails: []pokemon.MoveVersionDetail{
				{LevelLearnedAt: 1, MoveLearnMethod: pokemon.NamedResource{Name: "level-up"}},
			},
		}},
	}
	for i, t := range tt {
		p.Types = append(p.Types, pokemon.TypeSlot{Slot: i + 1, Type: pokemon.NamedResource{Name: t}})
	}
	for _, name := range pokemon.StatNames {
		p.Stats = append(p.Stats, pokemon.Stat{Stat: pokemon.NamedResource{Name: name}, BaseStat: StatValue(id)})
	}
	sprite := fmt.Sprintf("https://sprites.example/%d.png", id)
	p.Sprites.FrontDefault = &sprite
	return p
}

func (s *Server) lookup(ident string) (int, bool) {
	if id, err := strconv.Atoi(strings.TrimSuffix(ident, "/")); err == nil {
		return id, id >= 1 && id <= s.Total
	}
	for id := 1; id <= s.Total && id <= len(names); id++ {
		if names[id-1] == ident {
			return id, true
		}
	}
	if strings.HasPrefix(ident, "pokemon-") {
		return s.lookup(strings.TrimPrefix(ident, "pokemon-"))
	}
	return 0, false
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	resp := pokemon.ListResponse{Count: s.Total, Results: []pokemon.NamedResource{}}
	for id := offset + 1; id <= offset+limit && id <= s.Total; id++ {
		resp.Results = append(resp.Results, pokemon.NamedResource{
			Name: Name(id),
			URL:  fmt.Sprintf("%s/pokemon/%d/", s.URL, id),
		})
	}
	if offset+limit < s.Total {
		next := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", s.URL, offset+limit, limit)
		resp.Next = &next
	}
	if offset > 0 {
		prev := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", s.URL, max(0, offset-limit), limit)
		resp.Previous = &prev
	}
	writeJSON(w, resp)
}

func (s *Server) handlePokemon(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(r.PathValue("ident"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, Record(s.URL, id))
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(r.PathValue("ident"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sp := pokemon.Species{
		ID:          id,
		Name:        Name(id),
		CaptureRate: 45,
		GrowthRate:  pokemon.NamedResource{Name: "medium-slow"},
		EggGroups:   []pokemon.NamedResource{{Name: "monster"}},
		Genera:      []pokemon.Genus{{Genus: "Test Pokémon", Language: pokemon.NamedResource{Name: "en"}}},
		FlavorTextEntries: []pokemon.LocalizedText{
			{FlavorText: "Generated\nfor tests.", Language: pokemon.NamedResource{Name: "en"}},
		},
	}
	sp.EvolutionChain.URL = fmt.Sprintf("%s/evolution-chain/%d/", s.URL, (id+2)/3)
	writeJSON(w, sp)
}

// handleChain links ids 3k-2 -> 3k-1 -> 3k.
func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || k < 1 || 3*k-2 > s.Total {
		http.NotFound(w, r)
		return
	}
	link := func(id int) pokemon.ChainLink {
		return pokemon.ChainLink{Species: pokemon.NamedResource{Name: Name(id)}}
	}
	root := link(3*k - 2)
	if 3*k-1 <= s.Total {
		mid := link(3*k - 1)
		if 3*k <= s.Total {
			mid.EvolvesTo = []pokemon.ChainLink{link(3 * k)}
		}
		root.EvolvesTo = []pokemon.ChainLink{mid}
	}
	writeJSON(w, pokemon.EvolutionChain{ID: k, Chain: root})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("ident")
	if name == "missingno" {
		http.NotFound(w, r)
		return
	}
	power, pp, acc := 40, 35, 100
	writeJSON(w, pokemon.Move{
		ID: 33, Name: name, Power: &power, PP: &pp, Accuracy: &acc,
		Type:        pokemon.NamedResource{Name: "normal"},
		DamageClass: pokemon.NamedResource{Name: "physical"},
		EffectEntries: []pokemon.EffectEntry{
			{Effect: "Inflicts regular damage.", ShortEffect: "Inflicts regular damage.", Language: pokemon.NamedResource{Name: "en"}},
		},
	})
}

func (s *Server) handleAbility(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("ident")
	if name == "missingno" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, pokemon.Ability{
		ID: 65, Name: name, IsMainSeries: true,
		EffectEntries: []pokemon.EffectEntry{
			{ShortEffect: "Powers up moves when HP is low.", Language: pokemon.NamedResource{Name: "en"}},
		},
	})
}

func (s *Server) handleTypeList(w http.ResponseWriter, r *http.Request) {
	resp := pokemon.ListResponse{Count: len(pokemon.TypeNames)}
	for i, t := range pokemon.TypeNames {
		resp.Results = append(resp.Results, pokemon.NamedResource{Name: t, URL: fmt.Sprintf("%s/type/%d/", s.URL, i+1)})
	}
	writeJSON(w, resp)
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("ident")
	if !pokemon.IsKnownType(name) {
		http.NotFound(w, r)
		return
	}
	info := pokemon.TypeInfo{Name: name}
	info.DamageRelations.DoubleDamageTo = []pokemon.NamedResource{{Name: "grass"}}
	info.DamageRelations.HalfDamageFrom = []pokemon.NamedResource{{Name: "bug"}}
	for id := 1; id <= s.Total; id++ {
		rec := Record(s.URL, id)
		for _, slot := range rec.Types {
			if slot.Type.Name == name {
				info.Pokemon = append(info.Pokemon, struct {
					Slot    int                   `json:"slot"`
					Pokemon pokemon.NamedResource `json:"pokemon"`
				}{Slot: slot.Slot, Pokemon: pokemon.NamedResource{Name: rec.Name, URL: fmt.Sprintf("%s/pokemon/%d/", s.URL, id)}})
			}
		}
	}
	writeJSON(w, info)
}

func (s *Server) handleGenerationList(w http.ResponseWriter, r *http.Request) {
	resp := pokemon.ListResponse{Count: len(pokemon.Groups)}
	for _, g := range pokemon.Groups {
		resp.Results = append(resp.Results, pokemon.NamedResource{
			Name: fmt.Sprintf("generation-%d", g.ID),
			URL:  fmt.Sprintf("%s/generation/%d/", s.URL, g.ID),
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	id, ok := pokemon.ParseGeneration(r.PathValue("ident"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	g, _ := pokemon.GroupByID(id)
	info := pokemon.GenerationInfo{ID: id, Name: fmt.Sprintf("generation-%d", id), MainRegion: pokemon.NamedResource{Name: strings.ToLower(g.Name)}}
	for n := g.First; n <= g.Last && n <= s.Total; n++ {
		info.PokemonSpecies = append(info.PokemonSpecies, pokemon.NamedResource{Name: Name(n)})
	}
	writeJSON(w, info)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
