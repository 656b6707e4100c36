package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

func rec(id int, name string, types ...string) pokemon.Pokemon {
	p := pokemon.Pokemon{ID: id, Name: name, Height: id * 2, Weight: 100 - id, BaseExperience: id * 10}
	for i, t := range types {
		p.Types = append(p.Types, pokemon.TypeSlot{Slot: i + 1, Type: pokemon.NamedResource{Name: t}})
	}
	for _, s := range pokemon.StatNames {
		p.Stats = append(p.Stats, pokemon.Stat{Stat: pokemon.NamedResource{Name: s}, BaseStat: 10 * id})
	}
	return p
}

func ids(views []pokemon.View) []int {
	out := make([]int, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

// mustState unwraps a state transition, failing the test on error:
// mustState(t)(q.WithSort(s)).
func mustState(t *testing.T) func(query.State, error) query.State {
	t.Helper()
	return func(st query.State, err error) query.State {
		t.Helper()
		if err != nil {
			t.Fatalf("state transition: %v", err)
		}
		return st
	}
}

var sample = []pokemon.Pokemon{
	rec(4, "charmander", "fire"),
	rec(1, "bulbasaur", "grass", "poison"),
	rec(6, "charizard", "fire", "flying"),
	rec(7, "squirtle", "water"),
	rec(25, "pikachu", "electric"),
	rec(152, "chikorita", "grass"),
}

func TestApply_SortByID(t *testing.T) {
	recs := []pokemon.Pokemon{rec(3, "c"), rec(1, "a"), rec(2, "b")}

	asc := Apply(recs, nil, query.Default())
	if diff := cmp.Diff([]int{1, 2, 3}, ids(asc)); diff != "" {
		t.Errorf("asc (-want +got):\n%s", diff)
	}

	desc := mustState(t)(query.Default().WithSort(query.Sort{Field: query.FieldID, Direction: query.Desc}))
	if diff := cmp.Diff([]int{3, 2, 1}, ids(Apply(recs, nil, desc))); diff != "" {
		t.Errorf("desc (-want +got):\n%s", diff)
	}
}

func TestApply_TypeFilter(t *testing.T) {
	q := mustState(t)(query.Default().WithTypes([]string{"fire", "poison"}))
	got := Apply(sample, nil, q)
	if diff := cmp.Diff([]int{1, 4, 6}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, v := range got {
		if !v.HasType("fire") && !v.HasType("poison") {
			t.Errorf("%s has neither selected type", v.Name)
		}
	}

	if n := len(Apply(sample, nil, query.Default())); n != len(sample) {
		t.Errorf("empty type set filtered to %d records", n)
	}
}

func TestApply_SearchNameOrID(t *testing.T) {
	got := Apply(sample, nil, query.Default().WithSearch("CHAR"))
	if diff := cmp.Diff([]int{4, 6}, ids(got)); diff != "" {
		t.Errorf("name search (-want +got):\n%s", diff)
	}

	got = Apply(sample, nil, query.Default().WithSearch("25"))
	if diff := cmp.Diff([]int{25}, ids(got)); diff != "" {
		t.Errorf("id search (-want +got):\n%s", diff)
	}

	if n := len(Apply(sample, nil, query.Default().WithSearch(""))); n != len(sample) {
		t.Errorf("empty search filtered to %d records", n)
	}
}

func TestApply_SearchMatchesTextAsTyped(t *testing.T) {
	for _, search := range []string{" pika", "pika ", "   ", "char mander"} {
		t.Run(search, func(t *testing.T) {
			got := Apply(sample, nil, query.Default().WithSearch(search))
			if len(got) != 0 {
				t.Errorf("search %q matched %v", search, ids(got))
			}
		})
	}

	got := Apply(sample, nil, query.Default().WithSearch("Pika"))
	if diff := cmp.Diff([]int{25}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestApply_GenerationFilter(t *testing.T) {
	q := mustState(t)(query.Default().WithGenerations([]int{2}))
	if diff := cmp.Diff([]int{152}, ids(Apply(sample, nil, q))); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// alternate forms have no generation and only pass an empty selection
	forms := []pokemon.Pokemon{rec(10001, "deoxys-attack", "psychic")}
	if got := Apply(forms, nil, q); len(got) != 0 {
		t.Errorf("form passed generation filter: %v", ids(got))
	}
	if got := Apply(forms, nil, query.Default()); len(got) != 1 {
		t.Error("form dropped with no generation filter")
	}
}

func TestApply_StatRange(t *testing.T) {
	q := mustState(t)(query.Default().WithMinStats(query.Stats{"hp": 50}))
	q = mustState(t)(q.WithMaxStats(query.Stats{"speed": 250}))
	// every stat of a record is 10*id; bounds are inclusive
	if diff := cmp.Diff([]int{6, 7, 25}, ids(Apply(sample, nil, q))); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestApply_FavoritesOnly(t *testing.T) {
	favs := favorites.Set{7: true, 25: true, 999: true}
	got := Apply(sample, favs, query.Default().WithFavoritesOnly(true))
	if diff := cmp.Diff([]int{7, 25}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, v := range got {
		if !v.IsFavorite {
			t.Errorf("%d not flagged favorite", v.ID)
		}
	}
}

func TestApply_SortByNameCollates(t *testing.T) {
	recs := []pokemon.Pokemon{rec(1, "zubat"), rec(2, "Éevee"), rec(3, "abra"), rec(4, "eevee")}
	q := mustState(t)(query.Default().WithSort(query.Sort{Field: query.FieldName, Direction: query.Asc}))

	got := Apply(recs, nil, q)
	names := make([]string, len(got))
	for i, v := range got {
		names[i] = v.FormattedName
	}
	want := []string{"Abra", "Eevee", "Éevee", "Zubat"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestApply_NumericSortsStable(t *testing.T) {
	a, b, c := rec(1, "a"), rec(2, "b"), rec(3, "c")
	a.Height, b.Height, c.Height = 5, 5, 1
	recs := []pokemon.Pokemon{a, b, c}

	asc := mustState(t)(query.Default().WithSort(query.Sort{Field: query.FieldHeight, Direction: query.Asc}))
	if diff := cmp.Diff([]int{3, 1, 2}, ids(Apply(recs, nil, asc))); diff != "" {
		t.Errorf("asc (-want +got):\n%s", diff)
	}

	desc := mustState(t)(query.Default().WithSort(query.Sort{Field: query.FieldHeight, Direction: query.Desc}))
	if diff := cmp.Diff([]int{1, 2, 3}, ids(Apply(recs, nil, desc))); diff != "" {
		t.Errorf("desc (-want +got):\n%s", diff)
	}
}

func TestApply_OtherNumericFields(t *testing.T) {
	tests := []struct {
		field query.Field
		want  []int
	}{
		{query.FieldBaseExperience, []int{1, 4, 6, 7, 25, 152}},
		{query.FieldWeight, []int{152, 25, 7, 6, 4, 1}},
		{query.FieldTotalStats, []int{1, 4, 6, 7, 25, 152}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			q := mustState(t)(query.Default().WithSort(query.Sort{Field: tt.field, Direction: query.Asc}))
			if diff := cmp.Diff(tt.want, ids(Apply(sample, nil, q))); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := []pokemon.Pokemon{rec(3, "c"), rec(1, "a")}
	_ = Apply(in, nil, query.Default())
	if in[0].ID != 3 {
		t.Error("input reordered")
	}
}
