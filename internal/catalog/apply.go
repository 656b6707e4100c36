package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

// Apply derives the filtered, sorted view of records. It is pure: the same
// inputs always give the same output and nothing is modified.
//
// Filters run in order: text, type, generation, stat range, favorites. An
// empty selection disables its filter. The sort is stable, so records that
// compare equal keep their input order in both directions.
func Apply(records []pokemon.Pokemon, favs favorites.Set, q query.State) []pokemon.View {
	search := strings.ToLower(q.Search)
	statFilter := q.HasStatFilter()

	views := make([]pokemon.View, 0, len(records))
	for _, p := range records {
		v := pokemon.NewView(p, favs.Has(p.ID))

		if search != "" && !matchesSearch(&v, search) {
			continue
		}
		if len(q.Types) > 0 && !slices.ContainsFunc(q.Types, v.HasType) {
			continue
		}
		if len(q.Generations) > 0 && !slices.Contains(q.Generations, v.Generation) {
			continue
		}
		if statFilter && !withinStats(&v, q) {
			continue
		}
		if q.FavoritesOnly && !v.IsFavorite {
			continue
		}
		views = append(views, v)
	}

	sortViews(views, q.Sort)
	return views
}

func matchesSearch(v *pokemon.View, search string) bool {
	return strings.Contains(strings.ToLower(v.Name), search) ||
		strings.Contains(strconv.Itoa(v.ID), search)
}

func withinStats(v *pokemon.View, q query.State) bool {
	for _, name := range pokemon.StatNames {
		val := v.BaseStat(name)
		if val < q.MinBound(name) || val > q.MaxBound(name) {
			return false
		}
	}
	return true
}

func sortViews(views []pokemon.View, s query.Sort) {
	var compare func(a, b *pokemon.View) int
	switch s.Field {
	case query.FieldName:
		// Collator keeps per-call buffers, so each sort gets its own.
		col := collate.New(language.English)
		compare = func(a, b *pokemon.View) int { return col.CompareString(a.FormattedName, b.FormattedName) }
	case query.FieldBaseExperience:
		compare = func(a, b *pokemon.View) int { return cmp.Compare(a.BaseExperience, b.BaseExperience) }
	case query.FieldHeight:
		compare = func(a, b *pokemon.View) int { return cmp.Compare(a.Height, b.Height) }
	case query.FieldWeight:
		compare = func(a, b *pokemon.View) int { return cmp.Compare(a.Weight, b.Weight) }
	case query.FieldTotalStats:
		compare = func(a, b *pokemon.View) int { return cmp.Compare(a.TotalStats, b.TotalStats) }
	default:
		compare = func(a, b *pokemon.View) int { return cmp.Compare(a.ID, b.ID) }
	}

	if s.Direction == query.Desc {
		slices.SortStableFunc(views, func(a, b pokemon.View) int { return compare(&b, &a) })
		return
	}
	slices.SortStableFunc(views, func(a, b pokemon.View) int { return compare(&a, &b) })
}
