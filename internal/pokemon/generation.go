package pokemon

import (
	"fmt"
	"strconv"
	"strings"
)

// Group is a release-era partition of the national dex.
type Group struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	First int    `json:"first"`
	Last  int    `json:"last"`
}

// Range renders the id range, e.g. "1-151".
func (g Group) Range() string {
	return fmt.Sprintf("%d-%d", g.First, g.Last)
}

// Groups are the nine generations in release order.
var Groups = []Group{
	{ID: 1, Name: "Kanto", First: 1, Last: 151},
	{ID: 2, Name: "Johto", First: 152, Last: 251},
	{ID: 3, Name: "Hoenn", First: 252, Last: 386},
	{ID: 4, Name: "Sinnoh", First: 387, Last: 493},
	{ID: 5, Name: "Unova", First: 494, Last: 649},
	{ID: 6, Name: "Kalos", First: 650, Last: 721},
	{ID: 7, Name: "Alola", First: 722, Last: 809},
	{ID: 8, Name: "Galar", First: 810, Last: 898},
	{ID: 9, Name: "Paldea", First: 899, Last: 1010},
}

// GenerationOf returns the generation whose range holds id, or 0 when none
// does (alternate forms use ids above 10000).
func GenerationOf(id int) int {
	for _, g := range Groups {
		if id >= g.First && id <= g.Last {
			return g.ID
		}
	}
	return 0
}

// GroupByID looks up a generation.
func GroupByID(id int) (Group, bool) {
	for _, g := range Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

var romanNumerals = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7, "viii": 8, "ix": 9,
}

// ParseGeneration accepts "3", "iii", "generation-iii" or a region name ("hoenn").
func ParseGeneration(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "generation-")
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := GroupByID(n); ok {
			return n, true
		}
		return 0, false
	}
	if n, ok := romanNumerals[s]; ok {
		return n, true
	}
	for _, g := range Groups {
		if strings.ToLower(g.Name) == s {
			return g.ID, true
		}
	}
	return 0, false
}
