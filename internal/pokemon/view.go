package pokemon

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// View is a record plus the presentation fields the shells display.
// It is rebuilt on every recompute and never persisted.
type View struct {
	Pokemon

	IsFavorite      bool   `json:"is_favorite"`
	FormattedName   string `json:"formatted_name"`
	FormattedID     string `json:"formatted_id"`
	FormattedHeight string `json:"formatted_height"`
	FormattedWeight string `json:"formatted_weight"`
	TotalStats      int    `json:"total_stats"`
	PrimaryType     string `json:"primary_type"`
	SecondaryType   string `json:"secondary_type,omitempty"`
	Generation      int    `json:"generation"`
}

// NewView derives the presentation fields for p.
func NewView(p Pokemon, favorite bool) View {
	total := 0
	for _, s := range p.Stats {
		total += s.BaseStat
	}

	// Types arrive ordered by slot; fall back to position when slots are missing.
	primary, secondary := p.TypeInSlot(1), p.TypeInSlot(2)
	if primary == "" && len(p.Types) > 0 {
		primary = p.Types[0].Type.Name
	}
	if secondary == "" && len(p.Types) > 1 && p.Types[1].Type.Name != primary {
		secondary = p.Types[1].Type.Name
	}

	return View{
		Pokemon:         p,
		IsFavorite:      favorite,
		FormattedName:   FormatName(p.Name),
		FormattedID:     FormatID(p.ID),
		FormattedHeight: fmt.Sprintf("%.1f m", float64(p.Height)/10),
		FormattedWeight: fmt.Sprintf("%.1f kg", float64(p.Weight)/10),
		TotalStats:      total,
		PrimaryType:     primary,
		SecondaryType:   secondary,
		Generation:      GenerationOf(p.ID),
	}
}

// HasType reports whether t is the primary or secondary type.
func (v *View) HasType(t string) bool {
	return t != "" && (v.PrimaryType == t || v.SecondaryType == t)
}

// FormatName upper-cases the first letter of an API slug.
func FormatName(name string) string {
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// FormatID renders an id as "#001".
func FormatID(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// Title turns a hyphenated slug ("special-attack") into "Special Attack".
func Title(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		parts[i] = FormatName(p)
	}
	return strings.Join(parts, " ")
}

// cleanText collapses the control characters the API embeds in flavor text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
