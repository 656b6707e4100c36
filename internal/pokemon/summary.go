package pokemon

// Summary is a view without stats, abilities, moves or sprites beyond the
// main image. Used by browse operations (list, favorites) to keep CLI and
// MCP payloads small.
type Summary struct {
	// ID is the national-dex number
	ID int `json:"id"`

	// Name is the API slug
	Name string `json:"name"`

	// DisplayName is the formatted name, e.g. "Bulbasaur"
	DisplayName string `json:"display_name"`

	// Number is the formatted id, e.g. "#001"
	Number string `json:"number"`

	// Types holds the primary type and, if present, the secondary type
	Types []string `json:"types"`

	// TotalStats is the sum of the six base stats
	TotalStats int `json:"total_stats"`

	// Generation is the release-era group, 0 when unknown
	Generation int `json:"generation"`

	Favorite bool   `json:"favorite"`
	Image    string `json:"image,omitempty"`
}

// ToSummary strips a view down to its browse fields.
func (v *View) ToSummary() Summary {
	types := []string{}
	if v.PrimaryType != "" {
		types = append(types, v.PrimaryType)
	}
	if v.SecondaryType != "" {
		types = append(types, v.SecondaryType)
	}
	return Summary{
		ID:          v.ID,
		Name:        v.Name,
		DisplayName: v.FormattedName,
		Number:      v.FormattedID,
		Types:       types,
		TotalStats:  v.TotalStats,
		Generation:  v.Generation,
		Favorite:    v.IsFavorite,
		Image:       v.Sprites.Image(),
	}
}

// Summaries converts a slice of views, never returning nil.
func Summaries(views []View) []Summary {
	out := make([]Summary, 0, len(views))
	for i := range views {
		out = append(out, views[i].ToSummary())
	}
	return out
}
