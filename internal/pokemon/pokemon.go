package pokemon

// NamedResource is the {name, url} reference the catalog API uses everywhere.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Pokemon is a single catalog record as returned by the detail endpoint.
// Only the fields the application reads are decoded; anything missing in the
// response decodes to its zero value.
type Pokemon struct {
	// ID is the national-dex number; unique and stable
	ID int `json:"id"`

	// Name is the lowercase API slug, e.g. "mr-mime"
	Name string `json:"name"`

	// Types holds up to two type slots, slot 1 being the primary type
	Types []TypeSlot `json:"types"`

	// Stats holds the six base stats
	Stats []Stat `json:"stats"`

	// Abilities lists regular and hidden abilities
	Abilities []AbilitySlot `json:"abilities"`

	// Moves lists learnable moves with per-version-group learn details
	Moves []MoveRef `json:"moves"`

	Sprites Sprites `json:"sprites"`

	// Height is in decimetres, Weight in hectograms
	Height int `json:"height"`
	Weight int `json:"weight"`

	BaseExperience int           `json:"base_experience"`
	Order          int           `json:"order"`
	Species        NamedResource `json:"species"`
}

// TypeSlot is one entry of Pokemon.Types.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// Stat is one base stat.
type Stat struct {
	Stat     NamedResource `json:"stat"`
	Effort   int           `json:"effort"`
	BaseStat int           `json:"base_stat"`
}

// AbilitySlot is one entry of Pokemon.Abilities.
type AbilitySlot struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

// MoveRef is a learnable move.
type MoveRef struct {
	Move                NamedResource       `json:"move"`
	VersionGroupDetails []MoveVersionDetail `json:"version_group_details"`
}

// MoveVersionDetail says how a move is learned in one version group.
type MoveVersionDetail struct {
	LevelLearnedAt  int           `json:"level_learned_at"`
	VersionGroup    NamedResource `json:"version_group"`
	MoveLearnMethod NamedResource `json:"move_learn_method"`
}

// Sprites holds image references. Every URL is nullable upstream.
type Sprites struct {
	FrontDefault *string      `json:"front_default"`
	FrontShiny   *string      `json:"front_shiny"`
	BackDefault  *string      `json:"back_default"`
	BackShiny    *string      `json:"back_shiny"`
	Other        OtherSprites `json:"other"`
}

// OtherSprites holds the artwork variants.
type OtherSprites struct {
	DreamWorld struct {
		FrontDefault *string `json:"front_default"`
	} `json:"dream_world"`
	OfficialArtwork struct {
		FrontDefault *string `json:"front_default"`
		FrontShiny   *string `json:"front_shiny"`
	} `json:"official-artwork"`
}

// Image returns the best available picture: official artwork, then the
// default front sprite, then "".
func (s Sprites) Image() string {
	if u := s.Other.OfficialArtwork.FrontDefault; u != nil && *u != "" {
		return *u
	}
	if s.FrontDefault != nil {
		return *s.FrontDefault
	}
	return ""
}

// StatNames are the six base-stat keys in display order.
var StatNames = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// StatLabels maps stat keys to short display labels.
var StatLabels = map[string]string{
	"hp":              "HP",
	"attack":          "Attack",
	"defense":         "Defense",
	"special-attack":  "Sp. Atk",
	"special-defense": "Sp. Def",
	"speed":           "Speed",
}

// TypeNames lists the eighteen record types, in the order the filter panel shows them.
var TypeNames = []string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fighting", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

// IsKnownType reports whether name is one of TypeNames.
func IsKnownType(name string) bool {
	for _, t := range TypeNames {
		if t == name {
			return true
		}
	}
	return false
}

// BaseStat returns the base value of the named stat, or 0 if absent.
func (p *Pokemon) BaseStat(name string) int {
	for _, s := range p.Stats {
		if s.Stat.Name == name {
			return s.BaseStat
		}
	}
	return 0
}

// TypeInSlot returns the type name occupying slot (1 or 2), or "".
func (p *Pokemon) TypeInSlot(slot int) string {
	for _, t := range p.Types {
		if t.Slot == slot {
			return t.Type.Name
		}
	}
	return ""
}
