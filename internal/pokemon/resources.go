package pokemon

// ListResponse is the paginated list endpoint body.
type ListResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// LocalizedText is a text entry tagged with a language.
type LocalizedText struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
	Version    NamedResource `json:"version"`
}

// EffectEntry is a move or ability effect description.
type EffectEntry struct {
	Effect      string        `json:"effect"`
	ShortEffect string        `json:"short_effect"`
	Language    NamedResource `json:"language"`
}

// Genus is a species category such as "Seed Pokémon".
type Genus struct {
	Genus    string        `json:"genus"`
	Language NamedResource `json:"language"`
}

// Species is the pokemon-species endpoint body.
type Species struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	Order                int             `json:"order"`
	GenderRate           int             `json:"gender_rate"`
	CaptureRate          int             `json:"capture_rate"`
	BaseHappiness        *int            `json:"base_happiness"`
	IsBaby               bool            `json:"is_baby"`
	IsLegendary          bool            `json:"is_legendary"`
	IsMythical           bool            `json:"is_mythical"`
	HatchCounter         *int            `json:"hatch_counter"`
	HasGenderDifferences bool            `json:"has_gender_differences"`
	GrowthRate           NamedResource   `json:"growth_rate"`
	EggGroups            []NamedResource `json:"egg_groups"`
	Color                NamedResource   `json:"color"`
	Shape                *NamedResource  `json:"shape"`
	Habitat              *NamedResource  `json:"habitat"`
	Generation           NamedResource   `json:"generation"`
	EvolvesFromSpecies   *NamedResource  `json:"evolves_from_species"`
	EvolutionChain       struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
	FlavorTextEntries []LocalizedText `json:"flavor_text_entries"`
	Genera            []Genus         `json:"genera"`
}

// FlavorText returns the first entry in lang with form feeds and newlines
// collapsed to spaces, or "".
func (s *Species) FlavorText(lang string) string {
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == lang {
			return cleanText(e.FlavorText)
		}
	}
	return ""
}

// GenusIn returns the genus in lang, or "".
func (s *Species) GenusIn(lang string) string {
	for _, g := range s.Genera {
		if g.Language.Name == lang {
			return g.Genus
		}
	}
	return ""
}

// EvolutionChain is the evolution-chain endpoint body.
type EvolutionChain struct {
	ID              int            `json:"id"`
	BabyTriggerItem *NamedResource `json:"baby_trigger_item"`
	Chain           ChainLink      `json:"chain"`
}

// ChainLink is one node of an evolution tree.
type ChainLink struct {
	IsBaby           bool              `json:"is_baby"`
	Species          NamedResource     `json:"species"`
	EvolutionDetails []EvolutionDetail `json:"evolution_details"`
	EvolvesTo        []ChainLink       `json:"evolves_to"`
}

// EvolutionDetail describes what triggers an evolution.
type EvolutionDetail struct {
	Item         *NamedResource `json:"item"`
	Trigger      NamedResource  `json:"trigger"`
	Gender       *int           `json:"gender"`
	HeldItem     *NamedResource `json:"held_item"`
	KnownMove    *NamedResource `json:"known_move"`
	Location     *NamedResource `json:"location"`
	MinLevel     *int           `json:"min_level"`
	MinHappiness *int           `json:"min_happiness"`
	MinBeauty    *int           `json:"min_beauty"`
	MinAffection *int           `json:"min_affection"`
	TimeOfDay    string         `json:"time_of_day"`
	TradeSpecies *NamedResource `json:"trade_species"`
}

// Stages flattens the chain breadth-first into evolution stages:
// stage 0 is the base form, stage 1 its direct evolutions, and so on.
func (c *EvolutionChain) Stages() [][]string {
	var stages [][]string
	level := []ChainLink{c.Chain}
	for len(level) > 0 {
		var names []string
		var next []ChainLink
		for _, link := range level {
			names = append(names, link.Species.Name)
			next = append(next, link.EvolvesTo...)
		}
		stages = append(stages, names)
		level = next
	}
	return stages
}

// Move is the move endpoint body.
type Move struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Accuracy      *int           `json:"accuracy"`
	EffectChance  *int           `json:"effect_chance"`
	PP            *int           `json:"pp"`
	Priority      int            `json:"priority"`
	Power         *int           `json:"power"`
	DamageClass   NamedResource  `json:"damage_class"`
	Type          NamedResource  `json:"type"`
	Target        NamedResource  `json:"target"`
	Generation    NamedResource  `json:"generation"`
	EffectEntries []EffectEntry  `json:"effect_entries"`
	ContestType   *NamedResource `json:"contest_type"`
}

// Ability is the ability endpoint body.
type Ability struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	IsMainSeries      bool            `json:"is_main_series"`
	Generation        NamedResource   `json:"generation"`
	EffectEntries     []EffectEntry   `json:"effect_entries"`
	FlavorTextEntries []LocalizedText `json:"flavor_text_entries"`
	Pokemon           []struct {
		IsHidden bool          `json:"is_hidden"`
		Slot     int           `json:"slot"`
		Pokemon  NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

// ShortEffect returns the short effect text in lang, or "".
func ShortEffect(entries []EffectEntry, lang string) string {
	for _, e := range entries {
		if e.Language.Name == lang {
			return cleanText(e.ShortEffect)
		}
	}
	return ""
}

// DamageRelations lists type matchups.
type DamageRelations struct {
	DoubleDamageFrom []NamedResource `json:"double_damage_from"`
	DoubleDamageTo   []NamedResource `json:"double_damage_to"`
	HalfDamageFrom   []NamedResource `json:"half_damage_from"`
	HalfDamageTo     []NamedResource `json:"half_damage_to"`
	NoDamageFrom     []NamedResource `json:"no_damage_from"`
	NoDamageTo       []NamedResource `json:"no_damage_to"`
}

// TypeInfo is the type endpoint body.
type TypeInfo struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	DamageRelations DamageRelations `json:"damage_relations"`
	Generation      NamedResource   `json:"generation"`
	MoveDamageClass *NamedResource  `json:"move_damage_class"`
	Pokemon         []struct {
		Slot    int           `json:"slot"`
		Pokemon NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

// GenerationInfo is the generation endpoint body.
type GenerationInfo struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	MainRegion     NamedResource   `json:"main_region"`
	PokemonSpecies []NamedResource `json:"pokemon_species"`
	Types          []NamedResource `json:"types"`
	VersionGroups  []NamedResource `json:"version_groups"`
}

// Names extracts the Name field of each resource.
func Names(resources []NamedResource) []string {
	names := make([]string, 0, len(resources))
	for _, r := range resources {
		names = append(names, r.Name)
	}
	return names
}
