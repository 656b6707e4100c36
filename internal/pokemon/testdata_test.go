package pokemon

func strPtr(s string) *string { return &s }

func bulbasaur() Pokemon {
	return Pokemon{
		ID:   1,
		Name: "bulbasaur",
		Types: []TypeSlot{
			{Slot: 1, Type: NamedResource{Name: "grass"}},
			{Slot: 2, Type: NamedResource{Name: "poison"}},
		},
		Stats: []Stat{
			{Stat: NamedResource{Name: "hp"}, BaseStat: 45},
			{Stat: NamedResource{Name: "attack"}, BaseStat: 49},
			{Stat: NamedResource{Name: "defense"}, BaseStat: 49},
			{Stat: NamedResource{Name: "special-attack"}, BaseStat: 65, Effort: 1},
			{Stat: NamedResource{Name: "special-defense"}, BaseStat: 65},
			{Stat: NamedResource{Name: "speed"}, BaseStat: 45},
		},
		Abilities: []AbilitySlot{
			{Ability: NamedResource{Name: "overgrow"}, Slot: 1},
			{Ability: NamedResource{Name: "chlorophyll"}, IsHidden: true, Slot: 3},
		},
		Moves: []MoveRef{
			{Move: NamedResource{Name: "vine-whip"}, VersionGroupDetails: []MoveVersionDetail{
				{LevelLearnedAt: 13, MoveLearnMethod: NamedResource{Name: "level-up"}},
				{LevelLearnedAt: 10, MoveLearnMethod: NamedResource{Name: "level-up"}},
			}},
			{Move: NamedResource{Name: "tackle"}, VersionGroupDetails: []MoveVersionDetail{
				{LevelLearnedAt: 1, MoveLearnMethod: NamedResource{Name: "level-up"}},
			}},
			{Move: NamedResource{Name: "cut"}, VersionGroupDetails: []MoveVersionDetail{
				{LevelLearnedAt: 0, MoveLearnMethod: NamedResource{Name: "machine"}},
			}},
		},
		Sprites: Sprites{FrontDefault: strPtr("https://img.example/1.png")},
		Height:  7,
		Weight:  69,

		BaseExperience: 64,
	}
}
