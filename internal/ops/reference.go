package ops

import (
	"context"
	"strconv"
	"strings"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/pokemon"
)

// TypeEntry is one type in the filter panel.
type TypeEntry struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// TypeDetail is one type with its matchups and members.
type TypeDetail struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	Generation       string   `json:"generation"`
	DoubleDamageTo   []string `json:"double_damage_to"`
	DoubleDamageFrom []string `json:"double_damage_from"`
	HalfDamageTo     []string `json:"half_damage_to"`
	HalfDamageFrom   []string `json:"half_damage_from"`
	NoDamageTo       []string `json:"no_damage_to"`
	NoDamageFrom     []string `json:"no_damage_from"`
	Members          []string `json:"members"`
	MemberCount      int      `json:"member_count"`
}

// TypesInput contains parameters for the Types operation.
type TypesInput struct {
	// Name selects one type for detail; empty lists them all
	Name string
}

// TypesOutput lists the types, or details one.
type TypesOutput struct {
	Types  []TypeEntry `json:"types,omitempty"`
	Detail *TypeDetail `json:"detail,omitempty"`
}

// Types lists the eighteen types with their filter selection, or fetches
// one type's matchups and members.
func (s *Session) Types(ctx context.Context, input TypesInput) (*TypesOutput, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if name == "" {
		selected := map[string]bool{}
		for _, t := range s.Query.State().Types {
			selected[t] = true
		}
		out := &TypesOutput{Types: make([]TypeEntry, 0, len(pokemon.TypeNames))}
		for _, t := range pokemon.TypeNames {
			out.Types = append(out.Types, TypeEntry{Name: t, Label: pokemon.Title(t), Selected: selected[t]})
		}
		return out, nil
	}

	if !pokemon.IsKnownType(name) {
		return nil, errors.NewInvalidRequest("unknown type: " + name)
	}
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	info, err := s.api.Type(ctx, name)
	if err != nil {
		return nil, err
	}

	rel := info.DamageRelations
	d := &TypeDetail{
		Name:             info.Name,
		Label:            pokemon.Title(info.Name),
		Generation:       info.Generation.Name,
		DoubleDamageTo:   pokemon.Names(rel.DoubleDamageTo),
		DoubleDamageFrom: pokemon.Names(rel.DoubleDamageFrom),
		HalfDamageTo:     pokemon.Names(rel.HalfDamageTo),
		HalfDamageFrom:   pokemon.Names(rel.HalfDamageFrom),
		NoDamageTo:       pokemon.Names(rel.NoDamageTo),
		NoDamageFrom:     pokemon.Names(rel.NoDamageFrom),
		MemberCount:      len(info.Pokemon),
		Members:          []string{},
	}
	for i, m := range info.Pokemon {
		if i == MaxTypeMembers {
			break
		}
		d.Members = append(d.Members, m.Pokemon.Name)
	}
	return &TypesOutput{Detail: d}, nil
}

// GenerationEntry is one generation in the filter panel.
type GenerationEntry struct {
	pokemon.Group
	Range    string `json:"range"`
	Selected bool   `json:"selected"`
}

// GenerationDetail is one generation as the API describes it.
type GenerationDetail struct {
	pokemon.Group
	Region       string   `json:"region"`
	SpeciesCount int      `json:"species_count"`
	Types        []string `json:"types"`
	Versions     []string `json:"version_groups"`
}

// GenerationsInput contains parameters for the Generations operation.
type GenerationsInput struct {
	// Ident selects one generation ("3", "iii", "hoenn"); empty lists them all
	Ident string
}

// GenerationsOutput lists the generations, or details one.
type GenerationsOutput struct {
	Generations []GenerationEntry `json:"generations,omitempty"`
	Detail      *GenerationDetail `json:"detail,omitempty"`
}

// Generations lists the nine generations with their filter selection, or
// fetches one generation's detail.
func (s *Session) Generations(ctx context.Context, input GenerationsInput) (*GenerationsOutput, error) {
	if strings.TrimSpace(input.Ident) == "" {
		selected := map[int]bool{}
		for _, g := range s.Query.State().Generations {
			selected[g] = true
		}
		out := &GenerationsOutput{Generations: make([]GenerationEntry, 0, len(pokemon.Groups))}
		for _, g := range pokemon.Groups {
			out.Generations = append(out.Generations, GenerationEntry{Group: g, Range: g.Range(), Selected: selected[g.ID]})
		}
		return out, nil
	}

	id, ok := pokemon.ParseGeneration(input.Ident)
	if !ok {
		return nil, errors.NewInvalidRequest("unknown generation: " + input.Ident)
	}
	group, _ := pokemon.GroupByID(id)
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	info, err := s.api.Generation(ctx, strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	return &GenerationsOutput{Detail: &GenerationDetail{
		Group:        group,
		Region:       info.MainRegion.Name,
		SpeciesCount: len(info.PokemonSpecies),
		Types:        pokemon.Names(info.Types),
		Versions:     pokemon.Names(info.VersionGroups),
	}}, nil
}

// MoveOutput is a move summary.
type MoveOutput struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	DamageClass string `json:"damage_class"`
	Power       *int   `json:"power"`
	Accuracy    *int   `json:"accuracy"`
	PP          *int   `json:"pp"`
	Priority    int    `json:"priority"`
	Effect      string `json:"effect,omitempty"`
}

// Move fetches one move by id or name.
func (s *Session) Move(ctx context.Context, ident string) (*MoveOutput, error) {
	id, err := ParseIdent(ident)
	if err != nil {
		return nil, err
	}
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	m, err := s.api.Move(ctx, id.String())
	if err != nil {
		return nil, err
	}
	effect := pokemon.ShortEffect(m.EffectEntries, "en")
	if m.EffectChance != nil {
		effect = strings.ReplaceAll(effect, "$effect_chance", strconv.Itoa(*m.EffectChance))
	}
	return &MoveOutput{
		ID:          m.ID,
		Name:        m.Name,
		Label:       pokemon.Title(m.Name),
		Type:        m.Type.Name,
		DamageClass: m.DamageClass.Name,
		Power:       m.Power,
		Accuracy:    m.Accuracy,
		PP:          m.PP,
		Priority:    m.Priority,
		Effect:      effect,
	}, nil
}

// AbilityOutput is an ability summary.
type AbilityOutput struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Generation string   `json:"generation"`
	Effect     string   `json:"effect,omitempty"`
	Holders    []string `json:"holders"`
	Hidden     []string `json:"hidden_holders"`
}

// Ability fetches one ability by id or name.
func (s *Session) Ability(ctx context.Context, ident string) (*AbilityOutput, error) {
	id, err := ParseIdent(ident)
	if err != nil {
		return nil, err
	}
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	a, err := s.api.Ability(ctx, id.String())
	if err != nil {
		return nil, err
	}
	out := &AbilityOutput{
		ID:         a.ID,
		Name:       a.Name,
		Label:      pokemon.Title(a.Name),
		Generation: a.Generation.Name,
		Effect:     pokemon.ShortEffect(a.EffectEntries, "en"),
		Holders:    []string{},
		Hidden:     []string{},
	}
	for _, h := range a.Pokemon {
		if h.IsHidden {
			out.Hidden = append(out.Hidden, h.Pokemon.Name)
		} else {
			out.Holders = append(out.Holders, h.Pokemon.Name)
		}
	}
	return out, nil
}
