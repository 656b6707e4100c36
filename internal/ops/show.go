package ops

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/pokeapi"
	"github.com/V2473/pokedex/internal/pokemon"
)

// ShowInput contains parameters for the Show operation.
type ShowInput struct {
	Ident string // id, "#id" or name

	// SkipExtras leaves out species and evolution lookups
	SkipExtras bool
}

// ShowOutput is one record with everything the detail view displays.
type ShowOutput struct {
	pokemon.View

	Genus     string                `json:"genus,omitempty"`
	Flavor    string                `json:"flavor_text,omitempty"`
	Species   *pokemon.Species      `json:"species,omitempty"`
	Evolution [][]string            `json:"evolution,omitempty"`
	Moves     []pokemon.LearnedMove `json:"level_up_moves"`
	Profile   string                `json:"profile_markdown"`
	Detail    catalog.DetailState   `json:"detail"`
}

// Show returns one record by id or name with its species entry, evolution
// stages and a markdown profile. The record itself must load; the species
// and evolution lookups are best-effort and logged on failure.
func (s *Session) Show(ctx context.Context, input ShowInput) (*ShowOutput, error) {
	ident, err := ParseIdent(input.Ident)
	if err != nil {
		return nil, err
	}

	p, err := s.resolve(ctx, ident)
	if err != nil {
		return nil, err
	}

	out := &ShowOutput{
		View:   pokemon.NewView(*p, s.Favorites.IsFavorite(p.ID)),
		Moves:  pokemon.LevelUpMoves(*p),
		Detail: s.Catalog.DetailStatus(p.ID),
	}
	if out.Moves == nil {
		out.Moves = []pokemon.LearnedMove{}
	}

	var chain *pokemon.EvolutionChain
	if !input.SkipExtras && s.api != nil {
		out.Species, chain = s.extras(ctx, p)
		if out.Species != nil {
			out.Genus = out.Species.GenusIn("en")
			out.Flavor = out.Species.FlavorText("en")
		}
		if chain != nil {
			out.Evolution = chain.Stages()
		}
	}

	out.Profile = pokemon.Profile(pokemon.ProfileInput{View: out.View, Species: out.Species, Chain: chain})
	return out, nil
}

// resolve finds a record in the catalog or fetches it.
func (s *Session) resolve(ctx context.Context, ident Ident) (*pokemon.Pokemon, error) {
	if ident.ID > 0 {
		return s.Catalog.Detail(ctx, ident.ID)
	}
	if p, ok := s.Catalog.Lookup(ident.Name); ok {
		if d, err := s.Catalog.Detail(ctx, p.ID); err == nil {
			return d, nil
		}
		return &p, nil
	}
	p, err := s.api.Pokemon(ctx, ident.Name)
	if err != nil {
		return nil, err
	}
	s.Catalog.Remember(*p)
	return p, nil
}

func (s *Session) extras(ctx context.Context, p *pokemon.Pokemon) (*pokemon.Species, *pokemon.EvolutionChain) {
	speciesIdent := p.Species.Name
	if id, ok := pokeapi.IDFromURL(p.Species.URL); ok {
		speciesIdent = strconv.Itoa(id)
	}
	if speciesIdent == "" {
		speciesIdent = strconv.Itoa(p.ID)
	}

	species, err := s.api.Species(ctx, speciesIdent)
	if err != nil {
		s.logger.Warn("species lookup failed", zap.Int("id", p.ID), zap.Error(err))
		return nil, nil
	}

	chainID, ok := pokeapi.IDFromURL(species.EvolutionChain.URL)
	if !ok {
		return species, nil
	}
	chain, err := s.api.EvolutionChain(ctx, chainID)
	if err != nil {
		s.logger.Warn("evolution chain lookup failed", zap.Int("chain", chainID), zap.Error(err))
		return species, nil
	}
	return species, chain
}
