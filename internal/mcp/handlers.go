package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokemon"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	sess *ops.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *ops.Session) *Handlers {
	return &Handlers{sess: sess}
}

// Request types for each tool

// PokemonListRequest represents the arguments for pokemon_list.
type PokemonListRequest struct {
	Search        *string   `json:"search,omitempty"`
	Types         *[]string `json:"types,omitempty"`
	Generations   *[]string `json:"generations,omitempty"`
	FavoritesOnly *bool     `json:"favorites_only,omitempty"`
	Sort          *string   `json:"sort,omitempty"`
	Page          *int      `json:"page,omitempty"`
	PerPage       *int      `json:"per_page,omitempty"`
	Reset         bool      `json:"reset,omitempty"`
	Refresh       bool      `json:"refresh,omitempty"`
}

// PokemonGetRequest represents the arguments for pokemon_get.
type PokemonGetRequest struct {
	Ident      string `json:"ident"`
	SkipExtras bool   `json:"skip_extras,omitempty"`
}

// FavoriteToggleRequest represents the arguments for favorite_toggle.
type FavoriteToggleRequest struct {
	ID       int   `json:"id"`
	Favorite *bool `json:"favorite,omitempty"`
}

// FavoriteListRequest represents the arguments for favorite_list.
type FavoriteListRequest struct {
	Sort string `json:"sort,omitempty"`
}

// TypeGetRequest represents the arguments for type_get.
type TypeGetRequest struct {
	Name string `json:"name,omitempty"`
}

// IdentRequest represents the arguments of the generation, move and ability
// tools.
type IdentRequest struct {
	Ident string `json:"ident,omitempty"`
}

// Handler implementations

// HandlePokemonList handles the pokemon_list tool call.
func (h *Handlers) HandlePokemonList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PokemonListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	q := ops.QueryInput{
		Reset:         input.Reset,
		Search:        input.Search,
		Types:         input.Types,
		FavoritesOnly: input.FavoritesOnly,
		Sort:          input.Sort,
		PerPage:       input.PerPage,
		Page:          input.Page,
	}
	if input.Generations != nil {
		gens := make([]int, 0, len(*input.Generations))
		for _, s := range *input.Generations {
			g, ok := pokemon.ParseGeneration(s)
			if !ok {
				return errorResult(errors.NewInvalidRequest("unknown generation: " + s)), nil
			}
			gens = append(gens, g)
		}
		q.Generations = &gens
	}

	result, err := h.sess.List(ctx, ops.ListInput{Query: q, Refresh: input.Refresh})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePokemonGet handles the pokemon_get tool call.
func (h *Handlers) HandlePokemonGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PokemonGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Show(ctx, ops.ShowInput{
		Ident:      input.Ident,
		SkipExtras: input.SkipExtras,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFavoriteToggle handles the favorite_toggle tool call.
func (h *Handlers) HandleFavoriteToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FavoriteToggleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := ops.FavoriteInput{ID: input.ID}
	var result *ops.FavoriteOutput
	if input.Favorite != nil {
		result, err = h.sess.SetFavorite(ctx, in, *input.Favorite)
	} else {
		result, err = h.sess.ToggleFavorite(ctx, in)
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFavoriteList handles the favorite_list tool call.
func (h *Handlers) HandleFavoriteList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FavoriteListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.ListFavorites(ctx, ops.FavoritesInput{Sort: input.Sort})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTypeGet handles the type_get tool call.
func (h *Handlers) HandleTypeGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TypeGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Types(ctx, ops.TypesInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGenerationGet handles the generation_get tool call.
func (h *Handlers) HandleGenerationGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IdentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Generations(ctx, ops.GenerationsInput{Ident: input.Ident})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMoveGet handles the move_get tool call.
func (h *Handlers) HandleMoveGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IdentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Move(ctx, input.Ident)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAbilityGet handles the ability_get tool call.
func (h *Handlers) HandleAbilityGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IdentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Ability(ctx, input.Ident)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PokedexError
	if stderrors.As(err, &pErr) {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": errors.Message(err),
			"status":  pErr.Status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
