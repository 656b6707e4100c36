package mcp

import (
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/V2473/pokedex/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"pokemon_list": {
		def:     pokemonListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePokemonList },
	},
	"pokemon_get": {
		def:     pokemonGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePokemonGet },
	},
	"favorite_toggle": {
		def:     favoriteToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavoriteToggle },
	},
	"favorite_list": {
		def:     favoriteListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavoriteList },
	},
	"type_get": {
		def:     typeGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTypeGet },
	},
	"generation_get": {
		def:     generationGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerationGet },
	},
	"move_get": {
		def:     moveGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMoveGet },
	},
	"ability_get": {
		def:     abilityGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAbilityGet },
	},
}

// AllToolNames returns every valid tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the catalog tools registered.
// Tools listed in the session config's DisabledTools are excluded.
func NewServer(sess *ops.Session, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pokedex",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(sess)

	disabled := make(map[string]bool)
	for _, name := range sess.Config().DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(sess *ops.Session, version string) error {
	return server.ServeStdio(NewServer(sess, version))
}
