package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = mcp.Items(map[string]any{"type": "string"})

var pokemonListToolDef = mcp.NewTool("pokemon_list",
	mcp.WithDescription("List one page of the Pokémon catalog. The query is sticky: omitted fields keep "+
		"their previous value, and changing a filter, the sort or the page size returns to page 1. "+
		"Filters apply to the records of the loaded page."),
	mcp.WithString("search", mcp.Description("Case-insensitive substring of the name or number; empty clears it")),
	mcp.WithArray("types", mcp.Description("Keep records whose primary or secondary type is in this set; [] clears it"), stringItems),
	mcp.WithArray("generations", mcp.Description("Generation numbers, roman numerals or region names; [] clears it"), stringItems),
	mcp.WithBoolean("favorites_only", mcp.Description("Keep only favorites")),
	mcp.WithString("sort", mcp.Description(`Sort as "field" or "field:asc|desc"; fields: id, name, base_experience, height, weight, total_stats`)),
	mcp.WithNumber("page", mcp.Description("1-based page number; pages past the end move to the last page")),
	mcp.WithNumber("per_page", mcp.Description("Page size: 10, 20, 50 or 100")),
	mcp.WithBoolean("reset", mcp.Description("Clear every filter and the sort before applying the other fields")),
	mcp.WithBoolean("refresh", mcp.Description("Fetch the page again even if it is loaded")),
)

var pokemonGetToolDef = mcp.NewTool("pokemon_get",
	mcp.WithDescription("Get one Pokémon by number or name, with its species entry, evolution stages, "+
		"level-up moves and a markdown profile."),
	mcp.WithString("ident", mcp.Required(), mcp.Description(`National-dex number ("25") or name ("pikachu")`)),
	mcp.WithBoolean("skip_extras", mcp.Description("Skip the species and evolution lookups")),
)

var favoriteToggleToolDef = mcp.NewTool("favorite_toggle",
	mcp.WithDescription("Toggle a Pokémon in the favorites, or set it explicitly with favorite."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("National-dex number")),
	mcp.WithBoolean("favorite", mcp.Description("Set instead of toggling")),
)

var favoriteListToolDef = mcp.NewTool("favorite_list",
	mcp.WithDescription("List every favorite with its record, fetching records outside the loaded page."),
	mcp.WithString("sort", mcp.Description(`Sort as "field" or "field:asc|desc"; defaults to the catalog sort`)),
)

var typeGetToolDef = mcp.NewTool("type_get",
	mcp.WithDescription("List the eighteen types, or get one type's damage relations and members."),
	mcp.WithString("name", mcp.Description(`Type name, e.g. "fire"; omit to list all types`)),
)

var generationGetToolDef = mcp.NewTool("generation_get",
	mcp.WithDescription("List the nine generations, or get one generation's region, species count and games."),
	mcp.WithString("ident", mcp.Description(`Number, roman numeral or region ("3", "iii", "hoenn"); omit to list all`)),
)

var moveGetToolDef = mcp.NewTool("move_get",
	mcp.WithDescription("Get a move's type, power, accuracy, PP and effect."),
	mcp.WithString("ident", mcp.Required(), mcp.Description(`Move number or name, e.g. "thunderbolt"`)),
)

var abilityGetToolDef = mcp.NewTool("ability_get",
	mcp.WithDescription("Get an ability's effect and the Pokémon that have it."),
	mcp.WithString("ident", mcp.Required(), mcp.Description(`Ability number or name, e.g. "overgrow"`)),
)
