package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/tui"
	"github.com/V2473/pokedex/internal/web"
)

// stdout is where command results go. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
func newCLIApp(sess *ops.Session, logger *zap.Logger) *cli.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &cli.App{
		Name:    "pokedex",
		Usage:   "Browse the Pokémon catalog",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(sess),
			showCmd(sess),
			favCmd(sess),
			typesCmd(sess),
			generationsCmd(sess),
			moveCmd(sess),
			abilityCmd(sess),
			prefsCmd(sess),
			serveCmd(sess, logger),
			browseCmd(sess),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Value:   "json",
		Usage:   "Output format: json|yaml",
	}
}

// listCmd creates the list command.
func listCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List one page of the catalog (filters stick between runs)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Name or number substring; empty clears it"},
			&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "Type filter (repeatable); an empty value clears it"},
			&cli.StringSliceFlag{Name: "gen", Aliases: []string{"g"}, Usage: "Generation filter: number, roman numeral or region (repeatable)"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites (--favorites=false clears it)"},
			&cli.StringFlag{Name: "sort", Usage: "Sort as field[:asc|desc]"},
			&cli.IntFlag{Name: "per-page", Aliases: []string{"n"}, Usage: "Page size: 10, 20, 50 or 100"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "1-based page number"},
			&cli.BoolFlag{Name: "refresh", Usage: "Fetch the page again"},
			&cli.BoolFlag{Name: "reset", Usage: "Clear every filter and the sort first"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			q, err := queryFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			output, err := sess.List(c.Context, ops.ListInput{Query: q, Refresh: c.Bool("refresh")})
			if err != nil {
				return outputError(err)
			}

			return writeResult(c, output)
		},
	}
}

// queryFromFlags maps the list flags onto a query change. Flags that were
// not given leave the stored value alone.
func queryFromFlags(c *cli.Context) (ops.QueryInput, error) {
	q := ops.QueryInput{Reset: c.Bool("reset")}

	if c.IsSet("search") {
		search := c.String("search")
		q.Search = &search
	}
	if c.IsSet("type") {
		types := nonEmpty(c.StringSlice("type"))
		q.Types = &types
	}
	if c.IsSet("gen") {
		gens, err := parseGenerations(nonEmpty(c.StringSlice("gen")))
		if err != nil {
			return q, err
		}
		q.Generations = &gens
	}
	if c.IsSet("favorites") {
		fav := c.Bool("favorites")
		q.FavoritesOnly = &fav
	}
	if c.IsSet("sort") {
		sort := c.String("sort")
		q.Sort = &sort
	}
	if c.IsSet("per-page") {
		perPage := c.Int("per-page")
		q.PerPage = &perPage
	}
	if c.IsSet("page") {
		page := c.Int("page")
		q.Page = &page
	}
	return q, nil
}

// showCmd creates the show command.
func showCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one Pokémon by number or name",
		ArgsUsage: "<id|name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "skip-extras", Usage: "Skip the species and evolution lookups"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print the markdown profile only"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id or name is required"))
			}

			output, err := sess.Show(c.Context, ops.ShowInput{
				Ident:      c.Args().First(),
				SkipExtras: c.Bool("skip-extras"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("markdown") {
				_, err := fmt.Fprint(stdout, output.Profile)
				return err
			}
			return writeResult(c, output)
		},
	}
}

// favCmd creates the fav command and its subcommands.
func favCmd(sess *ops.Session) *cli.Command {
	set := func(name, usage string, apply func(c *cli.Context, in ops.FavoriteInput) (*ops.FavoriteOutput, error)) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "<id>",
			Flags:     []cli.Flag{formatFlag()},
			Action: func(c *cli.Context) error {
				id, err := parseID(c.Args().First())
				if err != nil {
					return outputError(err)
				}
				output, err := apply(c, ops.FavoriteInput{ID: id})
				if err != nil {
					return outputError(err)
				}
				return writeResult(c, output)
			},
		}
	}

	return &cli.Command{
		Name:  "fav",
		Usage: "Manage favorites",
		Subcommands: []*cli.Command{
			set("add", "Add a favorite", func(c *cli.Context, in ops.FavoriteInput) (*ops.FavoriteOutput, error) {
				return sess.SetFavorite(c.Context, in, true)
			}),
			set("remove", "Remove a favorite", func(c *cli.Context, in ops.FavoriteInput) (*ops.FavoriteOutput, error) {
				return sess.SetFavorite(c.Context, in, false)
			}),
			set("toggle", "Toggle a favorite", func(c *cli.Context, in ops.FavoriteInput) (*ops.FavoriteOutput, error) {
				return sess.ToggleFavorite(c.Context, in)
			}),
			{
				Name:  "list",
				Usage: "List every favorite with its record",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sort", Usage: "Sort as field[:asc|desc]; defaults to the catalog sort"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					output, err := sess.ListFavorites(c.Context, ops.FavoritesInput{Sort: c.String("sort")})
					if err != nil {
						return outputError(err)
					}
					return writeResult(c, output)
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every favorite",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "confirm", Usage: "Required; clearing cannot be undone"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					if !c.Bool("confirm") {
						return outputError(errors.NewInvalidRequest("pass --confirm to clear every favorite"))
					}
					output, err := sess.ClearFavorites(c.Context)
					if err != nil {
						return outputError(err)
					}
					return writeResult(c, output)
				},
			},
		},
	}
}

// typesCmd creates the types command.
func typesCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "types",
		Usage:     "List the types, or show one type's matchups and members",
		ArgsUsage: "[name]",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			output, err := sess.Types(c.Context, ops.TypesInput{Name: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return writeResult(c, output)
		},
	}
}

// generationsCmd creates the generations command.
func generationsCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "generations",
		Usage:     "List the generations, or show one generation",
		ArgsUsage: "[number|numeral|region]",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			output, err := sess.Generations(c.Context, ops.GenerationsInput{Ident: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return writeResult(c, output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Show a move",
		ArgsUsage: "<id|name>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			output, err := sess.Move(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return writeResult(c, output)
		},
	}
}

// abilityCmd creates the ability command.
func abilityCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "ability",
		Usage:     "Show an ability",
		ArgsUsage: "<id|name>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			output, err := sess.Ability(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return writeResult(c, output)
		},
	}
}

// prefsCmd creates the prefs command.
func prefsCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show or change the theme and layout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "theme", Usage: "light|dark|system"},
			&cli.StringFlag{Name: "view", Usage: "grid|list"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			if !c.IsSet("theme") && !c.IsSet("view") {
				return writeResult(c, sess.Prefs())
			}
			output, err := sess.SetPrefs(c.Context, ops.PrefsInput{
				Theme: c.String("theme"),
				View:  c.String("view"),
			})
			if err != nil {
				return outputError(err)
			}
			return writeResult(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(sess *ops.Session, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *sess.Config()
			if c.IsSet("bind") {
				cfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.WebPort = c.Int("port")
			}

			hub := web.NewHub(logger)
			go hub.Run()
			defer hub.Stop()
			unwatch := hub.Watch(sess)
			defer unwatch()

			if err := web.Run(web.NewServer(sess, hub, &cfg, logger, Version), logger); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// browseCmd creates the browse command.
func browseCmd(sess *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog in the terminal",
		Action: func(c *cli.Context) error {
			if err := tui.Run(c.Context, sess); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// output2 writes v to stdout in the format chosen by --format.
func writeResult(c *cli.Context, v any) error {
	switch c.String("format") {
	case "", "json":
		return outputJSON(v)
	case "yaml":
		return outputYAML(v)
	default:
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json or yaml)", c.String("format"))))
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v to stdout as YAML. Values pass through JSON first so
// the keys match the JSON output.
func outputYAML(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// outputError formats error for CLI.
func outputError(err error) error {
	var pErr *errors.PokedexError
	if stderrors.As(err, &pErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, errors.Message(err)), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseID parses a positive national-dex number.
func parseID(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// parseGenerations maps generation idents to numbers.
func parseGenerations(idents []string) ([]int, error) {
	gens := make([]int, 0, len(idents))
	for _, s := range idents {
		g, ok := pokemon.ParseGeneration(s)
		if !ok {
			return nil, errors.NewInvalidRequest("unknown generation: " + s)
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// nonEmpty splits comma-separated values and drops blanks.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
