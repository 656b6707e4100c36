package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/config"
	"github.com/V2473/pokedex/internal/db"
	"github.com/V2473/pokedex/internal/logging"
	"github.com/V2473/pokedex/internal/mcp"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokeapi"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "show": true, "fav": true,
	"types": true, "generations": true, "move": true, "ability": true,
	"prefs": true, "serve": true, "browse": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___      _            _
  | _ \___ | |_____ __ _| |_____ __
  |  _/ _ \| / / -_) _' |/ -_) \ /
  |_| \___/|_\_\___\__,_|\___/_\_\

  Browse the Pokémon catalog

  Usage: pokedex <command> [options]
         pokedex browse    (terminal UI)
         pokedex serve     (web UI)
         pokedex --help

  MCP server mode requires piped input.`)
}

// newLogger builds the process logger. The terminal UI owns the screen, so
// browse logs to a file under baseDir instead of stderr.
func newLogger(baseDir string, cfg *config.Config) (*zap.Logger, error) {
	if len(os.Args) >= 2 && os.Args[1] == "browse" {
		return logging.NewFile(baseDir, cfg.LogLevel)
	}
	return logging.New(cfg.LogLevel)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no session needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".pokedex")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	logger, err := newLogger(baseDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sess, err := ops.NewSession(context.Background(), ops.SessionDeps{
		DB:     database,
		API:    pokeapi.New(cfg, logger),
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to start session: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(sess, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'pokedex --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools",
			zap.Strings("tools", unknown),
			zap.Strings("valid", mcp.AllToolNames()))
	}

	// MCP server mode (default)
	if err := mcp.Run(sess, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
