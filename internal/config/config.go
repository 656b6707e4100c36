package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIBaseURL is the public PokeAPI v2 root.
const DefaultAPIBaseURL = "https://pokeapi.co/api/v2"

// Duration is a time.Duration that reads and writes as a Go duration string
// ("10s", "1m30s") in both config.json and the environment.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds application configuration.
type Config struct {
	// APIBaseURL is the root of the catalog API, without a trailing slash.
	APIBaseURL string `json:"api_base_url,omitempty" env:"POKEDEX_API_BASE_URL"`

	// HTTPTimeout bounds each outbound request. Zero keeps the http.Client
	// default (no client-side timeout).
	HTTPTimeout Duration `json:"http_timeout,omitempty" env:"POKEDEX_HTTP_TIMEOUT"`

	// DetailConcurrency limits how many detail requests a page fetch keeps in flight.
	DetailConcurrency int `json:"detail_concurrency,omitempty" env:"POKEDEX_DETAIL_CONCURRENCY"`

	// DefaultPerPage is the page size used before the user picks one.
	DefaultPerPage int `json:"default_per_page,omitempty" env:"POKEDEX_DEFAULT_PER_PAGE"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"POKEDEX_LOG_LEVEL"`

	// WebBind and WebPort are the listen address of `pokedex serve`.
	WebBind string `json:"web_bind,omitempty" env:"POKEDEX_WEB_BIND"`
	WebPort int    `json:"web_port,omitempty" env:"POKEDEX_WEB_PORT"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"POKEDEX_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"POKEDEX_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"POKEDEX_DISABLED_TOOLS" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:        DefaultAPIBaseURL,
		DetailConcurrency: 8,
		DefaultPerPage:    20,
		LogLevel:          "info",
		WebBind:           "127.0.0.1",
		WebPort:           8420,
	}
}

// Load loads configuration from baseDir/config.json and applies environment
// overrides. Returns default config (plus environment) if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pokedex.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.pokedex) and project
// (.pokedex) directories, then applies environment overrides.
// Project config is found by walking upward from startDir.
// Project config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any POKEDEX_* variables that are set.
// Unset variables leave the loaded values untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.DisabledTools = mergeStringSlice(cfg.DisabledTools, nil)
	return nil
}

// FindRepoConfig walks upward from startDir to find the nearest .pokedex/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".pokedex", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.APIBaseURL = firstString(overlay.APIBaseURL, base.APIBaseURL)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.WebBind = firstString(overlay.WebBind, base.WebBind)

	result.HTTPTimeout = overlay.HTTPTimeout
	if result.HTTPTimeout.Duration == 0 {
		result.HTTPTimeout = base.HTTPTimeout
	}

	result.DetailConcurrency = firstInt(overlay.DetailConcurrency, base.DetailConcurrency)
	result.DefaultPerPage = firstInt(overlay.DefaultPerPage, base.DefaultPerPage)
	result.WebPort = firstInt(overlay.WebPort, base.WebPort)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
