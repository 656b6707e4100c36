// Package pokeapi is the read-only client for the public catalog API.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/V2473/pokedex/internal/config"
	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/pokemon"
)

// DefaultConcurrency is used when the config leaves detail_concurrency unset.
const DefaultConcurrency = 8

// Window is the {limit, offset} pair sent to the list endpoint.
type Window struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Page is one list window with every stub resolved to its full record.
type Page struct {
	Count   int               `json:"count"`
	Records []pokemon.Pokemon `json:"records"`
}

// Client performs GET requests against the catalog API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	concurrency int
	logger      *zap.Logger
}

// New builds a client from config. A nil logger is replaced by a no-op one.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := config.DefaultAPIBaseURL
	concurrency := DefaultConcurrency
	var timeout time.Duration
	if cfg != nil {
		if cfg.APIBaseURL != "" {
			baseURL = strings.TrimRight(cfg.APIBaseURL, "/")
		}
		if cfg.DetailConcurrency > 0 {
			concurrency = cfg.DetailConcurrency
		}
		timeout = cfg.HTTPTimeout.Duration
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		concurrency: concurrency,
		logger:      logger.Named("pokeapi"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches one window of {name, url} stubs.
func (c *Client) List(ctx context.Context, w Window) (*pokemon.ListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(w.Limit))
	q.Set("offset", strconv.Itoa(w.Offset))

	var out pokemon.ListResponse
	if err := c.get(ctx, c.baseURL+"/pokemon?"+q.Encode(), "pokemon list", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pokemon fetches one record by id or name.
func (c *Client) Pokemon(ctx context.Context, ident string) (*pokemon.Pokemon, error) {
	var out pokemon.Pokemon
	if err := c.getResource(ctx, "pokemon", ident, "pokemon details", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Species fetches the species entry by id or name.
func (c *Client) Species(ctx context.Context, ident string) (*pokemon.Species, error) {
	var out pokemon.Species
	if err := c.getResource(ctx, "pokemon-species", ident, "pokemon species", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EvolutionChain fetches an evolution chain by id.
func (c *Client) EvolutionChain(ctx context.Context, id int) (*pokemon.EvolutionChain, error) {
	var out pokemon.EvolutionChain
	if err := c.getResource(ctx, "evolution-chain", strconv.Itoa(id), "evolution chain", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Move fetches a move by id or name.
func (c *Client) Move(ctx context.Context, ident string) (*pokemon.Move, error) {
	var out pokemon.Move
	if err := c.getResource(ctx, "move", ident, "move details", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ability fetches an ability by id or name.
func (c *Client) Ability(ctx context.Context, ident string) (*pokemon.Ability, error) {
	var out pokemon.Ability
	if err := c.getResource(ctx, "ability", ident, "ability details", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Type fetches a type with its damage relations and member records.
func (c *Client) Type(ctx context.Context, ident string) (*pokemon.TypeInfo, error) {
	var out pokemon.TypeInfo
	if err := c.getResource(ctx, "type", ident, "type details", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generation fetches a generation with its species list.
func (c *Client) Generation(ctx context.Context, ident string) (*pokemon.GenerationInfo, error) {
	var out pokemon.GenerationInfo
	if err := c.getResource(ctx, "generation", ident, "generation", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TypeList fetches the names of every type the API knows.
func (c *Client) TypeList(ctx context.Context) (*pokemon.ListResponse, error) {
	var out pokemon.ListResponse
	if err := c.get(ctx, c.baseURL+"/type", "types", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerationList fetches the names of every generation the API knows.
func (c *Client) GenerationList(ctx context.Context) (*pokemon.ListResponse, error) {
	var out pokemon.ListResponse
	if err := c.get(ctx, c.baseURL+"/generation", "generations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Page performs the list call for w, then the detail call for every stub.
// Detail calls run concurrently, bounded by the configured concurrency; the
// records keep list order. The first failing detail fails the whole page.
func (c *Client) Page(ctx context.Context, w Window) (*Page, error) {
	start := time.Now()
	list, err := c.List(ctx, w)
	if err != nil {
		return nil, err
	}

	records := make([]pokemon.Pokemon, len(list.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, stub := range list.Results {
		g.Go(func() error {
			var p pokemon.Pokemon
			if err := c.get(gctx, c.detailURL(stub), "pokemon details", &p); err != nil {
				return err
			}
			records[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("page fetched",
		zap.Int("limit", w.Limit),
		zap.Int("offset", w.Offset),
		zap.Int("count", list.Count),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)))

	return &Page{Count: list.Count, Records: records}, nil
}

// detailURL prefers the stub's own URL and falls back to /pokemon/{name}.
func (c *Client) detailURL(stub pokemon.NamedResource) string {
	if stub.URL != "" {
		return stub.URL
	}
	return c.baseURL + "/pokemon/" + url.PathEscape(stub.Name)
}

func (c *Client) getResource(ctx context.Context, resource, ident, what string, dst any) error {
	ident = strings.ToLower(strings.TrimSpace(ident))
	if ident == "" {
		return errors.NewInvalidRequest(resource + " identifier is required")
	}
	err := c.get(ctx, c.baseURL+"/"+resource+"/"+url.PathEscape(ident), what, dst)
	if status, ok := errors.UpstreamStatus(err); ok && status == http.StatusNotFound {
		return errors.NewNotFound(resource, ident)
	}
	return err
}

// get issues one GET and decodes the JSON body into dst.
func (c *Client) get(ctx context.Context, rawURL, what string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("build request for %s: %w", what, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("url", rawURL), zap.Error(err))
		return errors.NewUpstreamUnavailable(what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("unexpected status", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return errors.NewUpstreamStatus(what, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.NewUpstreamDecode(what, err)
	}
	return nil
}

// IDFromURL extracts the trailing numeric id from a resource URL such as
// "https://pokeapi.co/api/v2/evolution-chain/1/".
func IDFromURL(rawURL string) (int, bool) {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
