package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
	"github.com/V2473/pokedex/internal/uiprefs"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title         string
	Version       string
	Nav           string // active nav item: "pokemon", "favorites", "types", "generations"
	Theme         uiprefs.Theme
	ViewType      uiprefs.ViewType
	Notifications []uiprefs.Notification
}

// ListPageData is the template data for the catalog page.
type ListPageData struct {
	PageData
	List           *ops.ListOutput
	Types          []ops.TypeEntry
	Generations    []ops.GenerationEntry
	SortFields     []query.Field
	PerPageOptions []int
	StatNames      []string
}

// DetailPageData is the template data for the record detail page.
type DetailPageData struct {
	PageData
	Record      *ops.ShowOutput
	ProfileHTML template.HTML
}

// FavoritesPageData is the template data for the favorites page.
type FavoritesPageData struct {
	PageData
	Favorites *ops.FavoritesOutput
	Sort      string
}

// TypesPageData is the template data for the types page.
type TypesPageData struct {
	PageData
	Types  *ops.TypesOutput
	Detail *ops.TypeDetail
}

// GenerationsPageData is the template data for the generations page.
type GenerationsPageData struct {
	PageData
	Generations *ops.GenerationsOutput
	Detail      *ops.GenerationDetail
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	markdown  goldmark.Markdown
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"title":       pokemon.Title,
		"statLabel":   statLabel,
		"statPercent": statPercent,
		"join":        strings.Join,
		"formatTime":  formatTime,
		"deref":       deref,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":        "list.html",
		"detail":      "detail.html",
		"favorites":   "favorites.html",
		"types":       "types.html",
		"generations": "generations.html",
		"error":       "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.Table)),
		logger:    logger.Named("render"),
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if isHTMX(req) {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed",
			zap.String("page", page),
			zap.String("block", block),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, page PageData, err error) {
	var pErr *errors.PokedexError
	if !stderrors.As(err, &pErr) {
		pErr = errors.NewInternal(err)
	}

	status := pErr.Status
	message := pErr.Message
	if status >= http.StatusInternalServerError {
		r.logger.Warn("request failed",
			zap.String("path", req.URL.Path),
			zap.String("code", string(pErr.Code)),
			zap.Error(err))
	}

	// htmx request: return HTML fragment
	if isHTMX(req) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, status, errorBody(pErr))
		return
	}

	page.Title = fmt.Sprintf("Error %d", status)
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   page,
		StatusCode: status,
		Message:    message,
	})
}

func errorBody(e *errors.PokedexError) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    string(e.Code),
			"message": e.Message,
			"status":  e.Status,
		},
	}
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func isHTMX(req *http.Request) bool {
	return req != nil && req.Header.Get("HX-Request") == "true"
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var pErr *errors.PokedexError
	if stderrors.As(err, &pErr) {
		return pErr.Status
	}
	return http.StatusInternalServerError
}

func statLabel(name string) string {
	if l, ok := pokemon.StatLabels[name]; ok {
		return l
	}
	return pokemon.Title(name)
}

// statPercent scales a base stat to a bar width.
func statPercent(v int) int {
	return min(100, v*100/query.MaxStatValue)
}

// formatTime formats a time as "15:04:05" local time.
func formatTime(t time.Time) string {
	return t.Local().Format("15:04:05")
}

// deref dereferences an *int, returning "-" if nil.
func deref(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
