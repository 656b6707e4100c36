package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	sess     *ops.Session
	renderer *Renderer
	logger   *zap.Logger
}

func (h *Handlers) page(title, nav string) PageData {
	prefs := h.sess.UI.Prefs()
	return PageData{
		Title:         title,
		Version:       h.renderer.version,
		Nav:           nav,
		Theme:         prefs.Theme,
		ViewType:      prefs.ViewType,
		Notifications: h.sess.UI.Active(time.Now()),
	}
}

// HandleList handles GET /pokemon: apply query parameters, load the window
// and render the catalog. A failed fetch still renders the page with the
// previous records and a retry action.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	in, err := parseQuery(r.URL.Query())
	if err != nil {
		h.renderer.renderError(w, r, h.page("Pokémon", "pokemon"), err)
		return
	}

	out, err := h.sess.List(r.Context(), ops.ListInput{
		Query:   in,
		Refresh: parseBool(r.URL.Query().Get("refresh")),
	})
	if out == nil {
		h.renderer.renderError(w, r, h.page("Pokémon", "pokemon"), err)
		return
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if err != nil {
			status = statusOf(err)
		}
		renderJSON(w, status, out)
		return
	}

	h.renderList(w, r, out)
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, out *ops.ListOutput) {
	data := ListPageData{
		PageData:       h.page("Pokémon", "pokemon"),
		List:           out,
		SortFields:     query.Fields,
		PerPageOptions: query.PerPageOptions,
		StatNames:      pokemon.StatNames,
	}

	// The filter options are decoration; the listing renders without them.
	if types, err := h.sess.Types(r.Context(), ops.TypesInput{}); err != nil {
		h.logger.Warn("type filter unavailable", zap.Error(err))
	} else {
		data.Types = types.Types
	}
	if gens, err := h.sess.Generations(r.Context(), ops.GenerationsInput{}); err != nil {
		h.logger.Warn("generation filter unavailable", zap.Error(err))
	} else {
		data.Generations = gens.Generations
	}

	h.renderer.renderPage(w, r, "list", data)
}

// HandleRetry handles POST /pokemon/retry: re-issue the last page fetch.
func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Retry(r.Context())
	if errors.Is(err, errors.ErrNoFetch) {
		out, err = h.sess.List(r.Context(), ops.ListInput{})
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if err != nil {
			status = statusOf(err)
		}
		renderJSON(w, status, out)
		return
	}
	if isHTMX(r) {
		if out == nil {
			h.renderer.renderError(w, r, h.page("Pokémon", "pokemon"), err)
			return
		}
		h.renderList(w, r, out)
		return
	}
	http.Redirect(w, r, "/pokemon", http.StatusSeeOther)
}

// HandleDetail handles GET /pokemon/{ident}: one record with its profile.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Show(r.Context(), ops.ShowInput{Ident: chi.URLParam(r, "ident")})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Pokémon", "pokemon"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:    h.page(out.FormattedName, "pokemon"),
		Record:      out,
		ProfileHTML: h.renderer.renderMarkdown(out.Profile),
	})
}

// HandleFavorites handles GET /favorites: every favorite, fetched as needed.
func (h *Handlers) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	out, err := h.sess.ListFavorites(r.Context(), ops.FavoritesInput{Sort: sort})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	h.renderer.renderPage(w, r, "favorites", FavoritesPageData{
		PageData:  h.page("Favorites", "favorites"),
		Favorites: out,
		Sort:      sort,
	})
}

// HandleToggleFavorite handles POST /favorites/{id}/toggle.
func (h *Handlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), errors.NewInvalidRequest("id must be an integer"))
		return
	}

	out, err := h.sess.ToggleFavorite(r.Context(), ops.FavoriteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	// htmx request: swap just the button
	if isHTMX(r) {
		h.renderer.renderBlock(w, http.StatusOK, "list", "fav-button", out)
		return
	}
	http.Redirect(w, r, backTo(r, "/pokemon"), http.StatusSeeOther)
}

// HandleClearFavorites handles POST /favorites/clear.
func (h *Handlers) HandleClearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), errors.NewInvalidRequest(`confirm parameter must be "true"`))
		return
	}

	out, err := h.sess.ClearFavorites(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, h.page("Favorites", "favorites"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/favorites")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/favorites", http.StatusSeeOther)
}

// HandleTypes handles GET /types and GET /types/{name}.
func (h *Handlers) HandleTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Types(r.Context(), ops.TypesInput{Name: chi.URLParam(r, "name")})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Types", "types"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	title := "Types"
	if out.Detail != nil {
		title = out.Detail.Label
		list, _ := h.sess.Types(r.Context(), ops.TypesInput{})
		out.Types = list.Types
	}
	h.renderer.renderPage(w, r, "types", TypesPageData{
		PageData: h.page(title, "types"),
		Types:    out,
		Detail:   out.Detail,
	})
}

// HandleGenerations handles GET /generations and GET /generations/{ident}.
func (h *Handlers) HandleGenerations(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Generations(r.Context(), ops.GenerationsInput{Ident: chi.URLParam(r, "ident")})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Generations", "generations"), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	title := "Generations"
	if out.Detail != nil {
		title = out.Detail.Name
		list, _ := h.sess.Generations(r.Context(), ops.GenerationsInput{})
		out.Generations = list.Generations
	}
	h.renderer.renderPage(w, r, "generations", GenerationsPageData{
		PageData:    h.page(title, "generations"),
		Generations: out,
		Detail:      out.Detail,
	})
}

// HandlePrefs handles POST /prefs: theme and layout.
func (h *Handlers) HandlePrefs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, h.page("Preferences", ""), errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := h.sess.SetPrefs(r.Context(), ops.PrefsInput{
		Theme: r.FormValue("theme"),
		View:  r.FormValue("view"),
	})
	if err != nil {
		h.renderer.renderError(w, r, h.page("Preferences", ""), err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, backTo(r, "/pokemon"), http.StatusSeeOther)
}

// HandleDismiss handles POST /notifications/{id}/dismiss.
func (h *Handlers) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	h.sess.Dismiss(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// parseQuery maps catalog query parameters onto a batch of query changes.
// A "filters=1" parameter marks a submitted filter form: its checkbox
// groups are then applied even when empty, since unchecked boxes are not
// sent.
func parseQuery(v url.Values) (ops.QueryInput, error) {
	var in ops.QueryInput

	in.Reset = parseBool(v.Get("reset"))
	if v.Has("q") {
		s := v.Get("q")
		in.Search = &s
	}

	form := v.Get("filters") == "1"
	if form || v.Has("type") {
		types := v["type"]
		if types == nil {
			types = []string{}
		}
		in.Types = &types
	}
	in.ToggleType = v.Get("toggle_type")

	if form || v.Has("gen") {
		gens := []int{}
		for _, s := range v["gen"] {
			g, ok := pokemon.ParseGeneration(s)
			if !ok {
				return in, errors.NewInvalidRequest("unknown generation: " + s)
			}
			gens = append(gens, g)
		}
		in.Generations = &gens
	}

	if form || v.Has("favorites") {
		on := parseBool(v.Get("favorites"))
		in.FavoritesOnly = &on
	}

	if form {
		in.ResetStats = true
	}
	for _, stat := range pokemon.StatNames {
		for prefix, dst := range map[string]*query.Stats{"min_": &in.MinStats, "max_": &in.MaxStats} {
			s := strings.TrimSpace(v.Get(prefix + stat))
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return in, errors.NewInvalidRequest(fmt.Sprintf("%s%s must be an integer", prefix, stat))
			}
			if *dst == nil {
				*dst = query.Stats{}
			}
			(*dst)[stat] = n
		}
	}

	if s := v.Get("sort"); s != "" {
		in.Sort = &s
	}
	if s := v.Get("per_page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, errors.NewInvalidRequest("per_page must be an integer")
		}
		in.PerPage = &n
	}
	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, errors.NewInvalidRequest("page must be an integer")
		}
		in.Page = &n
	}
	return in, nil
}

// parseBool accepts "true", "1" and "on".
func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "on"
}

// backTo returns the same-origin referer path, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
