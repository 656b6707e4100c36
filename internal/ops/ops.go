package ops

import (
	"strconv"
	"strings"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/query"
)

// Limits for operations that fan out detail requests.
const (
	MaxFavoritesDetail = 200
	MaxTypeMembers     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	HasMore    bool             `json:"has_more"`
	Pages      []query.PageItem `json:"pages,omitempty"`
}

// NewPagination derives pagination metadata for state against total records.
func NewPagination(st query.State, total int) Pagination {
	w := st.Window()
	pages := query.TotalPages(total, w.Limit)
	return Pagination{
		Page:       st.Page,
		PerPage:    w.Limit,
		Limit:      w.Limit,
		Offset:     w.Offset,
		Total:      total,
		TotalPages: pages,
		HasMore:    st.Page < pages,
		Pages:      query.PageItems(st.Page, pages, query.MaxVisiblePages),
	}
}

// Ident is a validated record identifier: a positive id or a lowercase name.
type Ident struct {
	ID   int
	Name string
}

// String renders the identifier as the API expects it.
func (i Ident) String() string {
	if i.ID > 0 {
		return strconv.Itoa(i.ID)
	}
	return i.Name
}

// ParseIdent accepts "25", "#025" or "pikachu".
func ParseIdent(s string) (Ident, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return Ident{}, errors.NewInvalidRequest("must specify an id or name")
	}
	if id, err := strconv.Atoi(s); err == nil {
		if id <= 0 {
			return Ident{}, errors.NewInvalidRequest("id must be positive")
		}
		return Ident{ID: id}, nil
	}
	if strings.ContainsAny(s, "/?# ") {
		return Ident{}, errors.NewInvalidRequest("invalid name: " + s)
	}
	return Ident{Name: s}, nil
}
