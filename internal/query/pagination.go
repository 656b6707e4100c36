package query

import "github.com/V2473/pokedex/internal/pokeapi"

// Window is the {limit, offset} pair for the list endpoint.
type Window = pokeapi.Window

// MaxVisiblePages is the width of the pagination strip.
const MaxVisiblePages = 5

// TotalPages is ceil(total / perPage), and 0 when there is nothing to show.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Clamp returns page bounded to [1, TotalPages(total, perPage)]. With no
// known total only the lower bound applies.
func Clamp(page, perPage, total int) int {
	page = max(1, page)
	if pages := TotalPages(total, perPage); pages > 0 && page > pages {
		return pages
	}
	return page
}

// PageItem is one cell of the pagination strip. Ellipsis cells have Page 0.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// PageItems builds the pagination strip. With totalPages <= maxVisible every
// page is listed; otherwise the first page, a window around current and the
// last page, with ellipsis cells where pages are skipped.
func PageItems(current, totalPages, maxVisible int) []PageItem {
	if totalPages <= 0 {
		return nil
	}
	if maxVisible < 3 {
		maxVisible = 3
	}
	item := func(p int) PageItem { return PageItem{Page: p, Current: p == current} }

	var items []PageItem
	if totalPages <= maxVisible {
		for p := 1; p <= totalPages; p++ {
			items = append(items, item(p))
		}
		return items
	}

	items = append(items, item(1))
	start := max(2, current-maxVisible/2)
	end := min(totalPages-1, start+maxVisible-3)
	if end == totalPages-1 {
		start = max(2, end-maxVisible+3)
	}
	if start > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for p := start; p <= end; p++ {
		items = append(items, item(p))
	}
	if end < totalPages-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, item(totalPages))
}
