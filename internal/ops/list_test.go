package ops

import (
	"context"
	"net/http"
	"slices"
	"testing"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/query"
)

func ids(out *ListOutput) []int {
	got := make([]int, 0, len(out.Items))
	for _, it := range out.Items {
		got = append(got, it.ID)
	}
	return got
}

func TestList_FirstPage(t *testing.T) {
	s, srv := newTestSession(t, 1302)

	out, err := s.List(context.Background(), ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(out.Items) != 20 {
		t.Errorf("len(Items) = %d, want 20", len(out.Items))
	}
	if out.Items[0].ID != 1 || out.Items[0].DisplayName != "Bulbasaur" {
		t.Errorf("Items[0] = %+v, want Bulbasaur #1", out.Items[0])
	}
	if out.Status != catalog.StatusSuccess {
		t.Errorf("Status = %q, want success", out.Status)
	}
	if !out.HasData {
		t.Error("HasData = false, want true")
	}
	p := out.Pagination
	if p.Total != 1302 || p.TotalPages != 66 || !p.HasMore {
		t.Errorf("Pagination = %+v, want 1302 total over 66 pages", p)
	}
	if got := srv.ListRequests(); !slices.Equal(got, []string{"/pokemon?limit=20&offset=0"}) {
		t.Errorf("list requests = %v", got)
	}
}

func TestList_LoadedWindowIsNotRefetched(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, 100)

	if _, err := s.List(ctx, ListInput{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	srv.Reset()
	if _, err := s.List(ctx, ListInput{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("second List made %d requests, want 0", n)
	}

	if _, err := s.List(ctx, ListInput{Refresh: true}); err != nil {
		t.Fatalf("List refresh failed: %v", err)
	}
	if got := srv.ListRequests(); len(got) != 1 {
		t.Errorf("refresh list requests = %v, want one", got)
	}
}

func TestList_PerPageRefetchesFromFirstPage(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, 1302)

	if _, err := s.List(ctx, ListInput{Query: QueryInput{Page: intPtr(3)}}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	srv.Reset()

	out, err := s.List(ctx, ListInput{Query: QueryInput{PerPage: intPtr(50)}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := srv.ListRequests(); !slices.Equal(got, []string{"/pokemon?limit=50&offset=0"}) {
		t.Errorf("list requests = %v, want one limit=50 offset=0", got)
	}
	if out.Query.Page != 1 {
		t.Errorf("Page = %d, want 1", out.Query.Page)
	}
	if len(out.Items) != 50 {
		t.Errorf("len(Items) = %d, want 50", len(out.Items))
	}
	if out.Pagination.TotalPages != 27 {
		t.Errorf("TotalPages = %d, want 27", out.Pagination.TotalPages)
	}
}

func TestList_FilterRecomputesWithoutFetching(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, 40)

	if _, err := s.List(ctx, ListInput{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	srv.Reset()

	out, err := s.List(ctx, ListInput{Query: QueryInput{Search: stringPtr("char")}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("search made %d requests, want 0", n)
	}
	if got := ids(out); !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("ids = %v, want [4 5 6]", got)
	}

	out, err = s.List(ctx, ListInput{Query: QueryInput{Search: stringPtr(""), ToggleType: "water"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, it := range out.Items {
		if !slices.Contains(it.Types, "water") {
			t.Errorf("item %d types %v lack water", it.ID, it.Types)
		}
	}
	if len(out.Items) < 3 {
		t.Errorf("len(Items) = %d, want at least the three water starters", len(out.Items))
	}
}

func TestList_SortDescending(t *testing.T) {
	s, _ := newTestSession(t, 30)

	out, err := s.List(context.Background(), ListInput{Query: QueryInput{Sort: stringPtr("id:desc")}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Items[0].ID != 20 || out.Items[len(out.Items)-1].ID != 1 {
		t.Errorf("ids = %v, want 20..1", ids(out))
	}
}

func TestList_InvalidQueryChangesNothing(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, 30)

	_, err := s.List(ctx, ListInput{Query: QueryInput{
		Search:  stringPtr("bulba"),
		PerPage: intPtr(7),
	}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
	if s.Query.State().Search != "" {
		t.Errorf("Search = %q, want unchanged", s.Query.State().Search)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("invalid query made %d requests, want 0", n)
	}

	_, err = s.List(ctx, ListInput{Query: QueryInput{Sort: stringPtr("speed")}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad sort err = %v, want INVALID_REQUEST", err)
	}
	_, err = s.List(ctx, ListInput{Query: QueryInput{MinStats: query.Stats{"hp": 300}}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad stat err = %v, want INVALID_REQUEST", err)
	}
}

func TestList_ServerErrorKeepsRecordsUntilRetry(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, 100)

	if _, err := s.List(ctx, ListInput{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	srv.FailWith(http.StatusInternalServerError, "/pokemon")
	out, err := s.List(ctx, ListInput{Query: QueryInput{Page: intPtr(2)}})
	if !errors.Is(err, errors.ErrUpstreamStatus) {
		t.Fatalf("err = %v, want UPSTREAM_STATUS", err)
	}
	if out.Status != catalog.StatusError || out.Error == "" {
		t.Errorf("Status = %q Error = %q, want error with message", out.Status, out.Error)
	}
	if !out.HasData || out.Items[0].ID != 1 {
		t.Errorf("records not kept after failure: %v", ids(out))
	}

	srv.FailWith(0, "")
	out, err = s.Retry(ctx)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if out.Status != catalog.StatusSuccess || out.Items[0].ID != 21 {
		t.Errorf("after retry Status = %q ids = %v, want page 2", out.Status, ids(out))
	}
}

func TestRetry_NothingToRetry(t *testing.T) {
	s, _ := newTestSession(t, 10)

	_, err := s.Retry(context.Background())
	if !errors.Is(err, errors.ErrNoFetch) {
		t.Errorf("err = %v, want NO_FETCH", err)
	}
}

func TestList_PagePastEndClampsToLastPage(t *testing.T) {
	s, _ := newTestSession(t, 45)

	out, err := s.List(context.Background(), ListInput{Query: QueryInput{Page: intPtr(10)}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Query.Page != 3 {
		t.Errorf("Page = %d, want 3", out.Query.Page)
	}
	if got := ids(out); !slices.Equal(got, []int{41, 42, 43, 44, 45}) {
		t.Errorf("ids = %v, want 41..45", got)
	}
	if out.Pagination.HasMore {
		t.Error("HasMore = true on the last page")
	}
}

func TestList_NoAPI(t *testing.T) {
	s := sessionWith(t, nil, nil)

	_, err := s.List(context.Background(), ListInput{})
	if !errors.Is(err, errors.ErrInternal) {
		t.Errorf("err = %v, want INTERNAL", err)
	}
}

func TestApplyQuery_ResetKeepsPerPage(t *testing.T) {
	ctx := context.Background()
	s := sessionWith(t, nil, nil)

	if _, err := s.ApplyQuery(ctx, QueryInput{
		Search:        stringPtr("saur"),
		Types:         &[]string{"grass"},
		Generations:   &[]int{1},
		FavoritesOnly: boolPtr(true),
		PerPage:       intPtr(50),
	}); err != nil {
		t.Fatalf("ApplyQuery failed: %v", err)
	}

	out, err := s.ResetQuery(ctx)
	if err != nil {
		t.Fatalf("ResetQuery failed: %v", err)
	}
	if out.State.HasFilters() {
		t.Errorf("filters remain after reset: %+v", out.State)
	}
	if out.State.PerPage != 50 {
		t.Errorf("PerPage = %d, want 50", out.State.PerPage)
	}
}

func TestApplyQuery_ExplicitPageSurvivesFilterChange(t *testing.T) {
	s := sessionWith(t, nil, nil)

	out, err := s.ApplyQuery(context.Background(), QueryInput{Search: stringPtr("x"), Page: intPtr(4)})
	if err != nil {
		t.Fatalf("ApplyQuery failed: %v", err)
	}
	if out.State.Page != 4 {
		t.Errorf("Page = %d, want 4", out.State.Page)
	}
}

func TestParseIdent(t *testing.T) {
	tests := []struct {
		in      string
		want    Ident
		wantErr bool
	}{
		{"25", Ident{ID: 25}, false},
		{"#025", Ident{ID: 25}, false},
		{" Pikachu ", Ident{Name: "pikachu"}, false},
		{"mr-mime", Ident{Name: "mr-mime"}, false},
		{"", Ident{}, true},
		{"0", Ident{}, true},
		{"-3", Ident{}, true},
		{"a/b", Ident{}, true},
	}
	for _, tt := range tests {
		got, err := ParseIdent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIdent(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseIdent(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	st, _ := query.Default().WithPerPage(10)
	st = st.WithPage(2)

	p := NewPagination(st, 95)
	if p.Offset != 10 || p.Limit != 10 || p.TotalPages != 10 || !p.HasMore {
		t.Errorf("Pagination = %+v", p)
	}
	if len(p.Pages) == 0 {
		t.Error("Pages empty")
	}
}
