package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/ops"
	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
)

// Mode is what the browser currently shows.
type Mode int

const (
	ModeList Mode = iota
	ModeSearch
	ModeDetail
)

// sortOptions is the cycle order of the sort key.
var sortOptions = func() []query.Sort {
	var out []query.Sort
	for _, f := range query.Fields {
		out = append(out, query.Sort{Field: f, Direction: query.Asc}, query.Sort{Field: f, Direction: query.Desc})
	}
	return out
}()

type listMsg struct {
	out *ops.ListOutput
	err error
}

type detailMsg struct {
	out *ops.ShowOutput
	err error
}

type favoriteMsg struct {
	out *ops.FavoriteOutput
	err error
}

// Model is the terminal browser. It drives one session through the same
// operations as the other shells.
type Model struct {
	ctx    context.Context
	sess   *ops.Session
	styles Styles

	mode     Mode
	search   textinput.Model
	list     *ops.ListOutput
	detail   *ops.ShowOutput
	cursor   int
	loading  bool
	err      string
	showHelp bool

	width  int
	height int
}

// New creates a browser over sess. Operations run with ctx.
func New(ctx context.Context, sess *ops.Session) *Model {
	ti := textinput.New()
	ti.Placeholder = "name or number"
	ti.Prompt = "/ "
	ti.CharLimit = 40
	ti.Width = 30
	ti.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		ctx:    ctx,
		sess:   sess,
		styles: DefaultStyles,
		search: ti,
		list:   sess.Current(),
	}
	m.search.SetValue(m.list.Query.Search)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load(ops.QueryInput{}, false)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case listMsg:
		m.loading = false
		if msg.out != nil {
			m.list = msg.out
			m.clampCursor()
		}
		m.setErr(msg.err)
		return m, nil

	case detailMsg:
		m.loading = false
		m.setErr(msg.err)
		if msg.err == nil {
			m.detail = msg.out
			m.mode = ModeDetail
		}
		return m, nil

	case favoriteMsg:
		m.setErr(msg.err)
		if msg.err != nil {
			return m, nil
		}
		m.list = m.sess.Current()
		if m.detail != nil && m.detail.ID == msg.out.ID {
			m.detail.IsFavorite = msg.out.Favorite
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeList
		m.search.Blur()
		q := m.search.Value()
		return m, m.load(ops.QueryInput{Search: &q}, false)
	case "esc":
		m.mode = ModeList
		m.search.Blur()
		m.search.SetValue(m.list.Query.Search)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.mode = ModeList
		m.detail = nil
		return m, nil
	case "f":
		return m, m.toggleFavorite(m.detail.ID)
	case "right", "l", "n":
		return m, m.show(m.detail.ID + 1)
	case "left", "h", "p":
		if m.detail.ID > 1 {
			return m, m.show(m.detail.ID - 1)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.list.Query
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "/":
		m.mode = ModeSearch
		return m, m.search.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list.Items)-1 {
			m.cursor++
		}
	case "right", "l", "n":
		if m.list.Pagination.HasMore {
			return m, m.goPage(st.Page + 1)
		}
	case "left", "h", "p":
		if st.Page > 1 {
			return m, m.goPage(st.Page - 1)
		}
	case "t":
		types := nextType(st.Types)
		return m, m.load(ops.QueryInput{Types: &types}, false)
	case "g":
		gens := nextGeneration(st.Generations)
		return m, m.load(ops.QueryInput{Generations: &gens}, false)
	case "s":
		sort := nextSort(st.Sort).String()
		return m, m.load(ops.QueryInput{Sort: &sort}, false)
	case "+", "-":
		n := nextPerPage(st.PerPage, msg.String() == "+")
		return m, m.load(ops.QueryInput{PerPage: &n}, false)
	case "v":
		on := !st.FavoritesOnly
		return m, m.load(ops.QueryInput{FavoritesOnly: &on}, false)
	case "x":
		m.search.SetValue("")
		return m, m.load(ops.QueryInput{Reset: true}, false)
	case "f":
		if item, ok := m.selected(); ok {
			return m, m.toggleFavorite(item.ID)
		}
	case "enter":
		if item, ok := m.selected(); ok {
			return m, m.show(item.ID)
		}
	case "r":
		return m, m.retry()
	}
	return m, nil
}

func (m *Model) selected() (pokemon.Summary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list.Items) {
		return pokemon.Summary{}, false
	}
	return m.list.Items[m.cursor], true
}

func (m *Model) goPage(n int) tea.Cmd {
	m.cursor = 0
	return m.load(ops.QueryInput{Page: &n}, false)
}

func (m *Model) load(in ops.QueryInput, refresh bool) tea.Cmd {
	m.loading = true
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		out, err := sess.List(ctx, ops.ListInput{Query: in, Refresh: refresh})
		return listMsg{out: out, err: err}
	}
}

// retry re-issues a failed fetch, or refreshes the current page.
func (m *Model) retry() tea.Cmd {
	if m.list.Status != "error" {
		return m.load(ops.QueryInput{}, true)
	}
	m.loading = true
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		out, err := sess.Retry(ctx)
		return listMsg{out: out, err: err}
	}
}

func (m *Model) show(id int) tea.Cmd {
	m.loading = true
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		out, err := sess.Show(ctx, ops.ShowInput{Ident: strconv.Itoa(id)})
		return detailMsg{out: out, err: err}
	}
}

func (m *Model) toggleFavorite(id int) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		out, err := sess.ToggleFavorite(ctx, ops.FavoriteInput{ID: id})
		return favoriteMsg{out: out, err: err}
	}
}

func (m *Model) setErr(err error) {
	if err == nil {
		m.err = ""
		return
	}
	m.err = errors.Message(err)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.list.Items) {
		m.cursor = len(m.list.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextType cycles the type filter through none and each single type.
func nextType(current []string) []string {
	if len(current) == 0 {
		return []string{pokemon.TypeNames[0]}
	}
	for i, t := range pokemon.TypeNames {
		if t == current[0] && i+1 < len(pokemon.TypeNames) {
			return []string{pokemon.TypeNames[i+1]}
		}
	}
	return []string{}
}

// nextGeneration cycles the generation filter through none and each
// single generation.
func nextGeneration(current []int) []int {
	if len(current) == 0 {
		return []int{pokemon.Groups[0].ID}
	}
	for i, g := range pokemon.Groups {
		if g.ID == current[0] && i+1 < len(pokemon.Groups) {
			return []int{pokemon.Groups[i+1].ID}
		}
	}
	return []int{}
}

func nextSort(current query.Sort) query.Sort {
	for i, s := range sortOptions {
		if s == current {
			return sortOptions[(i+1)%len(sortOptions)]
		}
	}
	return sortOptions[0]
}

func nextPerPage(current int, up bool) int {
	opts := query.PerPageOptions
	for i, n := range opts {
		if n != current {
			continue
		}
		if up && i+1 < len(opts) {
			return opts[i+1]
		}
		if !up && i > 0 {
			return opts[i-1]
		}
		return n
	}
	return query.DefaultPerPage
}

// Run starts the browser full-screen and blocks until the user quits.
func Run(ctx context.Context, sess *ops.Session) error {
	program := tea.NewProgram(New(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
