package tui

import (
	"fmt"
	"strings"

	"github.com/V2473/pokedex/internal/pokemon"
	"github.com/V2473/pokedex/internal/query"
	"github.com/V2473/pokedex/internal/uiprefs"
)

const barWidth = 24

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Pokédex"))
	b.WriteString("  ")
	b.WriteString(m.styles.Dim.Render(m.summaryLine()))
	b.WriteString("\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n")
	if m.mode == ModeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.mode == ModeDetail && m.detail != nil {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) summaryLine() string {
	p := m.list.Pagination
	if p.TotalPages == 0 {
		return fmt.Sprintf("%d Pokémon", p.Total)
	}
	return fmt.Sprintf("page %d/%d · %d Pokémon · %d per page", p.Page, p.TotalPages, p.Total, p.PerPage)
}

func (m *Model) filterLine() string {
	st := m.list.Query
	parts := []string{"sort " + st.Sort.String()}
	if st.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", st.Search))
	}
	if len(st.Types) > 0 {
		badges := make([]string, len(st.Types))
		for i, t := range st.Types {
			badges[i] = m.styles.typeBadge(t)
		}
		parts = append(parts, "type "+strings.Join(badges, ","))
	}
	for _, g := range st.Generations {
		if grp, ok := pokemon.GroupByID(g); ok {
			parts = append(parts, "gen "+grp.Name)
		}
	}
	if st.FavoritesOnly {
		parts = append(parts, m.styles.Favorite.Render("★ only"))
	}
	if st.HasStatFilter() {
		parts = append(parts, "stat bounds")
	}
	return m.styles.Header.Render("Filters: ") + strings.Join(parts, " · ")
}

func (m *Model) listView() string {
	if len(m.list.Items) == 0 {
		switch {
		case m.loading:
			return m.styles.Dim.Render("Loading…") + "\n"
		case m.list.HasData:
			return m.styles.Dim.Render("No Pokémon match these filters.") + "\n"
		default:
			return m.styles.Dim.Render("Nothing loaded yet.") + "\n"
		}
	}

	var b strings.Builder
	for i, item := range m.list.Items {
		star := " "
		if item.Favorite {
			star = m.styles.Favorite.Render("★")
		}
		types := make([]string, len(item.Types))
		for j, t := range item.Types {
			types[j] = m.styles.typeBadge(t)
		}
		row := fmt.Sprintf("%s %-5s %-16s %-20s %4d", star, item.Number, item.DisplayName, strings.Join(types, "/"), item.TotalStats)
		if i == m.cursor {
			row = m.styles.Selected.Render("›" + row)
		} else {
			row = " " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) detailView() string {
	d := m.detail
	var b strings.Builder

	title := d.FormattedName + " " + d.FormattedID
	if d.IsFavorite {
		title += " " + m.styles.Favorite.Render("★")
	}
	b.WriteString(m.styles.Header.Render(title))
	b.WriteString("\n")
	if d.Genus != "" {
		b.WriteString(m.styles.Dim.Render(d.Genus))
		b.WriteString("\n")
	}

	types := []string{m.styles.typeBadge(d.PrimaryType)}
	if d.SecondaryType != "" {
		types = append(types, m.styles.typeBadge(d.SecondaryType))
	}
	fmt.Fprintf(&b, "%s · %s · %s\n", strings.Join(types, "/"), d.FormattedHeight, d.FormattedWeight)
	if d.Flavor != "" {
		b.WriteString(strings.ReplaceAll(d.Flavor, "\n", " "))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, s := range d.Stats {
		label := pokemon.StatLabels[s.Stat.Name]
		if label == "" {
			label = pokemon.Title(s.Stat.Name)
		}
		fmt.Fprintf(&b, "%-8s %3d %s\n", label, s.BaseStat, m.bar(s.BaseStat))
	}
	fmt.Fprintf(&b, "%-8s %3d\n", "Total", d.TotalStats)

	if len(d.Evolution) > 1 {
		stages := make([]string, len(d.Evolution))
		for i, names := range d.Evolution {
			titled := make([]string, len(names))
			for j, n := range names {
				titled[j] = pokemon.Title(n)
			}
			stages[i] = strings.Join(titled, " / ")
		}
		b.WriteString("\nEvolution: ")
		b.WriteString(strings.Join(stages, " → "))
		b.WriteString("\n")
	}

	if len(d.Moves) > 0 {
		names := make([]string, 0, 6)
		for _, mv := range d.Moves {
			if len(names) == cap(names) {
				break
			}
			names = append(names, fmt.Sprintf("%s (%d)", pokemon.Title(mv.Name), mv.Level))
		}
		b.WriteString("Moves: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	pane := m.styles.Pane
	if m.width > 4 {
		pane = pane.Width(min(m.width-4, 72))
	}
	return pane.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m *Model) bar(v int) string {
	filled := min(barWidth, v*barWidth/query.MaxStatValue)
	return m.styles.Bar.Render(strings.Repeat("█", filled)) +
		m.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
}

func (m *Model) statusLine() string {
	switch {
	case m.loading:
		return m.styles.Dim.Render("Loading…")
	case m.err != "":
		return m.styles.Error.Render(m.err) + m.styles.Dim.Render("  (r to retry)")
	}
	active := m.sess.Notifications()
	if len(active) == 0 {
		return ""
	}
	n := active[len(active)-1]
	style := m.styles.Dim
	switch n.Kind {
	case uiprefs.KindSuccess:
		style = m.styles.Success
	case uiprefs.KindError:
		style = m.styles.Error
	}
	return style.Render(n.Message)
}

func (m *Model) helpView() string {
	if m.mode == ModeSearch {
		return m.styles.Help.Render("enter apply · esc cancel")
	}
	if m.mode == ModeDetail {
		return m.styles.Help.Render("←/→ previous/next · f favorite · esc back · q quit")
	}
	if !m.showHelp {
		return m.styles.Help.Render("↑/↓ move · ←/→ page · enter details · / search · ? more · q quit")
	}
	lines := []string{
		"↑/↓ k/j   move          ←/→ h/l   page",
		"enter     details       /         search",
		"t         cycle type    g         cycle generation",
		"s         cycle sort    +/-       page size",
		"f         favorite      v         favorites only",
		"x         reset filters r         retry / refresh",
		"q         quit          ?         less",
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}
