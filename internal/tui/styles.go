package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the browser renders with.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Dim      lipgloss.Style
	Selected lipgloss.Style
	Favorite lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style
	Pane     lipgloss.Style
	Bar      lipgloss.Style
	BarEmpty lipgloss.Style
}

// DefaultStyles is a dark palette that stays readable on light terminals.
var DefaultStyles = Styles{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e")),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
	Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#787c99")),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0caf5")).Background(lipgloss.Color("#414868")),
	Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
	Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	Pane: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7aa2f7")).
		Padding(0, 1),
	Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
	BarEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("#414868")),
}

// typeColors are the badge colors of the eighteen types.
var typeColors = map[string]lipgloss.Color{
	"normal":   "#a8a77a",
	"fire":     "#ee8130",
	"water":    "#6390f0",
	"electric": "#f7d02c",
	"grass":    "#7ac74c",
	"ice":      "#96d9d6",
	"fighting": "#c22e28",
	"poison":   "#a33ea1",
	"ground":   "#e2bf65",
	"flying":   "#a98ff3",
	"psychic":  "#f95587",
	"bug":      "#a6b91a",
	"rock":     "#b6a136",
	"ghost":    "#735797",
	"dragon":   "#6f35fc",
	"dark":     "#705746",
	"steel":    "#b7b7ce",
	"fairy":    "#d685ad",
}

func (s Styles) typeBadge(name string) string {
	c, ok := typeColors[name]
	if !ok {
		return s.Dim.Render(name)
	}
	return lipgloss.NewStyle().Foreground(c).Render(name)
}
