package pokemon

import (
	"fmt"
	"sort"
	"strings"
)

// MaxProfileMoves caps the level-up move table in a profile.
const MaxProfileMoves = 15

// ProfileInput bundles what a detail profile can show. Species and Chain are
// optional; their sections are omitted when nil.
type ProfileInput struct {
	View    View
	Species *Species
	Chain   *EvolutionChain
	Lang    string // defaults to "en"
}

// Profile renders a markdown document describing one record. The web detail
// page renders it to HTML; the CLI prints it as is.
func Profile(in ProfileInput) string {
	lang := in.Lang
	if lang == "" {
		lang = "en"
	}
	v := in.View

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", v.FormattedName, v.FormattedID)
	if in.Species != nil {
		if genus := in.Species.GenusIn(lang); genus != "" {
			fmt.Fprintf(&b, "*%s*\n\n", genus)
		}
		if text := in.Species.FlavorText(lang); text != "" {
			fmt.Fprintf(&b, "> %s\n\n", text)
		}
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Type:** %s\n", typeLine(v))
	fmt.Fprintf(&b, "- **Height:** %s\n", v.FormattedHeight)
	fmt.Fprintf(&b, "- **Weight:** %s\n", v.FormattedWeight)
	fmt.Fprintf(&b, "- **Base experience:** %d\n", v.BaseExperience)
	if g, ok := GroupByID(v.Generation); ok {
		fmt.Fprintf(&b, "- **Generation:** %s (%s)\n", g.Name, g.Range())
	}
	if in.Species != nil {
		s := in.Species
		fmt.Fprintf(&b, "- **Capture rate:** %d\n", s.CaptureRate)
		if s.GrowthRate.Name != "" {
			fmt.Fprintf(&b, "- **Growth rate:** %s\n", Title(s.GrowthRate.Name))
		}
		if len(s.EggGroups) > 0 {
			fmt.Fprintf(&b, "- **Egg groups:** %s\n", titleList(Names(s.EggGroups)))
		}
		if s.Habitat != nil {
			fmt.Fprintf(&b, "- **Habitat:** %s\n", Title(s.Habitat.Name))
		}
		switch {
		case s.IsLegendary:
			b.WriteString("- **Legendary**\n")
		case s.IsMythical:
			b.WriteString("- **Mythical**\n")
		case s.IsBaby:
			b.WriteString("- **Baby**\n")
		}
	}
	b.WriteString("\n")

	if len(v.Stats) > 0 {
		b.WriteString("## Base stats\n\n| Stat | Base | EV |\n|---|---:|---:|\n")
		for _, s := range v.Stats {
			label := StatLabels[s.Stat.Name]
			if label == "" {
				label = Title(s.Stat.Name)
			}
			fmt.Fprintf(&b, "| %s | %d | %d |\n", label, s.BaseStat, s.Effort)
		}
		fmt.Fprintf(&b, "| **Total** | **%d** | |\n\n", v.TotalStats)
	}

	if len(v.Abilities) > 0 {
		b.WriteString("## Abilities\n\n")
		for _, a := range v.Abilities {
			if a.IsHidden {
				fmt.Fprintf(&b, "- %s (hidden)\n", Title(a.Ability.Name))
			} else {
				fmt.Fprintf(&b, "- %s\n", Title(a.Ability.Name))
			}
		}
		b.WriteString("\n")
	}

	if in.Chain != nil {
		stages := in.Chain.Stages()
		if len(stages) > 1 {
			b.WriteString("## Evolution\n\n")
			parts := make([]string, 0, len(stages))
			for _, names := range stages {
				parts = append(parts, titleList(names))
			}
			b.WriteString(strings.Join(parts, " → "))
			b.WriteString("\n\n")
		}
	}

	if moves := LevelUpMoves(v.Pokemon); len(moves) > 0 {
		b.WriteString("## Level-up moves\n\n| Level | Move |\n|---:|---|\n")
		for i, m := range moves {
			if i == MaxProfileMoves {
				fmt.Fprintf(&b, "\n_%d more not shown._\n", len(moves)-MaxProfileMoves)
				break
			}
			fmt.Fprintf(&b, "| %d | %s |\n", m.Level, Title(m.Name))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// LearnedMove is a move with the lowest level it is learned at by level-up.
type LearnedMove struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// LevelUpMoves returns the level-up moves ordered by level, then name.
func LevelUpMoves(p Pokemon) []LearnedMove {
	var out []LearnedMove
	for _, m := range p.Moves {
		level := -1
		for _, d := range m.VersionGroupDetails {
			if d.MoveLearnMethod.Name != "level-up" {
				continue
			}
			if level < 0 || d.LevelLearnedAt < level {
				level = d.LevelLearnedAt
			}
		}
		if level >= 0 {
			out = append(out, LearnedMove{Name: m.Move.Name, Level: level})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func typeLine(v View) string {
	if v.SecondaryType == "" {
		return FormatName(v.PrimaryType)
	}
	return FormatName(v.PrimaryType) + " / " + FormatName(v.SecondaryType)
}

func titleList(slugs []string) string {
	out := make([]string, len(slugs))
	for i, s := range slugs {
		out[i] = Title(s)
	}
	return strings.Join(out, ", ")
}
