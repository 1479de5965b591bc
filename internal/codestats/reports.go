package codestats

import (
	"context"
	"sort"
	"strings"
)

// topLanguagesLimit caps the language breakdown.
const topLanguagesLimit = 10

// fallbackColor is used when the palette has no entry for a language.
const fallbackColor = "#ffffff"

// Stats is the condensed profile view: level is computed from the XP total
// at the start of the current day, so it only moves at day boundaries.
type Stats struct {
	User       string `json:"user"`
	Level      int    `json:"level"`
	TotalXP    int64  `json:"total_xp"`
	PreviousXP int64  `json:"previous_xp"`
	NewXP      int64  `json:"new_xp"`
}

// LanguageStat is one row of the top-languages breakdown.
type LanguageStat struct {
	Name    string `json:"name"`
	XPs     int64  `json:"xps"`
	Level   int    `json:"level"`
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// StatsFromProfile derives the condensed stats view from a parsed profile.
func StatsFromProfile(p *UserProfile) *Stats {
	previous := p.TotalXP - p.NewXP
	return &Stats{
		User:       p.User,
		Level:      Level(previous),
		TotalXP:    p.TotalXP,
		PreviousXP: previous,
		NewXP:      p.NewXP,
	}
}

// TopLanguagesFromProfile derives the top-languages breakdown. The two JSX
// dialects are merged into a single synthetic "React" entry, every other
// language keeps its upstream name, and rows are sorted by XP descending and
// capped at ten. Colors come from the palette, trying the full name first
// and the name with any parenthesized suffix stripped second.
func TopLanguagesFromProfile(ctx context.Context, p *UserProfile, colors *ColorTable) ([]LanguageStat, error) {
	out := make([]LanguageStat, 0, len(p.Languages))

	jsXPs := p.Languages["JavaScript (JSX)"].XPs
	tsXPs := p.Languages["TypeScript (JSX)"].XPs
	if combined := jsXPs + tsXPs; combined > 0 {
		color, err := colorFor(ctx, colors, "JavaScript", "TypeScript")
		if err != nil {
			return nil, err
		}
		out = append(out, LanguageStat{
			Name:    "React",
			XPs:     combined,
			Level:   Level(combined),
			Percent: LevelProgress(combined),
			Color:   color,
		})
	}

	for name, lang := range p.Languages {
		if lang.XPs <= 0 {
			continue
		}
		if name == "JavaScript (JSX)" || name == "TypeScript (JSX)" {
			continue
		}
		color, err := colorFor(ctx, colors, name, baseName(name))
		if err != nil {
			return nil, err
		}
		out = append(out, LanguageStat{
			Name:    name,
			XPs:     lang.XPs,
			Level:   Level(lang.XPs),
			Percent: LevelProgress(lang.XPs),
			Color:   color,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].XPs > out[j].XPs })
	if len(out) > topLanguagesLimit {
		out = out[:topLanguagesLimit]
	}
	return out, nil
}

// colorFor tries each candidate name in order and falls back to white.
func colorFor(ctx context.Context, colors *ColorTable, names ...string) (string, error) {
	for _, name := range names {
		color, err := colors.Color(ctx, name)
		if err != nil {
			return "", err
		}
		if color != "" {
			return color, nil
		}
	}
	return fallbackColor, nil
}

// baseName strips a trailing parenthesized qualifier, so that e.g. a dialect
// of a language can reuse the base language's color.
func baseName(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}
