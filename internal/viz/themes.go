package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the player's color scheme.
type Theme struct {
	Name      string
	Particles lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Good      lipgloss.Color
	Bad       lipgloss.Color
	// SVG colors for snapshots
	Background string
	Ink        string
}

var (
	ThemeDeepSpace = Theme{
		Name:       "deepspace",
		Particles:  lipgloss.Color("#9ecbff"),
		Accent:     lipgloss.Color("#00ccff"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#666688"),
		Good:       lipgloss.Color("#00ff88"),
		Bad:        lipgloss.Color("#ff4444"),
		Background: "#05070f",
		Ink:        "#9ecbff",
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Particles:  lipgloss.Color("#00ff00"),
		Accent:     lipgloss.Color("#88ff88"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Good:       lipgloss.Color("#88ff88"),
		Bad:        lipgloss.Color("#ffff00"),
		Background: "#001100",
		Ink:        "#00ff00",
	}

	ThemePaper = Theme{
		Name:       "paper",
		Particles:  lipgloss.Color("#ffffff"),
		Accent:     lipgloss.Color("#0088ff"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
		Good:       lipgloss.Color("#00ff00"),
		Bad:        lipgloss.Color("#ff0000"),
		Background: "#ffffff",
		Ink:        "#1f4ed8",
	}

	Themes = []Theme{ThemeDeepSpace, ThemeRetroGreen, ThemePaper}
)

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// nextTheme returns the theme after cur in Themes, wrapping around.
func nextTheme(cur Theme) Theme {
	for i, t := range Themes {
		if t.Name == cur.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
