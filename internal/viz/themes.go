package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the palette used by the live view.
type Theme struct {
	Name    string
	Wire    lipgloss.Color
	Carrier lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeCopper = Theme{
		Name:    "copper",
		Wire:    lipgloss.Color("#c87533"),
		Carrier: lipgloss.Color("#66ccff"),
		Accent:  lipgloss.Color("#ffd27f"),
		Text:    lipgloss.Color("#f5e6d8"),
		Muted:   lipgloss.Color("#7a5a44"),
		Warning: lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff3b30"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Wire:    lipgloss.Color("#00cc00"), // green CRT
		Carrier: lipgloss.Color("#ccffcc"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Wire:    lipgloss.Color("#cccccc"),
		Carrier: lipgloss.Color("#0088ff"),
		Accent:  lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Wire:    lipgloss.Color("#00a8cc"),
		Carrier: lipgloss.Color("#ffd700"),
		Accent:  lipgloss.Color("#0077be"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemeCopper

	Themes = []Theme{
		ThemeCopper,
		ThemePhosphor,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to copper.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCopper
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}
