package render

// Built-in glamour style names
const (
	ThemeDark    = "dark"
	ThemeLight   = "light"
	ThemeDracula = "dracula"
	ThemeTokyo   = "tokyo-night"
	ThemeNoTTY   = "notty"
	ThemeASCII   = "ascii"
)

// IsBuiltinStyle returns true if the style is a glamour built-in style.
// Any other value is treated as a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	switch style {
	case ThemeDark, ThemeLight, ThemeDracula, ThemeTokyo, ThemeNoTTY, ThemeASCII:
		return true
	default:
		return false
	}
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the built-in markdown styles.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeTokyo, Description: "Tokyo Night color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
