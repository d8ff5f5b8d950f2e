package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Theme names accepted in Options.Style
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeDracula    = "dracula"
	ThemeTokyoNight = "tokyonight"
	ThemeAyurveda   = "ayurveda"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes lists the markdown themes that need no style file.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeAyurveda, Description: "Saffron and leaf green on dark"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
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

// IsBuiltinStyle reports whether style names a built-in theme rather than a file.
func IsBuiltinStyle(style string) bool {
	_, ok := builtinStyle(style)
	return ok
}

// builtinStyle resolves a theme name to its glamour style config.
func builtinStyle(name string) (ansi.StyleConfig, bool) {
	switch name {
	case ThemeDark:
		return styles.DarkStyleConfig, true
	case ThemeLight:
		return styles.LightStyleConfig, true
	case ThemeDracula:
		return styles.DraculaStyleConfig, true
	case ThemeTokyoNight:
		return styles.TokyoNightStyleConfig, true
	case ThemeNoTTY:
		return styles.NoTTYStyleConfig, true
	case ThemeASCII:
		return styles.ASCIIStyleConfig, true
	case ThemeAyurveda:
		return ayurvedaStyle(), true
	default:
		return ansi.StyleConfig{}, false
	}
}

// ayurvedaStyle is the dark style with saffron headings and green links.
// Only top-level pointers are replaced so the shared dark config is never mutated.
func ayurvedaStyle() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	cfg.H1.StylePrimitive.Color = strPtr("#fdf6e3")
	cfg.H1.StylePrimitive.BackgroundColor = strPtr("#d9822b")
	cfg.H2.StylePrimitive.Color = strPtr("#f0a04b")
	cfg.H3.StylePrimitive.Color = strPtr("#e0b05e")
	cfg.Heading.StylePrimitive.Color = strPtr("#f0a04b")
	cfg.Strong.Color = strPtr("#f0a04b")
	cfg.Link.Color = strPtr("#8fbf5a")
	cfg.LinkText.Color = strPtr("#a7d67a")
	cfg.Item.BlockPrefix = "• "

	return cfg
}

func strPtr(s string) *string {
	return &s
}
