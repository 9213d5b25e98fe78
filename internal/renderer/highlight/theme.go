package highlight

import (
	"sort"

	"github.com/dshills/idhue/internal/renderer/core"
)

// Theme defines the base colors and the styles of decorated text.
type Theme struct {
	// Name is the registry key of the theme.
	Name string

	// Background is the editor background color.
	Background core.Color

	// Foreground is the default text color. Identifier palettes take
	// their lightness from it.
	Foreground core.Color

	// TokenStyles maps token types to their styles.
	TokenStyles map[TokenType]core.Style
}

// StyleForToken returns the style for tokenType.
func (t *Theme) StyleForToken(tokenType TokenType) core.Style {
	if style, ok := t.TokenStyles[tokenType]; ok {
		return style
	}
	return t.Base()
}

// StyleForTag returns the style for a decoration tag.
func (t *Theme) StyleForTag(tag string) core.Style {
	return t.StyleForToken(TokenTypeFromTag(tag))
}

// Base returns the style of undecorated text.
func (t *Theme) Base() core.Style {
	return core.Style{Foreground: t.Foreground, Background: t.Background}
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() *Theme {
	comment := core.ColorFromRGB(106, 153, 85)
	keyword := core.ColorFromRGB(86, 156, 214)
	str := core.ColorFromRGB(206, 145, 120)
	number := core.ColorFromRGB(181, 206, 168)
	typ := core.ColorFromRGB(78, 201, 176)

	return &Theme{
		Name:       "default-dark",
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
		TokenStyles: map[TokenType]core.Style{
			TokenComment:  core.NewStyle(comment).Italic(),
			TokenString:   core.NewStyle(str),
			TokenNumber:   core.NewStyle(number),
			TokenKeyword:  core.NewStyle(keyword),
			TokenConstant: core.NewStyle(keyword),
			TokenTypeName: core.NewStyle(typ),
			TokenBuiltin:  core.NewStyle(core.ColorFromRGB(220, 220, 170)),
			TokenMeta:     core.NewStyle(core.ColorFromRGB(197, 134, 192)),
		},
	}
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	keyword := core.ColorFromRGB(0, 0, 255)

	return &Theme{
		Name:       "light",
		Background: core.ColorFromRGB(255, 255, 255),
		Foreground: core.ColorFromRGB(0, 0, 0),
		TokenStyles: map[TokenType]core.Style{
			TokenComment:  core.NewStyle(core.ColorFromRGB(0, 128, 0)).Italic(),
			TokenString:   core.NewStyle(core.ColorFromRGB(163, 21, 21)),
			TokenNumber:   core.NewStyle(core.ColorFromRGB(9, 134, 88)),
			TokenKeyword:  core.NewStyle(keyword),
			TokenConstant: core.NewStyle(keyword),
			TokenTypeName: core.NewStyle(core.ColorFromRGB(38, 127, 153)),
			TokenBuiltin:  core.NewStyle(core.ColorFromRGB(121, 94, 38)),
			TokenMeta:     core.NewStyle(core.ColorFromRGB(128, 128, 128)),
		},
	}
}

// MonokaiTheme returns a Monokai-inspired theme.
func MonokaiTheme() *Theme {
	pink := core.ColorFromRGB(249, 38, 114)

	return &Theme{
		Name:       "monokai",
		Background: core.ColorFromRGB(39, 40, 34),
		Foreground: core.ColorFromRGB(248, 248, 242),
		TokenStyles: map[TokenType]core.Style{
			TokenComment:  core.NewStyle(core.ColorFromRGB(117, 113, 94)).Italic(),
			TokenString:   core.NewStyle(core.ColorFromRGB(230, 219, 116)),
			TokenNumber:   core.NewStyle(core.ColorFromRGB(174, 129, 255)),
			TokenKeyword:  core.NewStyle(pink),
			TokenConstant: core.NewStyle(core.ColorFromRGB(174, 129, 255)),
			TokenTypeName: core.NewStyle(core.ColorFromRGB(102, 217, 239)).Italic(),
			TokenBuiltin:  core.NewStyle(core.ColorFromRGB(166, 226, 46)),
			TokenMeta:     core.NewStyle(pink),
		},
	}
}

// ThemeRegistry holds available themes.
type ThemeRegistry struct {
	themes map[string]*Theme
}

// NewThemeRegistry creates a registry with the built-in themes.
func NewThemeRegistry() *ThemeRegistry {
	r := &ThemeRegistry{themes: make(map[string]*Theme)}
	r.Register(DefaultTheme())
	r.Register(LightTheme())
	r.Register(MonokaiTheme())
	return r
}

// Register adds a theme.
func (r *ThemeRegistry) Register(theme *Theme) {
	r.themes[theme.Name] = theme
}

// Get returns a theme by name.
func (r *ThemeRegistry) Get(name string) (*Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

// Names returns the theme names in lexical order.
func (r *ThemeRegistry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
