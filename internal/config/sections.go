package config

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/lexrule"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/schedule"
)

// Section accessors return snapshot structs. Mutating the returned
// struct does not modify the configuration.

// PaletteConfig holds palette generation settings.
type PaletteConfig struct {
	// Size is the number of identifier colors.
	Size int

	// GridResolution is the number of hue and saturation steps sampled.
	GridResolution int

	// MinLuminance and MaxLuminance clamp the lightness taken from the
	// theme foreground.
	MinLuminance float64
	MaxLuminance float64
}

// Options converts the section to generator options at luminance.
func (p PaletteConfig) Options(luminance float64) palette.Options {
	return palette.Options{
		Size:           p.Size,
		Luminance:      luminance,
		GridResolution: p.GridResolution,
		MinLuminance:   p.MinLuminance,
		MaxLuminance:   p.MaxLuminance,
	}
}

// RefreshConfig holds refresh scheduling settings.
type RefreshConfig struct {
	// Interval is the period of the shared refresh ticker.
	Interval time.Duration

	// IdleDelay is how long a document must stay unedited before an
	// idle refresh runs.
	IdleDelay time.Duration

	// Periodic enables the shared ticker.
	Periodic bool
}

// ThemeConfig selects the base theme.
type ThemeConfig struct {
	// Name is a registered theme name.
	Name string

	// Foreground, when set, is a hex color overriding the theme's
	// foreground for palette lightness.
	Foreground string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string
	File    string
	Console bool
}

// LanguageConfig is the identifier rule of one language.
type LanguageConfig struct {
	// Name is the language tag.
	Name string

	// Extensions are the file name extensions, with the dot, that select
	// this language.
	Extensions []string

	// Context, Identifier and Exclude are the rule's regular expressions.
	Context    string
	Identifier string
	Exclude    string

	// Tags are the decoration tags identifiers may carry. "" accepts
	// undecorated text.
	Tags []string
}

// Patterns returns the rule patterns.
func (l LanguageConfig) Patterns() lexrule.Patterns {
	return lexrule.Patterns{
		Context:    l.Context,
		Identifier: l.Identifier,
		Exclude:    l.Exclude,
	}
}

// Rule compiles the language's lexical rule.
func (l LanguageConfig) Rule() (*lexrule.Rule, error) {
	rule, err := lexrule.NewRule(l.Patterns(), l.Tags...)
	if err != nil {
		return nil, errors.Errorf("language %s: %w", l.Name, err)
	}
	return rule, nil
}

// Palette returns the palette section.
func (c *Config) Palette() PaletteConfig {
	return PaletteConfig{
		Size:           c.getIntOr("palette.size", palette.DefaultSize),
		GridResolution: c.getIntOr("palette.gridResolution", palette.DefaultGridResolution),
		MinLuminance:   c.getFloatOr("palette.minLuminance", palette.DefaultMinLuminance),
		MaxLuminance:   c.getFloatOr("palette.maxLuminance", palette.DefaultMaxLuminance),
	}
}

// Refresh returns the refresh section.
func (c *Config) Refresh() RefreshConfig {
	return RefreshConfig{
		Interval:  c.getDurationOr("refresh.interval", schedule.DefaultInterval),
		IdleDelay: c.getDurationOr("refresh.idleDelay", schedule.DefaultIdleDelay),
		Periodic:  c.getBoolOr("refresh.periodic", true),
	}
}

// Theme returns the theme section.
func (c *Config) Theme() ThemeConfig {
	return ThemeConfig{
		Name:       c.getStringOr("theme.name", "default-dark"),
		Foreground: c.getStringOr("theme.foreground", ""),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:   c.getStringOr("logging.level", "info"),
		File:    c.getStringOr("logging.file", ""),
		Console: c.getBoolOr("logging.console", true),
	}
}

// Languages returns every configured language, sorted by name.
func (c *Config) Languages() []LanguageConfig {
	v, _ := c.Get("languages")
	section, _ := v.(map[string]any)

	names := make([]string, 0, len(section))
	for name, entry := range section {
		if _, ok := entry.(map[string]any); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]LanguageConfig, 0, len(names))
	for _, name := range names {
		out = append(out, c.language(name))
	}
	return out
}

// Language returns the configuration of one language.
func (c *Config) Language(name string) (LanguageConfig, error) {
	v, ok := c.Get("languages." + name)
	if _, isMap := v.(map[string]any); !ok || !isMap {
		return LanguageConfig{}, errors.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	return c.language(name), nil
}

func (c *Config) language(name string) LanguageConfig {
	prefix := "languages." + name + "."
	tags := c.getStringSliceOr(prefix+"tags", []string{lexrule.Undecorated})
	return LanguageConfig{
		Name:       name,
		Extensions: c.getStringSliceOr(prefix+"extensions", nil),
		Context:    c.getStringOr(prefix+"context", ""),
		Identifier: c.getStringOr(prefix+"identifier", ""),
		Exclude:    c.getStringOr(prefix+"exclude", ""),
		Tags:       tags,
	}
}

// LanguageForFile returns the language whose extensions match path.
func (c *Config) LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	for _, l := range c.Languages() {
		for _, e := range l.Extensions {
			if strings.ToLower(e) == ext {
				return l.Name, true
			}
		}
	}
	return "", false
}

// Rules compiles every configured language into a rule table.
func (c *Config) Rules() (*lexrule.Table, error) {
	table := lexrule.NewTable()
	for _, l := range c.Languages() {
		rule, err := l.Rule()
		if err != nil {
			return nil, err
		}
		table.Register(l.Name, rule)
	}
	return table, nil
}

// validate checks types and ranges of the known settings.
func validate(c *Config) error {
	for _, path := range []string{"palette.size", "palette.gridResolution"} {
		n, err := c.GetInt(path)
		if err != nil {
			return errors.Errorf("%s: %w", path, err)
		}
		if n < 1 {
			return &ValidationError{Path: path, Message: "must be at least 1", Value: n}
		}
	}

	var bounds [2]float64
	for i, path := range []string{"palette.minLuminance", "palette.maxLuminance"} {
		f, err := c.GetFloat(path)
		if err != nil {
			return errors.Errorf("%s: %w", path, err)
		}
		if f < 0 || f > 1 {
			return &ValidationError{Path: path, Message: "must be within [0, 1]", Value: f}
		}
		bounds[i] = f
	}
	if bounds[0] > bounds[1] {
		return &ValidationError{Path: "palette.minLuminance", Message: "exceeds palette.maxLuminance", Value: bounds[0]}
	}

	for _, path := range []string{"refresh.interval", "refresh.idleDelay"} {
		d, err := c.GetDuration(path)
		if err != nil {
			return errors.Errorf("%s: %w", path, err)
		}
		if d <= 0 {
			return &ValidationError{Path: path, Message: "must be positive", Value: d}
		}
	}

	for _, l := range c.Languages() {
		if l.Identifier == "" {
			return &ValidationError{Path: "languages." + l.Name + ".identifier", Message: "is required", Value: ""}
		}
		if _, err := c.GetStringSlice("languages." + l.Name + ".tags"); err != nil && !errors.Is(err, ErrSettingNotFound) {
			return errors.Errorf("languages.%s.tags: %w", l.Name, err)
		}
	}
	return nil
}

func (c *Config) getStringOr(path, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		return defaultValue
	}
	return v
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		return defaultValue
	}
	return v
}
