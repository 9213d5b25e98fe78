package main

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/config"
	"github.com/dshills/idhue/internal/config/loader"
	"github.com/dshills/idhue/internal/engine/buffer"
	"github.com/dshills/idhue/internal/logging"
	"github.com/dshills/idhue/internal/renderer/core"
	"github.com/dshills/idhue/internal/renderer/highlight"
)

//go:embed defaults.toml
var defaultsTOML []byte

// app holds the state shared by every subcommand.
type app struct {
	// Flags
	configPath  string
	logLevel    string
	logFile     string
	paletteSize int
	theme       string

	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
	themes *highlight.ThemeRegistry
}

func newRootCommand() *cobra.Command {
	a := &app{
		logger: zerolog.Nop(),
		themes: highlight.NewThemeRegistry(),
	}

	cmd := &cobra.Command{
		Use:   "idhue",
		Short: "Color identifiers by spelling",
		Long: `idhue gives every distinct identifier in a source file its own color.

Colors come from a palette of perceptually distinct hues whose lightness
follows the theme's foreground. Identifiers are found with per-language
rules; the built-in rules cover Go, JavaScript, TypeScript, Python and C,
and a config file can add or override languages.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "config file, TOML or YAML (default $IDHUE_CONFIG)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.logFile, "log-file", "", "write logs to this file")
	f.IntVar(&a.paletteSize, "palette-size", 0, "number of identifier colors")
	f.StringVar(&a.theme, "theme", "", "theme: "+strings.Join(a.themes.Names(), ", "))

	cmd.AddCommand(
		newPaletteCommand(a),
		newRenderCommand(a),
		newViewCommand(a),
		newRulesCommand(a),
		newConfigCommand(a),
	)
	return cmd
}

// load reads the configuration layers, applies flag overrides and sets up
// logging. quiet discards logs that would go to the terminal.
func (a *app) load(cmd *cobra.Command, watch, quiet bool) error {
	defaults, err := loader.NewTOMLLoader("").LoadFromReader(bytes.NewReader(defaultsTOML))
	if err != nil {
		return errors.Errorf("built-in defaults: %w", err)
	}

	path := a.configPath
	if path == "" {
		path = os.Getenv(loader.DefaultEnvPrefix + "CONFIG")
	}
	a.cfg = config.New(
		config.WithDefaults(defaults),
		config.WithFile(path),
		config.WithWatcher(watch),
	)
	if err := a.cfg.Load(cmd.Context()); err != nil {
		return err
	}

	overrides := []struct {
		flag  string
		path  string
		value any
	}{
		{"palette-size", "palette.size", a.paletteSize},
		{"theme", "theme.name", a.theme},
		{"log-level", "logging.level", a.logLevel},
		{"log-file", "logging.file", a.logFile},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := a.cfg.Set(o.path, o.value); err != nil {
			return errors.Errorf("--%s: %w", o.flag, err)
		}
	}

	lc := a.cfg.Logging()
	out := cmd.ErrOrStderr()
	if quiet && lc.File == "" {
		out = io.Discard
	}
	a.logger, a.closer, err = logging.New(logging.Config{
		Level:   lc.Level,
		Output:  out,
		File:    lc.File,
		Console: lc.Console,
	})
	if err != nil {
		return err
	}
	a.cfg.SetLogger(a.logger)
	cmd.SetContext(a.logger.WithContext(cmd.Context()))

	a.logger.Debug().
		Str("config", a.cfg.Path()).
		Int("languages", len(a.cfg.Languages())).
		Msg("configuration ready")
	return nil
}

func (a *app) close() {
	if a.cfg != nil {
		if err := a.cfg.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing configuration")
		}
	}
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// resolveTheme returns the configured theme. A configured foreground
// overrides the theme's and is registered under the theme's name so the
// viewer sees it too.
func (a *app) resolveTheme() *highlight.Theme {
	tc := a.cfg.Theme()
	theme, ok := a.themes.Get(tc.Name)
	if !ok {
		a.logger.Warn().Str("theme", tc.Name).Msg("unknown theme, using default")
		theme = highlight.DefaultTheme()
	}
	if tc.Foreground == "" {
		return theme
	}
	fg, err := core.ColorFromHex(tc.Foreground)
	if err != nil {
		a.logger.Warn().Err(err).Str("foreground", tc.Foreground).Msg("ignoring theme foreground")
		return theme
	}
	custom := *theme
	custom.Foreground = fg
	a.themes.Register(&custom)
	return &custom
}

// languageFor picks the language of path: the explicit flag, then the
// configured extensions, then the built-in guess.
func (a *app) languageFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if lang, ok := a.cfg.LanguageForFile(path); ok {
		return lang
	}
	return buffer.LanguageForPath(path)
}

func (a *app) openBuffer(path, lang string) (*buffer.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	b, err := buffer.NewFromReader(f, buffer.WithLanguage(a.languageFor(path, lang)))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return b, nil
}
