package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/idhue/internal/config"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/renderer"
	"github.com/dshills/idhue/internal/renderer/backend"
	"github.com/dshills/idhue/internal/renderer/highlight"
	"github.com/dshills/idhue/internal/viewer"
)

func newViewCommand(a *app) *cobra.Command {
	var (
		language    string
		lineNumbers bool
		tabWidth    int
	)

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Open FILE in the terminal viewer",
		Long: `Open FILE in a terminal viewer that recolors identifiers while you
scroll and type. Identifiers are rescanned once typing pauses and
periodically in the background. Edits are not saved.

Keys:
  arrows, PgUp, PgDn, Home, End   move
  Ctrl-R                          refresh identifiers now
  Ctrl-T                          next theme
  Ctrl-P                          toggle identifier colors
  Ctrl-Z, Ctrl-Y                  undo, redo
  Ctrl-L                          redraw
  Ctrl-Q, Ctrl-C                  quit

The config file is watched; saving it reloads the language rules, the
idle delay, the palette and the theme. The periodic interval is read once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true, true); err != nil {
				return err
			}
			defer a.close()

			rules, err := a.cfg.Rules()
			if err != nil {
				return err
			}
			buf, err := a.openBuffer(args[0], language)
			if err != nil {
				return err
			}
			theme := a.resolveTheme()

			rc := a.cfg.Refresh()
			interval := rc.Interval
			if !rc.Periodic {
				interval = 0
			}

			ropts := renderer.DefaultOptions()
			ropts.ShowLineNumbers = lineNumbers
			ropts.TabWidth = tabWidth

			term, err := backend.NewTerminal()
			if err != nil {
				return err
			}

			v := viewer.New(term, buf, viewer.Config{
				Name:           filepath.Base(args[0]),
				Rules:          rules,
				Palettes:       palette.NewStore(nil),
				PaletteOptions: a.cfg.Palette().Options(0),
				Interval:       interval,
				IdleDelay:      rc.IdleDelay,
				Themes:         a.themes,
				Theme:          theme.Name,
				Highlighters:   highlight.DefaultRegistry(),
				Renderer:       ropts,
				Logger:         a.logger,
			})

			a.cfg.OnChange(func(c *config.Config) {
				opts := c.Palette().Options(0)
				name := c.Theme().Name
				idle := c.Refresh().IdleDelay
				rules, err := c.Rules()
				if err != nil {
					a.logger.Warn().Err(err).Msg("keeping previous language rules")
				}
				v.Post(func() {
					if rules != nil {
						v.SetRules(rules)
					}
					v.SetIdleDelay(idle)
					v.RegeneratePalette(opts)
					if name == v.Theme().Name {
						return
					}
					if err := v.SetTheme(name); err != nil {
						a.logger.Warn().Err(err).Msg("theme change ignored")
					}
				})
			})

			return v.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&language, "language", "l", "", "language of FILE (default: from its extension)")
	f.BoolVar(&lineNumbers, "line-numbers", true, "show line numbers")
	f.IntVar(&tabWidth, "tab-width", 4, "columns per tab stop")
	return cmd
}
