package main

import (
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dshills/idhue/internal/colorid"
	"github.com/dshills/idhue/internal/renderer/ansi"
	"github.com/dshills/idhue/internal/renderer/highlight"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		language   string
		syntax     bool
		background bool
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print FILE with colored identifiers",
		Long: `Print FILE to standard output with every identifier colored by its
spelling. Colors are downgraded to what the terminal supports and dropped
when the output is not a terminal, unless CLICOLOR_FORCE is set.

Examples:
  idhue render main.go
  idhue render --syntax --theme monokai app.ts | less -R`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false, false); err != nil {
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

			if h, ok := highlight.DefaultRegistry().Get(buf.Language()); ok {
				highlight.NewDecorator(h).Decorate(buf)
			}

			s := colorid.New(colorid.NewBufferHost(buf),
				colorid.WithRules(rules),
				colorid.WithLanguage(buf.Language()),
				colorid.WithPaletteOptions(a.cfg.Palette().Options(0)),
			)
			if _, err := s.RegeneratePalette(theme.Foreground); err != nil {
				return err
			}
			if res := s.Enable(cmd.Context()); res != colorid.RefreshCompleted {
				a.logger.Warn().
					Str("file", args[0]).
					Str("language", buf.Language()).
					Stringer("result", res).
					Msg("identifiers not colored")
			}
			defer s.Disable()
			s.Colorize(0, buf.Len())

			a.logger.Debug().
				Str("file", args[0]).
				Int("identifiers", s.Registry().Len()).
				Dur("took", s.Stats().LastRefresh).
				Msg("rendered")

			out := termenv.NewOutput(cmd.OutOrStdout())
			w := ansi.NewWriter(out, theme, ansi.Options{Syntax: syntax, Background: background})
			return w.Write(buf, 0, buf.Len())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&language, "language", "l", "", "language of FILE (default: from its extension)")
	f.BoolVar(&syntax, "syntax", false, "also style comments, strings and keywords")
	f.BoolVar(&background, "background", false, "paint the theme background")
	return cmd
}
