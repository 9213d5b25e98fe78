package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/renderer/ansi"
	"github.com/dshills/idhue/internal/renderer/core"
)

func newPaletteCommand(a *app) *cobra.Command {
	var foreground string

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Show the generated identifier palette",
		Long: `Show the identifier palette generated for the current theme.

The palette lightness follows the theme foreground, clamped to the
configured luminance range. Use --foreground to preview another color.

Examples:
  idhue palette
  idhue palette --palette-size 16
  idhue palette --foreground '#202020'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false, false); err != nil {
				return err
			}
			defer a.close()

			fg := a.resolveTheme().Foreground
			if foreground != "" {
				c, err := core.ColorFromHex(foreground)
				if err != nil {
					return err
				}
				fg = c
			}

			lum, fromFg := palette.LuminanceOf(fg)
			p, err := palette.GenerateWith(a.cfg.Palette().Options(lum))
			if err != nil {
				return err
			}
			a.logger.Debug().
				Float64("luminance", lum).
				Bool("from_foreground", fromFg).
				Int("size", p.Len()).
				Msg("palette generated")

			out := termenv.NewOutput(cmd.OutOrStdout())
			fmt.Fprintf(out, "%d colors, lightness %.2f\n", p.Len(), p.Lightness())
			for i, c := range p.Colors() {
				label := fmt.Sprintf("%2d  %s  L=%.3f", i, c.Hex(), c.Lightness())
				fmt.Fprintln(out, ansi.Swatch(out, c.Core(), 4, label))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&foreground, "foreground", "", "derive lightness from this hex color instead of the theme")
	return cmd
}
