package main

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the built-in defaults, the
config file, IDHUE_ environment variables and command line flags.

Examples:
  idhue config
  idhue config --format yaml > ~/.config/idhue.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false, false); err != nil {
				return err
			}
			defer a.close()

			merged := a.cfg.Merged()
			var (
				out []byte
				err error
			)
			switch format {
			case "toml":
				out, err = toml.Marshal(merged)
			case "yaml":
				out, err = yaml.Marshal(merged)
			default:
				return errors.Errorf("unknown format %q: want toml or yaml", format)
			}
			if err != nil {
				return errors.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml or yaml")
	return cmd
}
