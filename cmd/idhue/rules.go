package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/idhue/internal/lexrule"
)

func newRulesCommand(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the configured language rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false, false); err != nil {
				return err
			}
			defer a.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LANGUAGE\tEXTENSIONS\tTAGS\tSTATUS")
			for _, l := range a.cfg.Languages() {
				status := "ok"
				if _, err := l.Rule(); err != nil {
					status = "invalid: " + err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Name, strings.Join(l.Extensions, " "), formatTags(l.Tags), status)
				if verbose {
					fmt.Fprintf(tw, "\tidentifier\t%s\t\n", l.Identifier)
					if l.Context != "" {
						fmt.Fprintf(tw, "\tcontext\t%s\t\n", l.Context)
					}
					if l.Exclude != "" {
						fmt.Fprintf(tw, "\texclude\t%s\t\n", l.Exclude)
					}
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the rule patterns")
	return cmd
}

func formatTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		if t == lexrule.Undecorated {
			t = "(undecorated)"
		}
		out[i] = t
	}
	return strings.Join(out, ",")
}
