package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reportverify-service/service/matcher"
)

func (c *CLI) newMatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "match <filename>...",
		Short: "依档名推断报表种类",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILENAME\tREPORT_TYPE\tMATCHED\tTIER")
			for _, name := range args {
				res := matcher.MatchDetail(name, c.registry.TypeNames())
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", name, res.Key, res.Matched, res.Tier)
			}
			return w.Flush()
		},
	}
}
