package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newTypesCommand() *cobra.Command {
	var rules bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "列出报表种类与检查步骤",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range c.registry.Types() {
				schema, err := c.registry.Lookup(t)
				if err != nil {
					return err
				}
				steps := make([]string, len(schema.Steps))
				for i, s := range schema.Steps {
					steps[i] = string(s)
				}
				fmt.Fprintf(out, "%s\t%s\n", t, strings.Join(steps, ","))
				if !rules {
					continue
				}
				text, err := c.registry.Rules(t)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rules, "rules", false, "同时输出各步骤规则说明")
	return cmd
}
