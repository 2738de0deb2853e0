package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
)

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List available QA datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := dataset.DefaultRegistry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, name := range registry.Names() {
				p, err := registry.New(name, dataset.Options{})
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, p.Description())
			}
			return tw.Flush()
		},
	}
}
