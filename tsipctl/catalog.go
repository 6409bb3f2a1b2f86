package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jrockway/tsip/tsip"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the packet types with a known layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIZE\tFORMAT\tNAME")
			for _, d := range tsip.Default.Definitions() {
				l, err := tsip.ParseLayout(d.Format)
				if err != nil {
					return fmt.Errorf("%v: %w", d.ID, err)
				}
				format := d.Format
				if format == "" {
					format = "-"
				}
				fmt.Fprintf(w, "%v\t%d\t%s\t%s\n", d.ID, l.Size(), format, d.Name)
			}
			return w.Flush()
		},
	}
}
