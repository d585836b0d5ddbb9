package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ardnew/picobeat/heartbeat"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List heartbeat variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tALIASES\tWARM-UP\tINTERVAL\tCOUNTER\tDESCRIPTION")
			for _, v := range heartbeat.Variants() {
				aliases := strings.Join(v.Aliases, ",")
				if aliases == "" {
					aliases = "-"
				}
				fmt.Fprintf(writer, "%s\t%s\t%v\t%v\t%s\t%s\n",
					v.Name, aliases, v.WarmUp, v.Interval, v.Width, v.Description)
			}
			return writer.Flush()
		},
	}
}
