package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagdock/internal/api"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record store totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var stats api.StatsResponse
			if err := client.getJSON(cmd.Context(), "/api/stats", &stats); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tags: %d\n", stats.Tags)
			fmt.Fprintf(out, "Copies: %d\n", stats.Copies)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
