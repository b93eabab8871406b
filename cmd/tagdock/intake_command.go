package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIntakeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "intake <files...>",
		Short: "Submit a batch of documents for intake",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			outcome, err := client.intake(cmd.Context(), args)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, outcome)
			}

			out := cmd.OutOrStdout()
			for _, item := range outcome.Uploaded {
				fmt.Fprintf(out, "uploaded  %s -> tag %s (%s)\n", item.FileName, item.TagID, item.Location)
			}
			for _, item := range outcome.Duplicates {
				fmt.Fprintf(out, "duplicate %s -> tag %s already has this content (%s)\n",
					item.FileName, item.TagID, item.ExistingLocation)
			}
			for _, item := range outcome.Failed {
				fmt.Fprintf(out, "failed    %s: %s\n", item.FileName, item.Reason)
			}
			fmt.Fprintf(out, "%d uploaded, %d duplicates, %d failed\n",
				len(outcome.Uploaded), len(outcome.Duplicates), len(outcome.Failed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
