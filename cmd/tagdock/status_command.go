package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagdock/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and external tool availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var status api.DaemonStatus
			if err := client.getJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running: %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "PID: %d\n", status.PID)
			fmt.Fprintf(out, "Records DB: %s\n", status.RecordsDB)
			fmt.Fprintf(out, "Lock file: %s\n", status.LockFilePath)

			rows := make([][]string, 0, len(status.Dependencies))
			for _, dep := range status.Dependencies {
				detail := dep.Detail
				if dep.Available {
					detail = dep.Command
				}
				rows = append(rows, []string{dep.Name, yesNo(dep.Available), detail})
			}
			printTable(out, []string{"Dependency", "Available", "Detail"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
