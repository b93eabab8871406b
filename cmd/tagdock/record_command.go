package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagdock/internal/api"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "record <tag>",
		Short: "Show the document record for a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tagID := strings.TrimSpace(args[0])
			if tagID == "" {
				return fmt.Errorf("tag identifier required")
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			var record api.DocumentRecord
			if err := client.getJSON(cmd.Context(), "/api/records/"+tagID, &record); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, record)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tag: %s\n", record.TagID)
			if record.CreatedAt != "" {
				fmt.Fprintf(out, "Created: %s\n", record.CreatedAt)
			}
			if len(record.Copies) == 0 {
				fmt.Fprintln(out, "No copies stored")
				return nil
			}

			rows := make([][]string, 0, len(record.Copies))
			for i, c := range record.Copies {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					c.FileName,
					c.Fingerprint,
					c.Location,
					c.UploadedAt,
				})
			}
			printTable(out, []string{"#", "File", "Fingerprint", "Location", "Uploaded"}, rows,
				[]columnAlignment{alignRight})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
