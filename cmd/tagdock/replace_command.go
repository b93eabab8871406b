package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagdock/internal/api"
)

func newReplaceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <tag> <old-fingerprint> <url>",
		Short: "Replace one stored copy with content fetched from a URL",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.ReplaceRequest{
				TagID:          strings.TrimSpace(args[0]),
				OldFingerprint: strings.TrimSpace(args[1]),
				NewContentURL:  strings.TrimSpace(args[2]),
			}

			var resp api.ReplaceResponse
			if err := client.postJSON(cmd.Context(), "/api/replace", req, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replaced: new location %s\n", resp.Location)
			return nil
		},
	}
}
