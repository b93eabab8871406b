package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagdock/internal/api"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tag identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTagsGenerateCommand(ctx))
	return cmd
}

func newTagsGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <count>",
		Short: "Mint tag identifiers and pre-create their records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || count < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			var resp api.GenerateTagsResponse
			if err := client.postJSON(cmd.Context(), "/api/tags", api.GenerateTagsRequest{Count: count}, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range resp.TagIDs {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}
