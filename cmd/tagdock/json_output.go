package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON renders v as indented JSON on the command's output stream.
func writeJSON(cmd *cobra.Command, v any) error {
	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	return out.Encode(v)
}
