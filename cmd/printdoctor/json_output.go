package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// jsonOutput backs a command's --json flag.
type jsonOutput struct {
	enabled bool
}

func addJSONFlag(cmd *cobra.Command) *jsonOutput {
	out := &jsonOutput{}
	cmd.Flags().BoolVar(&out.enabled, "json", false, "Output as JSON")
	return out
}

// write encodes v as indented JSON to the command's stdout.
func (o *jsonOutput) write(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
