package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [template]",
	Short: "Compile a custom template and print its parts",
	Long: `Prints the compiled form of a template as it is persisted in
template_parts, together with the token keys it references.

Example:
  burnin tokens "Scene %Scene  Take %Take %Camera#"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiled := template.Compile(strings.Join(args, " "))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Parts  template.Compiled `json:"template_parts"`
			Tokens []string          `json:"custom_tokens"`
		}{compiled, compiled.Tokens})
	},
}
