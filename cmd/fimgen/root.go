package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fimgen",
	Short: "Generate fill-in-the-middle training datasets from a codebase",
	Long: "fimgen walks a project, extracts candidate completion spans via " +
		"tree-sitter and regex fallbacks, assembles them into prefix/middle/" +
		"suffix training examples, and emits JSONL datasets for FIM fine-tuning.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(langAuditCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}
