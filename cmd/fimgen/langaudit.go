package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/crush-labs/fimgen/internal/langs"
)

var langAuditCmd = &cobra.Command{
	Use:   "lang-audit",
	Short: "List registered languages and their tree-sitter/regex-fallback status",
	RunE:  runLangAudit,
}

func runLangAudit(cmd *cobra.Command, _ []string) error {
	registry := langs.Default()
	names := append([]string{}, registry.Names()...)
	sort.Strings(names)

	for _, name := range names {
		lang, err := registry.Get(name)
		if err != nil {
			return err
		}
		mode := "regex fallback"
		if lang.HasTreeSitter() {
			mode = "tree-sitter (" + lang.TreeSitterName() + ")"
		}
		cmd.Printf("%-12s %-28s extensions=%v\n", name, mode, lang.Extensions())
	}
	return nil
}
