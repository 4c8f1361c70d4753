package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crush-labs/fimgen/internal/contextrpc"
	"github.com/crush-labs/fimgen/internal/langs"
)

var serveCmd = &cobra.Command{
	Use:   "serve PROJECT_ROOT",
	Short: "Run the line-delimited JSON-RPC context service over stdin/stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("language", "php", "source language to scan")
	serveCmd.Flags().Int("max-tokens", 2048, "token budget for cross-file context")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	langName, _ := flags.GetString("language")
	maxTokens, _ := flags.GetInt("max-tokens")

	registry := langs.Default()
	lang, err := registry.Get(langName)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return contextrpc.Serve(logger, os.Stdin, os.Stdout, contextrpc.ServeOptions{
		Root:      args[0],
		Language:  lang,
		MaxTokens: maxTokens,
	})
}
