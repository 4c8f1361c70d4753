package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/crush-labs/fimgen/internal/config"
	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate PROJECT_ROOT",
	Short: "Generate a FIM training dataset from a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.String("output", "dataset/", "output directory")
	flags.String("language", "php", "source language to scan")
	flags.String("base-model", string(config.ModelQwen25Coder), "target model family for FIM tokens")
	flags.Bool("cross-file-context", false, "prepend related-file signatures to each example")
	flags.StringArray("include-path", nil, "additional directory to pull cross-file context from (repeatable)")
	flags.StringArray("exclude", nil, "doublestar glob to exclude from discovery, e.g. **/vendor/** (repeatable)")
	flags.Bool("tested-only", false, "only scan files with a corresponding test file")
	flags.Int("max-middle-lines", 30, "maximum middle-span line count")
	flags.Int("max-total-chars", 8192, "maximum total characters per example")
	flags.Float64("val-split", 0.1, "fraction of examples held out for validation")
	flags.Int64("seed", 42, "RNG seed for reproducibility")
	flags.Int("preview", 0, "preview N examples and exit without writing files")
	flags.Bool("ast-fim", true, "use tree-sitter AST span generation when available")
	flags.Bool("bm25-context", false, "add BM25-retrieved cross-file snippets to context")
	flags.Bool("curriculum", false, "sort the dataset by complexity score descending")
	flags.Float64("curriculum-top-pct", 100, "percentage of the curriculum-sorted dataset to retain")
	flags.Bool("quality-filter", true, "apply the six-rule quality filter")
	flags.String("config", "", "optional YAML config file, merged under CLI flags")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	opts := config.DefaultOptions()
	opts.ProjectRoot = args[0]
	opts.Output, _ = flags.GetString("output")
	opts.Language, _ = flags.GetString("language")
	baseModel, _ := flags.GetString("base-model")
	opts.BaseModel = config.BaseModel(baseModel)
	opts.CrossFileContext, _ = flags.GetBool("cross-file-context")
	opts.IncludePaths, _ = flags.GetStringArray("include-path")
	opts.ExcludeGlobs, _ = flags.GetStringArray("exclude")
	opts.TestedOnly, _ = flags.GetBool("tested-only")
	opts.MaxMiddleLines, _ = flags.GetInt("max-middle-lines")
	opts.MaxTotalChars, _ = flags.GetInt("max-total-chars")
	opts.ValSplit, _ = flags.GetFloat64("val-split")
	opts.Seed, _ = flags.GetInt64("seed")
	opts.Preview, _ = flags.GetInt("preview")
	opts.ASTFIM, _ = flags.GetBool("ast-fim")
	opts.BM25Context, _ = flags.GetBool("bm25-context")
	opts.Curriculum, _ = flags.GetBool("curriculum")
	opts.CurriculumTopPct, _ = flags.GetFloat64("curriculum-top-pct")
	opts.QualityFilter, _ = flags.GetBool("quality-filter")

	if configPath, _ := flags.GetString("config"); configPath != "" {
		merged, err := config.LoadYAML(configPath, opts)
		if err != nil {
			return err
		}
		opts = merged
	}

	registry := langs.Default()
	known := make(map[string]struct{})
	for _, name := range registry.Names() {
		known[name] = struct{}{}
	}
	if err := opts.Validate(known); err != nil {
		return err
	}

	lang, err := registry.Get(opts.Language)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cmd.Printf("Project root: %s\n", opts.ProjectRoot)
	cmd.Printf("Base model:   %s\n", opts.BaseModel)
	if opts.ASTFIM && lang.HasTreeSitter() {
		cmd.Println("AST-FIM:      enabled")
	} else {
		cmd.Println("AST-FIM:      disabled (regex fallback)")
	}
	if opts.BM25Context {
		cmd.Println("BM25 context: enabled")
	} else {
		cmd.Println("BM25 context: disabled")
	}

	res, err := pipeline.Run(context.Background(), logger, opts.ProjectRoot, pipeline.Options{
		Language:         lang,
		IncludePaths:     opts.IncludePaths,
		ExcludeGlobs:     opts.ExcludeGlobs,
		TestedOnly:       opts.TestedOnly,
		MaxMiddleLines:   opts.MaxMiddleLines,
		MaxTotalChars:    opts.MaxTotalChars,
		Seed:             opts.Seed,
		CrossFileContext: opts.CrossFileContext,
		BM25Context:      opts.BM25Context,
		ASTFIM:           opts.ASTFIM,
		QualityFilter:    opts.QualityFilter,
		Curriculum:       opts.Curriculum,
		CurriculumTopPct: opts.CurriculumTopPct,
	})
	if err != nil {
		return err
	}

	printDatasetStats(cmd, res)

	if opts.Preview > 0 {
		return previewExamples(cmd, res, opts, rand.New(rand.NewSource(opts.Seed)))
	}

	return writeOutput(cmd, res, opts)
}
