package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crush-labs/fimgen/internal/config"
	"github.com/crush-labs/fimgen/internal/fimformat"
	"github.com/crush-labs/fimgen/internal/model"
	"github.com/crush-labs/fimgen/internal/pipeline"
)

// trainingRecord is the exact JSON shape emitted to train.jsonl/val.jsonl.
type trainingRecord struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Prefix          string  `json:"prefix"`
	Middle          string  `json:"middle"`
	Suffix          string  `json:"suffix"`
	FilePath        string  `json:"filepath"`
	SpanKind        string  `json:"span_kind"`
	SpanName        string  `json:"span_name"`
	MiddleLines     int     `json:"middle_lines"`
	ComplexityScore float64 `json:"complexity_score"`
}

func toRecord(ex model.FIMExample, family fimformat.Family) (trainingRecord, error) {
	text, err := fimformat.Format(ex, family)
	if err != nil {
		return trainingRecord{}, err
	}
	return trainingRecord{
		ID:              ex.ID,
		Text:            text,
		Prefix:          ex.FullPrefix(),
		Middle:          ex.Middle,
		Suffix:          ex.Suffix,
		FilePath:        ex.FilePath,
		SpanKind:        string(ex.SpanKind),
		SpanName:        ex.SpanName,
		MiddleLines:     ex.MiddleLines,
		ComplexityScore: ex.ComplexityScore,
	}, nil
}

func printDatasetStats(cmd *cobra.Command, res pipeline.Result) {
	if len(res.Examples) == 0 {
		cmd.Println("\n  No examples generated!")
		return
	}

	kinds := make(map[model.SpanKind]int)
	for _, ex := range res.Examples {
		kinds[ex.SpanKind]++
	}

	var rejectedTotal int
	for _, c := range res.RejectedKind {
		rejectedTotal += c
	}

	cmd.Println("\n  Dataset Statistics:")
	cmd.Printf("  Total examples:        %d\n", len(res.Examples))
	if rejectedTotal > 0 {
		cmd.Printf("  Quality-filtered out:  %d\n", rejectedTotal)
	}
	cmd.Println("  Span types:")
	for kind, count := range kinds {
		cmd.Printf("    %-25s %6d\n", kind, count)
	}
}

func previewExamples(cmd *cobra.Command, res pipeline.Result, opts config.Options, rng *rand.Rand) error {
	cmd.Printf("\n%s\n", strings.Repeat("=", 60))
	cmd.Printf("PREVIEW (%d examples)\n", opts.Preview)
	cmd.Printf("%s\n", strings.Repeat("=", 60))

	n := opts.Preview
	if n > len(res.Examples) {
		n = len(res.Examples)
	}
	sample := sampleExamples(res.Examples, n, rng)

	for _, ex := range sample {
		cmd.Printf("\n--- %s [%s: %s] complexity=%.2f ---\n", ex.FilePath, ex.SpanKind, ex.SpanName, ex.ComplexityScore)
		cmd.Printf("Middle (%d lines):\n", ex.MiddleLines)
		lines := strings.Split(ex.Middle, "\n")
		shown := lines
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, l := range shown {
			cmd.Printf("  | %s\n", l)
		}
		if len(lines) > 10 {
			cmd.Printf("  | ... (%d more lines)\n", len(lines)-10)
		}
		hasXF := "no"
		if ex.CrossFileContext != "" {
			hasXF = "yes"
		}
		cmd.Printf("Cross-file context: %s (%d chars)\n", hasXF, len(ex.CrossFileContext))
	}
	return nil
}

func sampleExamples(examples []model.FIMExample, n int, rng *rand.Rand) []model.FIMExample {
	shuffled := make([]model.FIMExample, len(examples))
	copy(shuffled, examples)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func writeOutput(cmd *cobra.Command, res pipeline.Result, opts config.Options) error {
	examples := make([]model.FIMExample, len(res.Examples))
	copy(examples, res.Examples)

	rng := rand.New(rand.NewSource(opts.Seed))
	if !opts.Curriculum {
		rng.Shuffle(len(examples), func(i, j int) { examples[i], examples[j] = examples[j], examples[i] })
	}

	valSize := int(float64(len(examples)) * opts.ValSplit)
	valExamples := examples[:valSize]
	trainExamples := examples[valSize:]

	cmd.Printf("\n  Train: %d examples\n", len(trainExamples))
	cmd.Printf("  Val:   %d examples\n", len(valExamples))

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", opts.Output, err)
	}

	family := fimformat.Family(opts.BaseModel)
	trainPath := filepath.Join(opts.Output, "train.jsonl")
	valPath := filepath.Join(opts.Output, "val.jsonl")

	if err := writeJSONL(trainPath, trainExamples, family); err != nil {
		return err
	}
	cmd.Printf("  Wrote %s (%d examples)\n", trainPath, len(trainExamples))

	if err := writeJSONL(valPath, valExamples, family); err != nil {
		return err
	}
	cmd.Printf("  Wrote %s (%d examples)\n", valPath, len(valExamples))

	metaPath := filepath.Join(opts.Output, "metadata.json")
	if err := writeMetadata(metaPath, opts, trainExamples, valExamples, res); err != nil {
		return err
	}
	cmd.Printf("  Wrote %s\n", metaPath)

	return nil
}

func writeJSONL(path string, examples []model.FIMExample, family fimformat.Family) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, ex := range examples {
		rec, err := toRecord(ex, family)
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("output: write %s: %w", path, err)
		}
	}
	return nil
}

type complexityStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type metadata struct {
	BaseModel             config.BaseModel `json:"base_model"`
	ProjectRoot           string           `json:"project_root"`
	CrossFileContext      bool             `json:"cross_file_context"`
	BM25Context           bool             `json:"bm25_context"`
	ASTFIM                bool             `json:"ast_fim"`
	QualityFilter         bool             `json:"quality_filter"`
	QualityFilterRejected int              `json:"quality_filter_rejected"`
	Curriculum            bool             `json:"curriculum"`
	CurriculumTopPct      float64          `json:"curriculum_top_pct"`
	TestedOnly            bool             `json:"tested_only"`
	MaxMiddleLines        int              `json:"max_middle_lines"`
	MaxTotalChars         int              `json:"max_total_chars"`
	TrainExamples         int              `json:"train_examples"`
	ValExamples           int              `json:"val_examples"`
	Seed                  int64            `json:"seed"`
	SpanTypeDistribution  map[string]int   `json:"span_type_distribution"`
	ComplexityScoreStats  complexityStats  `json:"complexity_score_stats"`
}

func writeMetadata(path string, opts config.Options, train, val []model.FIMExample, res pipeline.Result) error {
	all := append(append([]model.FIMExample{}, train...), val...)

	var rejectedTotal int
	for _, c := range res.RejectedKind {
		rejectedTotal += c
	}

	dist := make(map[string]int)
	var scores []float64
	for _, ex := range all {
		dist[string(ex.SpanKind)]++
		if ex.ComplexityScore > 0 {
			scores = append(scores, ex.ComplexityScore)
		}
	}

	m := metadata{
		BaseModel:             opts.BaseModel,
		ProjectRoot:           opts.ProjectRoot,
		CrossFileContext:      opts.CrossFileContext,
		BM25Context:           opts.BM25Context,
		ASTFIM:                opts.ASTFIM,
		QualityFilter:         opts.QualityFilter,
		QualityFilterRejected: rejectedTotal,
		Curriculum:            opts.Curriculum,
		CurriculumTopPct:      opts.CurriculumTopPct,
		TestedOnly:            opts.TestedOnly,
		MaxMiddleLines:        opts.MaxMiddleLines,
		MaxTotalChars:         opts.MaxTotalChars,
		TrainExamples:         len(train),
		ValExamples:           len(val),
		Seed:                  opts.Seed,
		SpanTypeDistribution:  dist,
		ComplexityScoreStats:  complexityStatsOf(scores),
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func complexityStatsOf(scores []float64) complexityStats {
	if len(scores) == 0 {
		return complexityStats{}
	}
	sorted := append([]float64{}, scores...)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}
	return complexityStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: sum / float64(len(sorted)),
	}
}
