// Package pipeline implements the Pipeline Orchestrator (spec component
// M): a single-threaded, per-file loop that discovers files, generates
// spans, assembles examples, attaches cross-file/BM25 context, then
// quality-filters, rebalances, and curriculum-sorts the whole dataset.
package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/crush-labs/fimgen/internal/assemble"
	"github.com/crush-labs/fimgen/internal/bm25"
	"github.com/crush-labs/fimgen/internal/crossfile"
	"github.com/crush-labs/fimgen/internal/discover"
	"github.com/crush-labs/fimgen/internal/filter"
	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
	"github.com/crush-labs/fimgen/internal/rebalance"
	"github.com/crush-labs/fimgen/internal/span"
	"github.com/crush-labs/fimgen/internal/treesitter"
)

// Options configures a single end-to-end generation run.
type Options struct {
	Language         langs.Language
	IncludePaths     []string
	ExcludeGlobs     []string
	TestedOnly       bool
	MaxMiddleLines   int
	MaxTotalChars    int
	Seed             int64
	CrossFileContext bool
	BM25Context      bool
	ASTFIM           bool
	QualityFilter    bool
	Curriculum       bool
	CurriculumTopPct float64
}

// Result is everything a run produced, ready for output-layer emission.
type Result struct {
	Examples     []model.FIMExample
	RejectedKind map[model.SpanKind]int
	TotalSpans   int
}

// Run discovers files under root, generates and assembles examples for
// each, then filters/rebalances/sorts the accumulated set. Per-file
// errors are logged and skip that file; no partial record is ever
// emitted (spec §7).
func Run(ctx context.Context, logger *slog.Logger, root string, opts Options) (Result, error) {
	files, err := discover.Walk(root, opts.Language, discover.Options{TestedOnly: opts.TestedOnly, ExcludeGlobs: opts.ExcludeGlobs})
	if err != nil {
		return Result{}, err
	}

	pool := files
	if len(opts.IncludePaths) > 0 {
		extra, err := discover.ContextPool(opts.IncludePaths, opts.Language)
		if err != nil {
			logger.Warn("failed to build include-path context pool", "err", err)
		} else {
			pool = append(append([]discover.File{}, files...), extra...)
		}
	}

	var bmIndex *bm25.Index
	if opts.BM25Context {
		bmIndex = bm25.Build(pool)
	}

	manager := treesitter.NewManager()
	defer manager.Close()

	var examples []model.FIMExample
	totalSpans := 0

	for i, f := range files {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			logger.Warn("skipping file: read failed", "path", f.RelPath, "err", err)
			continue
		}
		source := string(content)
		rng := rand.New(rand.NewSource(opts.Seed + int64(i)))

		var tree *tree_sitter.Tree
		if opts.Language.HasTreeSitter() {
			tree, err = manager.Parse(ctx, opts.Language.TreeSitterName(), f.RelPath, content)
			if err != nil {
				logger.Warn("parse failed, falling back to regex spans", "path", f.RelPath, "err", err)
			}
		}

		spans := generateSpans(tree, content, opts.Language, opts.MaxMiddleLines, opts.ASTFIM, rng)
		totalSpans += len(spans)
		if len(spans) == 0 {
			continue
		}

		var crossFileCombined, dependencyOnly string
		if opts.CrossFileContext {
			depOutcome := crossfile.Build(f, pool, source, opts.Language, opts.MaxTotalChars, false)
			dependencyOnly = depOutcome.Value

			combined := dependencyOnly
			if opts.BM25Context && bmIndex != nil {
				query := assemble.BM25Query(source)
				bmOutcome := bm25.Retrieve(query, "", bmIndex, f.RelPath, opts.MaxTotalChars, 5, false)
				combined = bmOutcome.Value + dependencyOnly
			}
			crossFileCombined = combined
		}

		complexity := complexityScore(tree, content, opts.Language)

		for _, sp := range spans {
			ex, ok := assemble.Assemble(sp, source, assemble.Options{
				MaxTotalChars:  opts.MaxTotalChars,
				MaxMiddleLines: opts.MaxMiddleLines,
			})
			if !ok {
				continue
			}
			ex.FilePath = f.RelPath
			ex.TotalLines = strings.Count(source, "\n") + 1
			ex.ComplexityScore = complexity

			if opts.CrossFileContext {
				ex = assemble.AttachContext(ex, crossFileCombined, dependencyOnly, opts.MaxTotalChars)
			}

			examples = append(examples, ex)
		}

		if tree != nil {
			tree.Close()
		}
	}

	res := Result{Examples: examples, TotalSpans: totalSpans, RejectedKind: map[model.SpanKind]int{}}

	if opts.QualityFilter {
		filtered := filter.Filter(examples)
		res.Examples = filtered.Kept
		res.RejectedKind = filtered.RejectedKind
		logger.Info("quality filter applied", "kept", len(filtered.Kept), "rejected", len(filtered.Rejected))
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	res.Examples = rebalance.Rebalance(res.Examples, rng)

	if opts.Curriculum {
		res.Examples = rebalance.Curriculum(res.Examples, opts.CurriculumTopPct)
	}

	return res, nil
}

func generateSpans(tree *tree_sitter.Tree, content []byte, lang langs.Language, maxMiddleLines int, astFIM bool, rng *rand.Rand) []model.CodeSpan {
	var spans []model.CodeSpan

	if tree != nil {
		if astFIM {
			spans = append(spans, span.GenerateASTSpans(tree, content, lang, maxMiddleLines, rng)...)
		}
		spans = append(spans, span.GenerateDevSpans(tree, content, lang, rng)...)
	} else {
		spans = append(spans, langs.RegexFallbackSpans(lang, string(content), rng)...)
	}

	spans = append(spans, span.GenerateCharSpans(string(content), rng)...)
	return spans
}

var reIdentifier = regexp.MustCompile(`\b[a-zA-Z_]\w*\b`)

// complexityScore mirrors the reference generator's identifier-density
// heuristic: identifier count per 100 source bytes, via AST identifier
// node types when a tree is available, else a regex approximation.
func complexityScore(tree *tree_sitter.Tree, source []byte, lang langs.Language) float64 {
	if len(source) == 0 {
		return 0
	}
	if tree == nil {
		matches := reIdentifier.FindAll(source, -1)
		return float64(len(matches)) / float64(len(source)) * 100
	}

	identTypes := lang.ASTIdentNodeTypes()
	count := 0
	cursor := tree.Walk()
	defer cursor.Close()

	visit := true
	for {
		node := cursor.Node()
		if visit {
			if _, ok := identTypes[node.Kind()]; ok {
				count++
			}
			if cursor.GotoFirstChild() {
				continue
			}
		}
		if cursor.GotoNextSibling() {
			visit = true
			continue
		}
		if !cursor.GotoParent() {
			break
		}
		visit = false
	}

	return float64(count) / float64(len(source)) * 100
}
