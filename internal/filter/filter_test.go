package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/model"
)

func TestFilterRejectsShortMiddle(t *testing.T) {
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Prefix: "a", Middle: "x", Suffix: "b"}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
	require.Len(t, res.Rejected, 1)
	require.Equal(t, 1, res.RejectedKind[model.KindASTSingleNode])
}

func TestFilterRejectsImportOnlyLine(t *testing.T) {
	ex := model.FIMExample{
		SpanKind: model.KindRegexLines,
		Prefix:   "<?php\n",
		Middle:   strings.Repeat("use App\\Services\\UserService;\n", 2),
		Suffix:   "\n$x = 1;\n",
	}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
	require.Equal(t, 1, res.RejectedKind[model.KindRegexLines])
}

func TestFilterRejectsHighRepetition(t *testing.T) {
	middle := strings.Repeat("doThing();\n", 6)
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Prefix: strings.Repeat("p", 40), Middle: middle, Suffix: strings.Repeat("s", 40)}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
}

func TestFilterRejectsLowEntropy(t *testing.T) {
	middle := strings.Repeat("aaaa", 20)
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Prefix: strings.Repeat("p", 40), Middle: middle, Suffix: strings.Repeat("s", 40)}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
}

func TestFilterRejectsCommentOnlyMiddle(t *testing.T) {
	middle := "// first comment line here\n// second comment line here\n// third comment line here\n"
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Prefix: strings.Repeat("p", 40), Middle: middle, Suffix: strings.Repeat("s", 40)}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
}

func TestFilterRejectsExtremeLengthRatio(t *testing.T) {
	middle := "func computeTotal(items []Item) int {\n\treturn sumItems(items)\n}"
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Prefix: strings.Repeat("p", 5000), Middle: middle, Suffix: strings.Repeat("s", 5000)}
	res := Filter([]model.FIMExample{ex})
	require.Empty(t, res.Kept)
}

func TestFilterKeepsWellFormedExample(t *testing.T) {
	middle := "func computeTotal(items []Item) int {\n\treturn sumItems(items)\n}"
	ex := model.FIMExample{
		SpanKind: model.KindASTSingleNode,
		Prefix:   "package main\n\n",
		Middle:   middle,
		Suffix:   "\n\nfunc main() {}\n",
	}
	res := Filter([]model.FIMExample{ex})
	require.Len(t, res.Kept, 1)
	require.Empty(t, res.Rejected)
}

func TestFilterSkipQualityFiltersExemptsNamedRule(t *testing.T) {
	ex := model.FIMExample{
		SpanKind:           model.KindDevDocComment,
		Prefix:             strings.Repeat("p", 40),
		Middle:             "// a documentation comment describing the function below in detail",
		Suffix:             strings.Repeat("s", 40),
		SkipQualityFilters: map[string]struct{}{"comment_only": {}},
	}
	res := Filter([]model.FIMExample{ex})
	require.Len(t, res.Kept, 1)
}

func TestFilterOrderStopsAtFirstViolatedRule(t *testing.T) {
	ex := model.FIMExample{SpanKind: model.KindASTSingleNode, Middle: "x"}
	res := Filter([]model.FIMExample{ex})
	require.Equal(t, 1, res.RejectedKind[model.KindASTSingleNode])
}
