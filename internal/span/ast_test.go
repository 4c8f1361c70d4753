package span

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

func parseGo(t *testing.T, src string) *tree_sitter.Tree {
	t.Helper()
	p := tree_sitter.NewParser()
	t.Cleanup(p.Close)
	require.NoError(t, p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_go.Language())))
	tree := p.Parse([]byte(src), nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree
}

const sampleGoSource = `package sample

func Add(a, b int) int {
	total := a + b
	return total
}

func Greet(name string) string {
	message := "hello " + name
	return message
}
`

func TestGenerateASTSpansProducesBothKinds(t *testing.T) {
	src := []byte(sampleGoSource)
	tree := parseGo(t, sampleGoSource)
	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	spans := GenerateASTSpans(tree, src, goLang, 30, rand.New(rand.NewSource(1)))
	require.NotEmpty(t, spans)

	for _, s := range spans {
		br, ok := s.Locator.(model.ByteRange)
		require.True(t, ok)
		require.GreaterOrEqual(t, br.Start, 0)
		require.Less(t, br.Start, br.End)
		require.LessOrEqual(t, br.End, len(src))
		require.Contains(t, []model.SpanKind{model.KindASTSingleNode, model.KindASTAlignedSpan}, s.Kind)
	}
}

func TestTargetSpanCount(t *testing.T) {
	require.Equal(t, 2, targetSpanCount(100))
	require.Equal(t, 2, targetSpanCount(999))
	require.Equal(t, 4, targetSpanCount(2000))
}

func TestWeightedSampleWithoutReplacementRespectsCount(t *testing.T) {
	items := []astNode{
		{kind: "a", startByte: 0, endByte: 10},
		{kind: "b", startByte: 10, endByte: 30},
		{kind: "c", startByte: 30, endByte: 35},
		{kind: "d", startByte: 35, endByte: 100},
	}
	rng := rand.New(rand.NewSource(3))
	picked := weightedSampleWithoutReplacement(items, 2, rng)
	require.Len(t, picked, 2)

	seen := map[string]bool{}
	for _, p := range picked {
		require.False(t, seen[p.kind], "sampled the same node twice")
		seen[p.kind] = true
	}
}

func TestWeightedSampleWithoutReplacementReturnsAllWhenKExceedsLen(t *testing.T) {
	items := []astNode{{kind: "a"}, {kind: "b"}}
	picked := weightedSampleWithoutReplacement(items, 5, rand.New(rand.NewSource(1)))
	require.Len(t, picked, 2)
}

func TestIntersectionOverUnion(t *testing.T) {
	require.InDelta(t, 1.0, intersectionOverUnion(0, 10, 0, 10), 1e-9)
	require.InDelta(t, 0.0, intersectionOverUnion(0, 5, 5, 10), 1e-9)
	require.InDelta(t, 1.0/3.0, intersectionOverUnion(0, 10, 5, 15), 1e-9)
}

func TestFindLCA(t *testing.T) {
	src := []byte(sampleGoSource)
	tree := parseGo(t, sampleGoSource)
	root := flattenTree(tree)

	lca, ok := findLCA(root, 10, 15)
	require.True(t, ok)
	require.LessOrEqual(t, lca.startByte, 10)
	require.GreaterOrEqual(t, lca.endByte, 15)
}
