package span

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

const docCommentedGoSource = `package sample

// Add adds two integers together and returns the sum.
// @param a first operand
// @param b second operand
func Add(a, b int) int {
	return a + b
}
`

func TestGenerateDevSpansIncompleteLine(t *testing.T) {
	src := []byte(sampleGoSource)
	tree := parseGo(t, sampleGoSource)
	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	spans := GenerateDevSpans(tree, src, goLang, rand.New(rand.NewSource(9)))
	require.NotEmpty(t, spans)

	for _, s := range spans {
		require.Contains(t, []model.SpanKind{
			model.KindDevIncomplete, model.KindDevBracket,
			model.KindDevPostComment, model.KindDevDocComment,
		}, s.Kind)
	}
}

func TestGenerateDevSpansDocCommentSkipsQualityFilter(t *testing.T) {
	src := []byte(docCommentedGoSource)
	tree := parseGo(t, docCommentedGoSource)
	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	var found bool
	for i := 0; i < 20 && !found; i++ {
		spans := GenerateDevSpans(tree, src, goLang, rand.New(rand.NewSource(int64(i))))
		for _, s := range spans {
			if s.Kind == model.KindDevDocComment {
				found = true
				require.True(t, s.SkipsFilter("comment_only"))
				_, ok := s.Locator.(model.CharRange)
				require.True(t, ok)
			}
		}
	}
	require.True(t, found, "expected at least one dev_doc_comment span across seeds")
}

func TestGenerateDevSpansNilTreeStillProducesIncompleteLine(t *testing.T) {
	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	spans := GenerateDevSpans(nil, []byte(sampleGoSource), goLang, rand.New(rand.NewSource(2)))
	for _, s := range spans {
		require.Equal(t, model.KindDevIncomplete, s.Kind)
	}
}

func TestSampleIndicesReturnsAllWhenTargetExceedsLen(t *testing.T) {
	out := sampleIndices([]int{1, 2, 3}, 10, rand.New(rand.NewSource(1)))
	require.ElementsMatch(t, []int{1, 2, 3}, out)
}
