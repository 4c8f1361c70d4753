package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/model"
)

const sample = `package sample

func Add(a, b int) int {
	return a + b
}

func Sub(a, b int) int {
	return a - b
}
`

func TestAssembleByteRangeReconstructsSourceExactly(t *testing.T) {
	start := strings.Index(sample, "func Add")
	end := strings.Index(sample, "\n\nfunc Sub")
	span := model.CodeSpan{Kind: model.KindASTSingleNode, Locator: model.ByteRange{Start: start, End: end}, Name: "Add"}

	ex, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.True(t, ok)
	require.Equal(t, sample, ex.Prefix+ex.Middle+ex.Suffix)
	require.Equal(t, "Add", ex.SpanName)
}

func TestAssembleRejectsEmptyMiddle(t *testing.T) {
	span := model.CodeSpan{Kind: model.KindASTSingleNode, Locator: model.ByteRange{Start: 5, End: 5}}
	_, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.False(t, ok)
}

func TestAssembleRejectsShortMiddleForNonDevKind(t *testing.T) {
	idx := strings.Index(sample, "a + b")
	span := model.CodeSpan{Kind: model.KindASTSingleNode, Locator: model.ByteRange{Start: idx, End: idx + len("a")}}
	_, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.False(t, ok, "single-word middle should fail the 3-word minimum for non-dev kinds")
}

func TestAssembleAllowsSingleWordForDevKind(t *testing.T) {
	idx := strings.Index(sample, "a + b")
	span := model.CodeSpan{Kind: model.KindDevIncomplete, Locator: model.ByteRange{Start: idx, End: idx + len("a")}}
	ex, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.True(t, ok)
	require.Equal(t, "a", ex.Middle)
}

func TestAssembleCharRangeReconstructsSourceExactly(t *testing.T) {
	multibyte := "// résumé\nfunc résumé() string { return \"é\" }\n"
	runes := []rune(multibyte)
	start, end := 11, 30
	span := model.CodeSpan{Kind: model.KindCharRandom, Locator: model.CharRange{Start: start, End: end}}

	ex, ok := Assemble(span, multibyte, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.True(t, ok)
	require.Equal(t, string(runes), ex.Prefix+ex.Middle+ex.Suffix)
}

func TestAssembleLineRangeRejectsOutOfBoundSpans(t *testing.T) {
	span := model.CodeSpan{Kind: model.KindRegexFuncBody, Locator: model.LineRange{Start: 100, End: 105}}
	_, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.False(t, ok)
}

func TestAssembleLineRangeWithinBounds(t *testing.T) {
	lines := strings.Split(sample, "\n")
	span := model.CodeSpan{Kind: model.KindRegexFuncBody, Locator: model.LineRange{Start: 2, End: 4}}
	ex, ok := Assemble(span, sample, Options{MaxTotalChars: 8192, MaxMiddleLines: 30})
	require.True(t, ok)
	require.Equal(t, strings.Join(lines[2:4], "\n"), ex.Middle)
}

func TestAssembleRejectsWhenBudgetUnsatisfiableAfterTruncation(t *testing.T) {
	middle := "alpha beta gamma delta"
	big := strings.Repeat("x", 1000) + "\n" + middle + "\n" + strings.Repeat("y", 1000)
	idx := strings.Index(big, middle)
	span := model.CodeSpan{Kind: model.KindASTSingleNode, Locator: model.ByteRange{Start: idx, End: idx + len(middle)}}
	_, ok := Assemble(span, big, Options{MaxTotalChars: 10, MaxMiddleLines: 30})
	require.False(t, ok)
}

func TestBM25QueryCapsAt2000Chars(t *testing.T) {
	long := strings.Repeat("a", 5000)
	q := BM25Query(long)
	require.Len(t, []rune(q), 2000)
}

func TestBM25QueryReturnsWholeSourceWhenShort(t *testing.T) {
	require.Equal(t, sample, BM25Query(sample))
}

func TestAttachContextFallsBackToDependencyOnlyWhenOverBudget(t *testing.T) {
	ex := model.FIMExample{Prefix: "p", Middle: "m", Suffix: "s"}
	combined := strings.Repeat("c", 100)
	depOnly := "dep"

	updated := AttachContext(ex, combined, depOnly, 10)
	require.Equal(t, depOnly, updated.CrossFileContext)
}

func TestAttachContextUsesCombinedWhenWithinBudget(t *testing.T) {
	ex := model.FIMExample{Prefix: "p", Middle: "m", Suffix: "s"}
	updated := AttachContext(ex, "combined", "dep", 100)
	require.Equal(t, "combined", updated.CrossFileContext)
}
