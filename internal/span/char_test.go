package span

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/crush-labs/fimgen/internal/model"
	"github.com/stretchr/testify/require"
)

func TestGenerateCharSpansTooShortSourceYieldsNone(t *testing.T) {
	spans := GenerateCharSpans("x = 1", rand.New(rand.NewSource(1)))
	require.Empty(t, spans)
}

func TestGenerateCharSpansWithinBounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("value := compute(i, j, k)\n")
	}
	src := b.String()

	spans := GenerateCharSpans(src, rand.New(rand.NewSource(42)))
	require.NotEmpty(t, spans)

	charCount := len([]rune(src))
	for _, s := range spans {
		require.Equal(t, model.KindCharRandom, s.Kind)
		cr, ok := s.Locator.(model.CharRange)
		require.True(t, ok)
		require.GreaterOrEqual(t, cr.Start, 1)
		require.Less(t, cr.Start, cr.End)
		require.LessOrEqual(t, cr.End, charCount)
	}
}

func TestGenerateCharSpansDeterministic(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("line of source code here\n")
	}
	src := b.String()

	a := GenerateCharSpans(src, rand.New(rand.NewSource(5)))
	c := GenerateCharSpans(src, rand.New(rand.NewSource(5)))
	require.Equal(t, a, c)
}
