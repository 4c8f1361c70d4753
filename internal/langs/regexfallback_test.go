package langs

import (
	"math/rand"
	"testing"

	"github.com/crush-labs/fimgen/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRegexFallbackSpansFunctionBody(t *testing.T) {
	php, err := Default().Get("php")
	require.NoError(t, err)

	src := `<?php
function greet($name) {
    $message = "hello " . $name;
    echo $message;
    return $message;
}
`
	spans := RegexFallbackSpans(php, src, rand.New(rand.NewSource(1)))

	var found bool
	for _, s := range spans {
		if s.Kind == model.KindRegexFuncBody {
			found = true
			require.Equal(t, "greet", s.Name)
			lr, ok := s.Locator.(model.LineRange)
			require.True(t, ok)
			require.Less(t, lr.Start, lr.End+1)
		}
	}
	require.True(t, found, "expected a function_body span")
}

func TestRegexFallbackSpansBlock(t *testing.T) {
	php, err := Default().Get("php")
	require.NoError(t, err)

	src := `<?php
if ($ok) {
    $x = 1;
    $y = 2;
    $z = $x + $y;
}
`
	spans := RegexFallbackSpans(php, src, rand.New(rand.NewSource(1)))

	var found bool
	for _, s := range spans {
		if s.Kind == model.KindRegexBlock {
			found = true
		}
	}
	require.True(t, found, "expected a block span")
}

func TestRegexFallbackSpansDeterministicForSameSeed(t *testing.T) {
	php, err := Default().Get("php")
	require.NoError(t, err)

	lines := make([]string, 0, 40)
	lines = append(lines, "<?php")
	for i := 0; i < 38; i++ {
		lines = append(lines, "$x = 1;")
	}
	src := ""
	for _, l := range lines {
		src += l + "\n"
	}

	a := RegexFallbackSpans(php, src, rand.New(rand.NewSource(7)))
	b := RegexFallbackSpans(php, src, rand.New(rand.NewSource(7)))
	require.Equal(t, a, b)
}
