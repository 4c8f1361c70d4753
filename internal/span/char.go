package span

import (
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/crush-labs/fimgen/internal/model"
)

const (
	minMiddleChars = 10
	maxMiddleChars = 500
)

// GenerateCharSpans implements spec component E: random character-level
// splits, robustness training for partial-line completion that purely
// line-level spans cannot teach.
func GenerateCharSpans(source string, rng *rand.Rand) []model.CodeSpan {
	if len(source) < minMiddleChars*3 {
		return nil
	}

	charCount := utf8.RuneCountInString(source)
	lineCount := strings.Count(source, "\n")
	target := devSpanTarget(lineCount, 100)
	if target < 1 {
		target = 1
	}

	upperMid := maxMiddleChars
	if third := charCount / 3; third < upperMid {
		upperMid = third
	}
	if upperMid < minMiddleChars {
		return nil
	}

	spans := make([]model.CodeSpan, 0, target)
	for i := 0; i < target; i++ {
		midLen := minMiddleChars + rng.Intn(upperMid-minMiddleChars+1)

		maxStart := charCount - midLen - 1
		if maxStart < 1 {
			continue
		}
		start := 1 + rng.Intn(maxStart)

		spans = append(spans, model.CodeSpan{
			Kind:    model.KindCharRandom,
			Locator: model.CharRange{Start: start, End: start + midLen},
		})
	}
	return spans
}
