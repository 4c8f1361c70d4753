// Package rebalance implements the Rebalancer & Curriculum component
// (spec component J): downsample-only category rebalancing toward
// target ast/dev/char ratios, plus optional complexity-descending
// curriculum sort with top-percentile retention.
package rebalance

import (
	"math/rand"
	"sort"

	"github.com/crush-labs/fimgen/internal/model"
)

const (
	targetAST  = 0.66
	targetDev  = 0.22
	targetChar = 0.12
)

// Rebalance downsamples examples so their category mix approaches the
// target ast/dev/char ratios, without ever upsampling an
// under-represented category.
func Rebalance(examples []model.FIMExample, rng *rand.Rand) []model.FIMExample {
	if len(examples) == 0 {
		return examples
	}

	byCategory := map[string][]model.FIMExample{"ast": nil, "dev": nil, "char": nil}
	for _, ex := range examples {
		cat := ex.SpanKind.Category()
		byCategory[cat] = append(byCategory[cat], ex)
	}

	n := len(examples)
	targetRatio := map[string]float64{"ast": targetAST, "dev": targetDev, "char": targetChar}
	rawTarget := map[string]int{}
	for cat, ratio := range targetRatio {
		rawTarget[cat] = int(float64(n) * ratio)
	}

	shortfall := 0
	underTarget := map[string]bool{}
	for cat, items := range byCategory {
		if len(items) < rawTarget[cat] {
			underTarget[cat] = true
			shortfall += rawTarget[cat] - len(items)
		}
	}

	overRatioSum := 0.0
	for cat := range byCategory {
		if !underTarget[cat] {
			overRatioSum += targetRatio[cat]
		}
	}

	adjustedTarget := map[string]int{}
	for cat, items := range byCategory {
		if underTarget[cat] {
			adjustedTarget[cat] = len(items)
			continue
		}
		if overRatioSum == 0 {
			adjustedTarget[cat] = rawTarget[cat]
			continue
		}
		share := targetRatio[cat] / overRatioSum
		adjustedTarget[cat] = rawTarget[cat] + int(float64(shortfall)*share)
	}

	var result []model.FIMExample
	for cat, items := range byCategory {
		target := adjustedTarget[cat]
		if target >= len(items) {
			result = append(result, items...)
			continue
		}
		result = append(result, downsample(items, target, rng)...)
	}

	return result
}

// downsample performs uniform random sampling without replacement,
// keeping exactly k of items.
func downsample(items []model.FIMExample, k int, rng *rand.Rand) []model.FIMExample {
	if k <= 0 {
		return nil
	}
	if k >= len(items) {
		return items
	}
	shuffled := make([]model.FIMExample, len(items))
	copy(shuffled, items)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:k]
}

// Curriculum sorts examples by ComplexityScore descending and, if
// topPct < 100, retains only the leading fraction.
func Curriculum(examples []model.FIMExample, topPct float64) []model.FIMExample {
	sorted := make([]model.FIMExample, len(examples))
	copy(sorted, examples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ComplexityScore > sorted[j].ComplexityScore
	})

	if topPct >= 100 || topPct <= 0 {
		return sorted
	}

	keep := int(float64(len(sorted)) * topPct / 100)
	if keep < 1 && len(sorted) > 0 {
		keep = 1
	}
	return sorted[:keep]
}
