// Package filter implements the Quality Filter (spec component I): six
// ordered rejection rules applied to assembled FIMExamples, each
// individually exemptable via a span's SkipQualityFilters set.
package filter

import (
	"math"
	"regexp"
	"strings"

	"github.com/crush-labs/fimgen/internal/model"
)

const minMiddleChars = 40

// reImportLine matches lines that are import/require/include/use
// statements, covering every language in the registry.
var reImportLine = regexp.MustCompile(
	`^\s*(?:` +
		`require_once|require_relative|include_once|include` +
		`|from\s+\S+\s+import\b` +
		`|import\b` +
		`|using\b` +
		`|use\b` +
		`|extern\s+crate\b` +
		`|load\b` +
		`|#\s*include\b` +
		`|source\b` +
		`|@(?:import|use|forward)\b` +
		`|(?:const|let|var)\s+\S+\s*=\s*require\s*\(` +
		`|require\s*\(` +
		`)`,
)

// Result is the outcome of filtering a set of examples: the kept list,
// the rejected list, and a histogram of rejection counts by span kind.
type Result struct {
	Kept         []model.FIMExample
	Rejected     []model.FIMExample
	RejectedKind map[model.SpanKind]int
}

type rule struct {
	name  string
	check func(ex model.FIMExample) bool // true means reject
}

// Filter applies the six ordered rules to examples, in order, skipping
// any rule an example's SkipQualityFilters exempts it from.
func Filter(examples []model.FIMExample) Result {
	rules := []rule{
		{"min_length", rejectMinLength},
		{"import", rejectImportOnly},
		{"repetition", rejectRepetition},
		{"entropy", rejectEntropy},
		{"comment_only", rejectCommentOnly},
		{"length_ratio", rejectLengthRatio},
	}

	res := Result{RejectedKind: make(map[model.SpanKind]int)}

outer:
	for _, ex := range examples {
		for _, r := range rules {
			if ex.SkipsFilter(r.name) {
				continue
			}
			if r.check(ex) {
				res.Rejected = append(res.Rejected, ex)
				res.RejectedKind[ex.SpanKind]++
				continue outer
			}
		}
		res.Kept = append(res.Kept, ex)
	}

	return res
}

func rejectMinLength(ex model.FIMExample) bool {
	return len(strings.TrimSpace(ex.Middle)) < minMiddleChars
}

func rejectImportOnly(ex model.FIMExample) bool {
	prefixTail := lastLine(ex.Prefix)
	suffixHead := firstLine(ex.Suffix)

	midLines := strings.Split(ex.Middle, "\n")
	fullLines := make([]string, len(midLines))
	for i, ml := range midLines {
		line := ml
		if i == 0 {
			line = prefixTail + line
		}
		if i == len(midLines)-1 {
			line = line + suffixHead
		}
		fullLines[i] = line
	}

	var nonEmpty []string
	for _, l := range fullLines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return false
	}
	for _, l := range nonEmpty {
		if !reImportLine.MatchString(l) {
			return false
		}
	}
	return true
}

func rejectRepetition(ex model.FIMExample) bool {
	midLines := strings.Split(ex.Middle, "\n")
	if len(midLines) <= 2 {
		return false
	}
	unique := make(map[string]struct{})
	totalNonEmpty := 0
	for _, l := range midLines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		totalNonEmpty++
		unique[trimmed] = struct{}{}
	}
	if totalNonEmpty == 0 {
		return false
	}
	return float64(len(unique))/float64(totalNonEmpty) < 0.5
}

func rejectEntropy(ex model.FIMExample) bool {
	return charEntropy(ex.Middle) < 2.0
}

func charEntropy(text string) float64 {
	if text == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, c := range text {
		freq[c]++
		total++
	}
	var entropy float64
	for _, n := range freq {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func rejectCommentOnly(ex model.FIMExample) bool {
	commentLines, nonEmpty := 0, 0
	for _, l := range strings.Split(ex.Middle, "\n") {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "#") {
			commentLines++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(commentLines)/float64(nonEmpty) > 0.8
}

func rejectLengthRatio(ex model.FIMExample) bool {
	total := len(ex.Prefix) + len(ex.Middle) + len(ex.Suffix)
	if total == 0 {
		return false
	}
	ratio := float64(len(ex.Middle)) / float64(total)
	return ratio < 0.03 || ratio > 0.80
}

func lastLine(s string) string {
	if s == "" {
		return ""
	}
	idx := strings.LastIndex(s, "\n")
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

func firstLine(s string) string {
	if s == "" {
		return ""
	}
	idx := strings.Index(s, "\n")
	if idx < 0 {
		return s
	}
	return s[:idx]
}
