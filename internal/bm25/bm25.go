// Package bm25 implements the BM25 Index & Retrieval component (spec
// component G): corpus chunking, Okapi BM25 scoring, and budget-bounded
// cross-file snippet retrieval.
//
// No BM25 library appears anywhere in the retrieval pack, so this scorer
// is hand-written against the standard library's math package — the one
// deliberate stdlib-only component in this codebase (see DESIGN.md).
package bm25

import (
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/crush-labs/fimgen/internal/discover"
	"github.com/crush-labs/fimgen/internal/model"
)

const (
	k1 = 1.5
	b  = 0.75

	maxChunkLines  = 20
	minChunkChars  = 20
	defaultTopK    = 5
)

var reTokenSplit = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func tokenize(text string) []string {
	var out []string
	for _, t := range reTokenSplit.Split(text, -1) {
		if len(t) > 1 {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

// Index is a built BM25 corpus: one entry per chunk, each chunk capped at
// 20 lines and drawn from a blank-line split of its source file.
type Index struct {
	chunks     []string
	chunkFiles []string
	tokenized  [][]string
	docFreq    map[string]int
	docLen     []int
	avgDocLen  float64
}

// Build chunks every file in files on blank lines (20-line cap, >20 stripped
// chars minimum) and indexes the chunks for BM25 scoring. Returns nil if no
// file yielded any chunk.
func Build(files []discover.File) *Index {
	idx := &Index{docFreq: make(map[string]int)}

	for _, f := range files {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		idx.addFile(f.RelPath, string(content))
	}

	if len(idx.chunks) == 0 {
		return nil
	}

	total := 0
	for _, l := range idx.docLen {
		total += l
	}
	idx.avgDocLen = float64(total) / float64(len(idx.docLen))
	return idx
}

func (idx *Index) addFile(relPath, source string) {
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunkText := strings.Join(current, "\n")
		if len(strings.TrimSpace(chunkText)) > minChunkChars {
			idx.addChunk(relPath, chunkText)
		}
		current = nil
	}

	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) == "" && len(current) > 0 {
			flush()
			continue
		}
		current = append(current, line)
		if len(current) >= maxChunkLines {
			flush()
		}
	}
	flush()
}

func (idx *Index) addChunk(relPath, chunkText string) {
	tokens := tokenize(chunkText)
	idx.chunks = append(idx.chunks, chunkText)
	idx.chunkFiles = append(idx.chunkFiles, relPath)
	idx.tokenized = append(idx.tokenized, tokens)
	idx.docLen = append(idx.docLen, len(tokens))

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		idx.docFreq[t]++
	}
}

// score computes the Okapi BM25 score of query against chunk i.
func (idx *Index) score(query []string, i int) float64 {
	n := float64(len(idx.tokenized))
	var total float64
	freqs := termFreqs(idx.tokenized[i])
	docLen := float64(idx.docLen[i])

	for _, term := range query {
		f := float64(freqs[term])
		if f == 0 {
			continue
		}
		df := float64(idx.docFreq[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		numerator := f * (k1 + 1)
		denominator := f + k1*(1-b+b*docLen/idx.avgDocLen)
		total += idf * numerator / denominator
	}
	return total
}

func termFreqs(tokens []string) map[string]int {
	out := make(map[string]int, len(tokens))
	for _, t := range tokens {
		out[t]++
	}
	return out
}

type scored struct {
	idx   int
	score float64
}

// Retrieve implements spec §4.G's retrieval: score every chunk against
// the query, exclude chunks from filepath itself and non-positive
// scores, take the top 2*topK, dedupe by file (highest score per file
// kept), truncate to topK, then concatenate under the char budget.
func Retrieve(spanText, adjacentContext string, idx *Index, filepath string, maxTokens, topK int, debug bool) model.Outcome[string] {
	charBudget := maxTokens * 4
	if topK <= 0 {
		topK = defaultTopK
	}

	query := tokenize(spanText + " " + adjacentContext)
	if len(query) == 0 || idx == nil {
		return emptyOutcome(debug, query, charBudget)
	}

	var candidates []scored
	for i := range idx.chunks {
		if idx.chunkFiles[i] == filepath {
			continue
		}
		s := idx.score(query, i)
		if s > 0 {
			candidates = append(candidates, scored{idx: i, score: s})
		}
	}
	sortByScoreDesc(candidates)

	if len(candidates) > topK*2 {
		candidates = candidates[:topK*2]
	}

	seenFiles := make(map[string]struct{})
	var selected []scored
	for _, c := range candidates {
		f := idx.chunkFiles[c.idx]
		if _, ok := seenFiles[f]; ok {
			continue
		}
		seenFiles[f] = struct{}{}
		selected = append(selected, c)
		if len(selected) >= topK {
			break
		}
	}

	if len(selected) == 0 {
		return emptyOutcome(debug, query, charBudget)
	}

	var parts []string
	total := 0
	var details []model.DebugCandidate
	for _, c := range selected {
		chunk := "// --- " + idx.chunkFiles[c.idx] + " ---\n" + idx.chunks[c.idx]
		if total+len(chunk) > charBudget {
			if debug {
				details = append(details, model.DebugCandidate{
					Source: idx.chunkFiles[c.idx], Score: c.score, Size: len(chunk), Included: false,
				})
			}
			break
		}
		parts = append(parts, chunk)
		total += len(chunk)
		if debug {
			details = append(details, model.DebugCandidate{
				Source: idx.chunkFiles[c.idx], Score: c.score, Size: len(chunk), Included: true,
			})
		}
	}

	if len(parts) == 0 {
		return outcomeWithDebug(debug, "", query, details, 0, charBudget)
	}

	result := strings.Join(parts, "\n\n") + "\n\n"
	return outcomeWithDebug(debug, result, query, details, total, charBudget)
}

func sortByScoreDesc(items []scored) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].score > items[j-1].score; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func emptyOutcome(debug bool, query []string, charBudget int) model.Outcome[string] {
	return outcomeWithDebug(debug, "", query, nil, 0, charBudget)
}

func outcomeWithDebug(debug bool, value string, query []string, details []model.DebugCandidate, used, maxChars int) model.Outcome[string] {
	if !debug {
		return model.Outcome[string]{Value: value}
	}
	return model.Outcome[string]{
		Value: value,
		Debug: &model.DebugInfo{
			QueryTokens: query,
			Candidates:  details,
			UsedChars:   used,
			MaxChars:    maxChars,
		},
	}
}
