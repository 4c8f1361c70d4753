// Package crossfile implements the Cross-File Context Builder (spec
// component F): for a target file, find files it imports, concatenate
// their signatures (filtered to referenced symbols unless the target
// subclasses them) under a char budget.
package crossfile

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crush-labs/fimgen/internal/discover"
	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

const maxRelatedFiles = 5

var reExtendsImplements = regexp.MustCompile(`\b(?:extends|implements)\b`)

// FindRelated returns up to 5 files from pool whose stem matches a name
// returned by the language's import/require extractors, excluding the
// target file itself.
func FindRelated(target discover.File, pool []discover.File, source string, lang langs.Language) []discover.File {
	imports := lang.ExtractImports(source)
	requires := lang.ExtractRequireFiles(source)

	var related []discover.File
	for _, f := range pool {
		if f.AbsPath == target.AbsPath {
			continue
		}
		stem := stemOf(f.AbsPath)
		_, isImport := imports[stem]
		_, isRequire := requires[stem]
		if isImport || isRequire {
			related = append(related, f)
		}
		if len(related) >= maxRelatedFiles {
			break
		}
	}
	return related
}

// Build implements spec §4.F steps 2-5: compute referenced symbols,
// concatenate related-file signatures under the char budget, and return
// the result with a trailing blank-line separator (empty if nothing
// qualified). debug requests a DebugInfo-bearing Outcome.
func Build(target discover.File, pool []discover.File, source string, lang langs.Language, maxTokens int, debug bool) model.Outcome[string] {
	related := FindRelated(target, pool, source, lang)
	if len(related) == 0 {
		return emptyOutcome(debug, nil, nil)
	}

	referenced := lang.ExtractReferencedSymbols(source)
	charBudget := maxTokens * 4

	var parts []string
	totalLen := 0
	var candidates []model.DebugCandidate

	for _, rel := range related {
		content, err := os.ReadFile(rel.AbsPath)
		if err != nil {
			continue
		}
		relSource := string(content)

		stem := stemOf(rel.AbsPath)
		extendsThis := targetExtendsStem(source, stem)

		var filterSymbols map[string]struct{}
		if !extendsThis {
			filterSymbols = referenced
		}

		sig := lang.ExtractSignature(relSource, rel.AbsPath, filterSymbols, 40)
		if sig == "" {
			continue
		}

		if totalLen+len(sig) > charBudget {
			if debug {
				candidates = append(candidates, model.DebugCandidate{
					Source: filepath.Base(rel.AbsPath), Size: len(sig), Included: false,
				})
			}
			break
		}

		parts = append(parts, sig)
		totalLen += len(sig)
		if debug {
			candidates = append(candidates, model.DebugCandidate{
				Source: filepath.Base(rel.AbsPath), Size: len(sig), Included: true,
			})
		}
	}

	if len(parts) == 0 {
		return emptyOutcome(debug, relatedNames(related), referencedNames(referenced))
	}

	result := strings.Join(parts, "\n\n") + "\n\n"
	if !debug {
		return model.Outcome[string]{Value: result}
	}
	return model.Outcome[string]{
		Value: result,
		Debug: &model.DebugInfo{
			RelatedFiles:      relatedNames(related),
			ReferencedSymbols: referencedNames(referenced),
			Candidates:        candidates,
			UsedChars:         totalLen,
			MaxChars:          charBudget,
		},
	}
}

func targetExtendsStem(source, stem string) bool {
	for _, line := range strings.Split(source, "\n") {
		if reExtendsImplements.MatchString(line) && strings.Contains(line, stem) {
			return true
		}
	}
	return false
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func relatedNames(files []discover.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.AbsPath)
	}
	return out
}

func referencedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func emptyOutcome(debug bool, related, referenced []string) model.Outcome[string] {
	if !debug {
		return model.Outcome[string]{}
	}
	return model.Outcome[string]{
		Debug: &model.DebugInfo{
			RelatedFiles:      related,
			ReferencedSymbols: referenced,
			MaxChars:          0,
		},
	}
}
