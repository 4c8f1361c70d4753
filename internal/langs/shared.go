package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// makeTestFileDetector returns an IsTestFile predicate that matches any of
// the given case-insensitive markers against the lowercased relative path.
func makeTestFileDetector(markers ...string) func(relPath, filename string) bool {
	return func(relPath, _ string) bool {
		lower := strings.ToLower(relPath)
		for _, m := range markers {
			if strings.Contains(lower, strings.ToLower(m)) {
				return true
			}
		}
		return false
	}
}

// extractCFamilyReferencedSymbols is a generic symbol extractor shared by
// every C-family-ish language (Go, Java, C, C++, C#, Rust): function-call
// identifiers and PascalCase identifiers.
func extractCFamilyReferencedSymbols(source string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, m := range reCallName.FindAllStringSubmatch(source, -1) {
		symbols[m[1]] = struct{}{}
	}
	for _, m := range rePascalCase.FindAllStringSubmatch(source, -1) {
		symbols[m[1]] = struct{}{}
	}
	return symbols
}

var (
	reCallName   = regexp.MustCompile(`\b(\w+)\s*\(`)
	rePascalCase = regexp.MustCompile(`\b([A-Z]\w+)`)
)

// makeImportStemExtractor returns an ExtractImports-shaped function that
// finds all matches of pattern and returns the file-stem of each capture
// group.
func makeImportStemExtractor(pattern string, group int) func(source string) map[string]struct{} {
	re := regexp.MustCompile(pattern)
	return func(source string) map[string]struct{} {
		out := make(map[string]struct{})
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			if group >= len(m) {
				continue
			}
			raw := m[group]
			stem := filepath.Base(raw)
			stem = strings.TrimSuffix(stem, filepath.Ext(stem))
			out[stem] = struct{}{}
		}
		return out
	}
}

// braceSignatureOptions configures makeBraceSignatureExtractor.
type braceSignatureOptions struct {
	declKeywords    []string
	funcPattern     *regexp.Regexp // group(1) is the function/method name
	commentHeader   string
	memberPattern   *regexp.Regexp // optional; matched lines are kept as members
	privatePattern  *regexp.Regexp // optional; matched funcs are private
}

// makeBraceSignatureExtractor is a factory for C-family languages that
// share "{ ... }" body stripping: declarations are kept verbatim, function
// bodies are elided to "{ ... }", and members matching memberPattern are
// kept (filtered by referencedSymbols when given). Public/unreferenced
// function lines are tracked so they can be dropped first if the line cap
// is exceeded, before falling back to a hard truncation.
func makeBraceSignatureExtractor(opts braceSignatureOptions) func(source, filename string, referenced map[string]struct{}, maxLines int) string {
	return func(source, filename string, referenced map[string]struct{}, maxLines int) string {
		lines := strings.Split(source, "\n")
		var sigLines []string
		var publicUnreferenced []int

		for _, line := range lines {
			stripped := strings.TrimSpace(line)

			if startsWithAny(stripped, opts.declKeywords) {
				sigLines = append(sigLines, line)
				continue
			}

			if opts.funcPattern != nil {
				if m := opts.funcPattern.FindStringSubmatch(line); m != nil {
					fnName := m[1]
					isPrivate := opts.privatePattern != nil && opts.privatePattern.MatchString(line)
					_, referencedOK := referenced[fnName]
					isReferenced := referenced == nil || referencedOK

					if isPrivate && !isReferenced {
						continue
					}

					sig := strings.TrimRight(line, " \t")
					switch {
					case strings.Contains(sig, "{"):
						sig = sig[:strings.Index(sig, "{")] + "{ ... }"
					case strings.Contains(sig, ";"):
						// leave as-is; already a declaration-only line
					default:
						sig += " { ... }"
					}
					if !isPrivate && !isReferenced {
						publicUnreferenced = append(publicUnreferenced, len(sigLines))
					}
					sigLines = append(sigLines, sig)
					continue
				}
			}

			if opts.memberPattern != nil && opts.memberPattern.MatchString(stripped) {
				if referenced != nil {
					if name, ok := memberName(stripped); ok {
						if _, ok := referenced[name]; !ok {
							continue
						}
					}
				}
				sigLines = append(sigLines, line)
			}
		}

		if len(sigLines) == 0 {
			return ""
		}
		if len(sigLines) > maxLines {
			for i := len(publicUnreferenced) - 1; i >= 0 && len(sigLines) > maxLines; i-- {
				idx := publicUnreferenced[i]
				if idx < len(sigLines) {
					sigLines = append(sigLines[:idx], sigLines[idx+1:]...)
				}
			}
			if len(sigLines) > maxLines {
				sigLines = sigLines[:maxLines]
			}
		}
		header := fmt.Sprintf("%s --- %s ---\n", opts.commentHeader, filepath.Base(filename))
		return header + strings.Join(sigLines, "\n")
	}
}

var reMemberName = regexp.MustCompile(`(\w+)`)

// memberName extracts a best-effort identifier from a member declaration
// line for referenced-symbol filtering: take the last whitespace-separated
// token before an '=' or ':', and pull its first word-character run.
func memberName(stripped string) (string, bool) {
	field := stripped
	if i := strings.IndexAny(field, "=:"); i >= 0 {
		field = field[:i]
	}
	fields := strings.Fields(field)
	if len(fields) == 0 {
		return "", false
	}
	last := fields[len(fields)-1]
	m := reMemberName.FindString(last)
	if m == "" {
		return "", false
	}
	return m, true
}

// dottedLastSegment runs re over source and collects the last
// dot-separated segment of each match's first capture group — the shared
// shape of Java's and C#'s import/using statement extraction.
func dottedLastSegment(re *regexp.Regexp, source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(source, -1) {
		parts := strings.Split(m[1], ".")
		out[parts[len(parts)-1]] = struct{}{}
	}
	return out
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
