package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

func newRuby() Language {
	return &Config{
		name:          "ruby",
		extensions:    []string{"rb", "rake"},
		commentPrefix: "#",
		skipDirs:      withSkipDirs("vendor", "tmp", "log"),
		skipPatterns:  mustCompileAll(`Gemfile$`, `Rakefile$`),
		isTestFile:    makeTestFileDetector("test", "spec"),

		hasTreeSitter:  true,
		treeSitterName: "ruby",

		astEligibleTypes: stringSet(
			"expression_statement", "return", "if", "unless",
			"for", "while", "until", "case",
			"method", "singleton_method", "class", "module",
			"assignment", "call", "command_call",
			"block", "do_block", "lambda", "begin",
		),
		astBracketTypes: stringSet(
			"argument_list", "method_parameters", "array",
			"hash", "parenthesized_statements",
		),
		astFunctionTypes:  stringSet("method", "singleton_method"),
		astIdentNodeTypes: stringSet("identifier", "constant"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if ", "elsif ", "unless ", "while ", "until ",
			"return ", "= ", "def ", "class ", "module ",
			"(", "[", "{", "do", "|",
		},
		docCommentOpeners: nil,

		regexFuncPattern:   regexp.MustCompile(`^(\s*)def\s+(?:self\.)?(\w+[?!=]?)`),
		regexBlockKeywords: nil,

		extractImports:           rubyExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: rubyExtractReferencedSymbols,
		extractSignature:         rubyExtractSignature,
	}
}

var reRubyRequire = regexp.MustCompile(`require(?:_relative)?\s+['"]([^'"]+)['"]`)

func rubyExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reRubyRequire.FindAllStringSubmatch(source, -1) {
		base := filepath.Base(m[1])
		out[strings.TrimSuffix(base, filepath.Ext(base))] = struct{}{}
	}
	return out
}

var (
	reRubyCall   = regexp.MustCompile(`\b(\w+)\s*\(`)
	reRubyMethod = regexp.MustCompile(`\.(\w+[?!=]?)`)
	rePascal     = regexp.MustCompile(`\b([A-Z]\w+)`)
)

func rubyExtractReferencedSymbols(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reRubyCall.FindAllStringSubmatch(source, -1) {
		out[m[1]] = struct{}{}
	}
	for _, m := range reRubyMethod.FindAllStringSubmatch(source, -1) {
		out[m[1]] = struct{}{}
	}
	for _, m := range rePascal.FindAllStringSubmatch(source, -1) {
		out[m[1]] = struct{}{}
	}
	return out
}

var (
	reRubyModClass = regexp.MustCompile(`^(?:module|class)\s+\w+`)
	reRubyDef      = regexp.MustCompile(`^(?:def\s+(?:self\.)?)?(\w+[?!=]?)(?:\(|$)`)
	reRubyAttr     = regexp.MustCompile(`^attr_(?:reader|writer|accessor)\b`)
	reRubyConst    = regexp.MustCompile(`^[A-Z_]+\s*=`)
)

func rubyExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if reRubyModClass.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if strings.HasPrefix(stripped, "def ") {
			if m := reRubyDef.FindStringSubmatch(stripped); m != nil {
				fnName := m[1]
				if referenced != nil {
					if _, ok := referenced[fnName]; !ok {
						continue
					}
				}
				sigLines = append(sigLines, strings.TrimRight(line, " \t")+" ... end")
				continue
			}
		}

		if reRubyAttr.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if reRubyConst.MatchString(stripped) {
			sigLines = append(sigLines, line)
		}
	}

	if len(sigLines) == 0 {
		return ""
	}
	if len(sigLines) > maxLines {
		sigLines = sigLines[:maxLines]
	}
	return fmt.Sprintf("# --- %s ---\n%s", filepath.Base(filename), strings.Join(sigLines, "\n"))
}
