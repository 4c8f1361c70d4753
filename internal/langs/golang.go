package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

func newGo() Language {
	return &Config{
		name:          "go",
		extensions:    []string{"go"},
		commentPrefix: "//",
		skipDirs:      withSkipDirs("vendor"),
		skipPatterns:  mustCompileAll(`_generated\.go$`, `\.pb\.go$`),
		isTestFile:    makeTestFileDetector("_test.go"),

		hasTreeSitter:  true,
		treeSitterName: "go",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "switch_statement", "select_statement",
			"function_declaration", "method_declaration",
			"short_var_declaration", "assignment_statement",
			"call_expression", "go_statement", "defer_statement",
			"type_declaration", "var_declaration", "const_declaration",
		),
		astBracketTypes: stringSet(
			"argument_list", "parameter_list", "literal_value",
			"parenthesized_expression",
		),
		astFunctionTypes:  stringSet("function_declaration", "method_declaration"),
		astIdentNodeTypes: stringSet("identifier", "field_identifier", "type_identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if ", "for ", "switch ", "select ",
			"return ", ":= ", "= ", "func ",
			"(", "[", "{", "go ", "defer ",
		},
		docCommentOpeners: nil, // Go has no distinct doc-comment delimiter from "//"

		regexFuncPattern:   regexp.MustCompile(`^(\s*)func\s+(?:\(\w+\s+\*?\w+\)\s+)?(\w+)\s*\(`),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|for|switch|select`),

		extractImports:           goExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         goExtractSignature,
	}
}

var reGoImport = regexp.MustCompile(`"([\w/.-]+)"`)

func goExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reGoImport.FindAllStringSubmatch(source, -1) {
		parts := strings.Split(m[1], "/")
		out[parts[len(parts)-1]] = struct{}{}
	}
	return out
}

var (
	reGoFunc  = regexp.MustCompile(`^func\s+(?:\(\w+\s+\*?(\w+)\)\s+)?(\w+)\s*\(`)
	reGoType  = regexp.MustCompile(`^type\s+\w+\s+(?:struct|interface)`)
	reGoVar   = regexp.MustCompile(`^var\s+\w+`)
	reGoConst = regexp.MustCompile(`^const\s+\w+`)
)

func goExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string
	var publicUnreferenced []int

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if m := reGoFunc.FindStringSubmatch(stripped); m != nil {
			fnName := m[2]
			isPrivate := len(fnName) > 0 && unicode.IsLower(rune(fnName[0]))
			_, refOK := referenced[fnName]
			isReferenced := referenced == nil || refOK

			if isPrivate && !isReferenced {
				continue
			}

			sig := strings.TrimRight(line, " \t")
			if strings.Contains(sig, "{") {
				sig = sig[:strings.Index(sig, "{")] + "{ ... }"
			} else {
				sig += " { ... }"
			}
			if !isPrivate && !isReferenced {
				publicUnreferenced = append(publicUnreferenced, len(sigLines))
			}
			sigLines = append(sigLines, sig)
			continue
		}

		if reGoType.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}
		if reGoVar.MatchString(stripped) || reGoConst.MatchString(stripped) {
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
	return fmt.Sprintf("// --- %s ---\n%s", filepath.Base(filename), strings.Join(sigLines, "\n"))
}
