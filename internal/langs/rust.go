package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

func newRust() Language {
	return &Config{
		name:          "rust",
		extensions:    []string{"rs"},
		commentPrefix: "//",
		skipDirs:      withSkipDirs("target"),
		isTestFile:    makeTestFileDetector("test", "tests"),

		hasTreeSitter:  true,
		treeSitterName: "rust",

		astEligibleTypes: stringSet(
			"expression_statement", "return_expression", "if_expression",
			"for_expression", "while_expression", "match_expression",
			"function_item", "struct_item", "enum_item", "impl_item",
			"let_declaration", "assignment_expression", "call_expression",
			"macro_invocation", "closure_expression", "trait_item",
			"use_declaration",
		),
		astBracketTypes: stringSet(
			"arguments", "parameters", "array_expression",
			"parenthesized_expression", "tuple_expression",
			"type_arguments",
		),
		astFunctionTypes:  stringSet("function_item"),
		astIdentNodeTypes: stringSet("identifier", "field_identifier", "type_identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if ", "else if ", "while ", "for ", "match ",
			"return ", "= ", "let ", "fn ", "(", "[", "{",
			"=> ", ":: ",
		},
		docCommentOpeners: []string{"///"},

		regexFuncPattern:   regexp.MustCompile(`^(\s*)(?:pub(?:\([\w:]+\))?\s+)?(?:async\s+)?fn\s+(\w+)`),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|for|while|match|loop`),

		extractImports:           rustExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         rustExtractSignature,
	}
}

var reRustUse = regexp.MustCompile(`(?m)^use\s+(?:crate|super|self)?::?([\w:]+)`)

func rustExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reRustUse.FindAllStringSubmatch(source, -1) {
		parts := strings.Split(m[1], "::")
		out[parts[len(parts)-1]] = struct{}{}
	}
	return out
}

var (
	reRustMod   = regexp.MustCompile(`^mod\s+`)
	reRustFn    = regexp.MustCompile(`^(?:pub(?:\([\w:]+\))?\s+)?(?:async\s+)?fn\s+(\w+)`)
	reRustOther = regexp.MustCompile(`^(?:pub(?:\([\w:]+\))?\s+)?(?:struct|enum|trait|impl|type)\s+\w+`)
)

func rustExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string
	var publicUnreferenced []int

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if reRustMod.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if m := reRustFn.FindStringSubmatch(stripped); m != nil {
			fnName := m[1]
			isPrivate := !strings.HasPrefix(stripped, "pub")
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

		if reRustOther.MatchString(stripped) {
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
