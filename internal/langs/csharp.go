package langs

import "regexp"

func newCSharp() Language {
	extractSignature := makeBraceSignatureExtractor(braceSignatureOptions{
		declKeywords: []string{
			"namespace ", "class ", "interface ", "enum ", "struct ",
			"abstract class", "public class", "public interface",
			"public enum", "public struct", "[",
		},
		funcPattern: regexp.MustCompile(
			`\s*(?:(?:public|protected|private|internal|static|abstract|virtual|override|sealed|async)\s+)*(?:[\w<>\[\],?.]+)\s+(\w+)\s*\(`,
		),
		commentHeader: "//",
		memberPattern: regexp.MustCompile(
			`(?:(?:public|protected|private|internal|static|readonly)\s+)*(?:[\w<>\[\],?.]+)\s+\w+\s*(?:\{\s*get|[=;])`,
		),
		privatePattern: regexp.MustCompile(`\bprivate\b`),
	})

	return &Config{
		name:          "csharp",
		extensions:    []string{"cs"},
		commentPrefix: "//",
		skipDirs:      withSkipDirs("bin", "obj", "packages", ".vs"),
		skipPatterns:  mustCompileAll(`\.designer\.cs$`, `AssemblyInfo\.cs$`),
		isTestFile:    makeTestFileDetector("test", "tests"),

		hasTreeSitter:  true,
		treeSitterName: "c_sharp",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "foreach_statement", "while_statement",
			"switch_statement", "try_statement", "method_declaration",
			"constructor_declaration", "class_declaration",
			"local_declaration_statement", "assignment_expression",
			"invocation_expression", "object_creation_expression",
			"lambda_expression", "conditional_expression", "throw_statement",
			"property_declaration", "using_statement",
		),
		astBracketTypes: stringSet(
			"argument_list", "parameter_list", "initializer_expression",
			"parenthesized_expression", "bracketed_argument_list",
		),
		astFunctionTypes:  stringSet("method_declaration", "constructor_declaration", "lambda_expression"),
		astIdentNodeTypes: stringSet("identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if (", "else if (", "while (", "for (", "foreach (",
			"return ", "= ", "new ", "(", "[", "{",
			"throw ", "this.", "=>",
		},
		docCommentOpeners: []string{"///"},

		regexFuncPattern: regexp.MustCompile(
			`^(\s*)(?:(?:public|protected|private|internal|static|abstract|virtual|override|sealed|async)\s+)*(?:[\w<>\[\],?.]+)\s+(\w+)\s*\(`,
		),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|foreach|for|while|switch|try|catch`),

		extractImports:           csharpExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         extractSignature,
	}
}

var reCSharpUsing = regexp.MustCompile(`(?m)^using\s+(?:static\s+)?([\w.]+)\s*;`)

func csharpExtractImports(source string) map[string]struct{} {
	return dottedLastSegment(reCSharpUsing, source)
}
