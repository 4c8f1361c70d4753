package langs

import "regexp"

func newJava() Language {
	extractSignature := makeBraceSignatureExtractor(braceSignatureOptions{
		declKeywords: []string{
			"class ", "interface ", "enum ", "abstract class",
			"public class", "public interface", "public enum", "@",
		},
		funcPattern: regexp.MustCompile(
			`\s*(?:(?:public|protected|private|static|abstract|final|synchronized|native)\s+)*(?:<[\w<>,?\s]+>\s+)?(?:\w+(?:<[\w<>,?\s]+>)?)\s+(\w+)\s*\(`,
		),
		commentHeader: "//",
		memberPattern: regexp.MustCompile(
			`(?:(?:public|protected|private|static|final)\s+)*(?:\w+(?:<[\w<>,?\s]+>)?)\s+\w+\s*[=;]`,
		),
		privatePattern: regexp.MustCompile(`\bprivate\b`),
	})

	return &Config{
		name:          "java",
		extensions:    []string{"java"},
		commentPrefix: "//",
		skipDirs:      withSkipDirs("target", ".gradle", ".mvn", "bin", "out"),
		skipPatterns:  mustCompileAll(`package-info\.java$`, `module-info\.java$`),
		isTestFile:    makeTestFileDetector("test", "tests"),

		hasTreeSitter:  true,
		treeSitterName: "java",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "enhanced_for_statement", "while_statement",
			"switch_expression", "try_statement", "method_declaration",
			"class_declaration", "local_variable_declaration",
			"assignment_expression", "method_invocation", "object_creation_expression",
			"lambda_expression", "ternary_expression", "throw_statement",
			"field_declaration",
		),
		astBracketTypes: stringSet(
			"argument_list", "formal_parameters", "array_initializer",
			"parenthesized_expression",
		),
		astFunctionTypes:  stringSet("method_declaration"),
		astIdentNodeTypes: stringSet("identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if (", "else if (", "while (", "for (",
			"return ", "= ", "new ", "(", "[", "{",
			"throw ", "this.",
		},
		docCommentOpeners: []string{"/**"},

		regexFuncPattern: regexp.MustCompile(
			`^(\s*)(?:(?:public|protected|private|static|abstract|final|synchronized)\s+)*(?:\w+(?:<[\w<>,?\s]+>)?)\s+(\w+)\s*\(`,
		),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|for|while|switch|try|catch`),

		extractImports:           javaExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         extractSignature,
	}
}

var reJavaImport = regexp.MustCompile(`(?m)^import\s+(?:static\s+)?([\w.]+)\s*;`)

func javaExtractImports(source string) map[string]struct{} {
	return dottedLastSegment(reJavaImport, source)
}
