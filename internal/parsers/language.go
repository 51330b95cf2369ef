// Package parsers implements pass-1 parsing (C6): per-file AST walks that
// emit ir.Node/ir.Edge records, plus the specialized extractors layered on
// top of the same AST (SQL, routes, tests, stereotypes, validation chains).
// Grounded on internal/treesitter's LanguageParser/ParseFile, generalized
// from CodeEntity rows into the full ir.Node/ir.Edge shape, and extended
// with Go and Java grammars alongside the teacher's JS/TS/Python set.
package parsers

import (
	"fmt"
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies one of the supported grammars.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangJSX        Language = "jsx"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangJava       Language = "java"
)

var extensionMap = map[string]Language{
	".js":   LangJavaScript,
	".jsx":  LangJSX,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".py":   LangPython,
	".pyi":  LangPython,
	".pyw":  LangPython,
	".go":   LangGo,
	".java": LangJava,
}

// DetectLanguage returns the grammar to use for a path, or "" if
// unsupported.
func DetectLanguage(path string) Language {
	return extensionMap[filepath.Ext(path)]
}

// LanguageParser wraps a tree-sitter parser bound to one grammar. Callers
// MUST call Close to release the CGO-backed parser.
type LanguageParser struct {
	parser *sitter.Parser
	lang   Language
}

// NewLanguageParser allocates a parser for lang.
func NewLanguageParser(lang Language) (*LanguageParser, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("parsers: failed to allocate tree-sitter parser")
	}

	var grammar *sitter.Language
	switch lang {
	case LangJavaScript, LangJSX:
		grammar = sitter.NewLanguage(tree_sitter_javascript.Language())
	case LangTypeScript:
		grammar = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case LangTSX:
		grammar = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	case LangPython:
		grammar = sitter.NewLanguage(tree_sitter_python.Language())
	case LangGo:
		grammar = sitter.NewLanguage(tree_sitter_go.Language())
	case LangJava:
		grammar = sitter.NewLanguage(tree_sitter_java.Language())
	default:
		parser.Close()
		return nil, fmt.Errorf("parsers: unsupported language %q", lang)
	}

	if err := parser.SetLanguage(grammar); err != nil {
		parser.Close()
		return nil, fmt.Errorf("parsers: failed to set language %s: %w", lang, err)
	}
	return &LanguageParser{parser: parser, lang: lang}, nil
}

// Close releases the underlying tree-sitter parser.
func (lp *LanguageParser) Close() {
	if lp.parser != nil {
		lp.parser.Close()
	}
}

// Parse parses source bytes into a syntax tree. Caller must Close the tree.
func (lp *LanguageParser) Parse(src []byte) (*sitter.Tree, error) {
	tree := lp.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parsers: failed to parse %s source", lp.lang)
	}
	return tree, nil
}
