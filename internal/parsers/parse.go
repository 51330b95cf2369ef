package parsers

import (
	"os"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// ParseFile dispatches to the language-specific extractor and layers the
// specialized extractors (SQL, route, test, stereotype, validation-chain)
// over the same parsed tree, matching the combined-output shape of
// treesitter.ParseFile generalized to ir.Node/ir.Edge.
func ParseFile(repositoryID, filePath string, now time.Time) ir.ParseResult {
	lang := DetectLanguage(filePath)
	if lang == "" {
		return ir.ParseResult{FilePath: filePath}
	}

	src, err := os.ReadFile(filePath)
	if err != nil {
		return ir.ParseResult{FilePath: filePath, Err: err}
	}

	lp, err := NewLanguageParser(lang)
	if err != nil {
		return ir.ParseResult{FilePath: filePath, Language: string(lang), Err: err}
	}
	defer lp.Close()

	tree, err := lp.Parse(src)
	if err != nil {
		return ir.ParseResult{FilePath: filePath, Language: string(lang), Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()

	var nodes []ir.Node
	var edges []ir.Edge
	switch lang {
	case LangJavaScript, LangJSX, LangTypeScript, LangTSX:
		nodes, edges = ExtractJSFamily(repositoryID, filePath, string(lang), root, src, now)
	case LangPython:
		nodes, edges = ExtractPython(repositoryID, filePath, root, src, now)
	case LangGo:
		nodes, edges = ExtractGo(repositoryID, filePath, root, src, now)
	case LangJava:
		nodes, edges = ExtractJava(repositoryID, filePath, root, src, now)
	}

	fileEntityID := ir.Fingerprint(repositoryID, ir.KindFile, ir.NormalizePath(filePath))

	if sqlNodes, sqlEdges := ExtractSQL(repositoryID, filePath, nodes, src, now); len(sqlNodes) > 0 {
		nodes = append(nodes, sqlNodes...)
		edges = append(edges, sqlEdges...)
	}
	if testNodes, testEdges := DetectTests(repositoryID, filePath, string(lang), nodes, src, now); len(testNodes) > 0 {
		nodes = append(nodes, testNodes...)
		edges = append(edges, testEdges...)
	}
	if routeNodes, routeEdges := DetectRoutes(repositoryID, filePath, string(lang), fileEntityID, nodes, src, now); len(routeNodes) > 0 {
		nodes = append(nodes, routeNodes...)
		edges = append(edges, routeEdges...)
	}
	ApplyStereotypes(nodes)
	if vcNodes, vcEdges := ExtractValidationChains(repositoryID, filePath, nodes, src, now); len(vcNodes) > 0 {
		nodes = append(nodes, vcNodes...)
		edges = append(edges, vcEdges...)
	}

	return ir.ParseResult{
		FilePath: filePath,
		Language: string(lang),
		Nodes:    nodes,
		Edges:    edges,
	}
}
