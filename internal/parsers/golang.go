package parsers

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/graphindex/internal/ir"
)

// ExtractGo walks a Go source file's AST and emits its File/Package/
// Function/Method/Type nodes plus containment and symbolic call edges.
// Grounded on the teacher's extractJavaScriptEntities walk shape, adapted
// to Go's grammar (no classes; methods are functions with a receiver).
func ExtractGo(repositoryID, filePath string, root *sitter.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	b := newBuilder(repositoryID, filePath, "go", src, now)
	fileNode := b.addFileNode(baseName(filePath))
	fileID := fileNode.EntityID

	var packageName string

	var v func(*sitter.Node)
	v = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "package_clause":
			if n := childByFieldName(node, "name"); n != nil {
				packageName = nodeText(n, src)
			}

		case "import_spec":
			if n := childByFieldName(node, "path"); n != nil {
				path := trimQuotes(nodeText(n, src))
				b.symbolicEdge(ir.EdgeImports, fileID, path, "import", "")
			}

		case "function_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			sp := nodeSpan(node)
			qn := ir.QualifiedTopLevelFunction(filePath, name, sp.StartLine)
			fn := b.addNode(ir.KindFunction, qn, name, sp)
			fn.Documentation = docFor(node, src, "go")
			fn.Signature = goSignature(node, src)
			b.contains(ir.EdgeContains, fileID, fn.EntityID)
			emitCalls(b, node, fn.EntityID, src)

		case "method_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			recv := childByFieldName(node, "receiver")
			recvType := receiverTypeName(recv, src)
			if name == "" || recvType == "" {
				break
			}
			parentID := ir.Fingerprint(repositoryID, ir.KindClass, goTypeQualifiedName(packageName, filePath, recvType))
			sig := goSignature(node, src)
			qn := ir.QualifiedMember(parentID, name, len(sig.Parameters))
			sp := nodeSpan(node)
			m := b.addNode(ir.KindMethod, qn, name, sp)
			m.Documentation = docFor(node, src, "go")
			m.Signature = sig
			b.contains(ir.EdgeHasMethod, parentID, m.EntityID)
			emitCalls(b, node, m.EntityID, src)

		case "type_declaration":
			for i := uint(0); i < node.ChildCount(); i++ {
				spec := node.Child(i)
				if spec == nil || spec.Kind() != "type_spec" {
					continue
				}
				name := textOf(childByFieldName(spec, "name"), src)
				if name == "" {
					continue
				}
				typeBody := childByFieldName(spec, "type")
				kind := ir.KindClass
				if typeBody != nil && typeBody.Kind() == "interface_type" {
					kind = ir.KindInterface
				}
				qn := goTypeQualifiedName(packageName, filePath, name)
				sp := nodeSpan(spec)
				t := b.addNode(kind, qn, name, sp)
				t.Documentation = docFor(node, src, "go")
				b.contains(ir.EdgeDefinesClass, fileID, t.EntityID)
			}
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			v(node.Child(i))
		}
	}
	v(root)

	if packageName != "" {
		qn := ir.QualifiedFilePath(filePath, packageName)
		pkg := b.addNode(ir.KindPackage, qn, packageName, span{})
		b.contains(ir.EdgeDeclaresPkg, fileID, pkg.EntityID)
	}

	return b.result()
}

// goTypeQualifiedName builds the §3.2 qualified name for a Go type
// (struct/interface): package.Name when the file declares a package,
// falling back to filePath:name for the (invalid but tolerated) case of no
// package clause.
func goTypeQualifiedName(packageName, filePath, name string) string {
	if packageName == "" {
		return ir.QualifiedFilePath(filePath, name)
	}
	return ir.QualifiedPackageMember(packageName, name)
}

func receiverTypeName(recv *sitter.Node, src []byte) string {
	if recv == nil {
		return ""
	}
	var name string
	walk(recv, func(n *sitter.Node) bool {
		if n.Kind() == "type_identifier" {
			name = nodeText(n, src)
		}
		return true
	})
	return name
}

func goSignature(node *sitter.Node, src []byte) *ir.Signature {
	sig := &ir.Signature{}
	params := childByFieldName(node, "parameters")
	if params != nil {
		for i := uint(0); i < params.ChildCount(); i++ {
			p := params.Child(i)
			if p == nil || p.Kind() != "parameter_declaration" {
				continue
			}
			typeNode := childByFieldName(p, "type")
			typeName := textOf(typeNode, src)
			nameNode := childByFieldName(p, "name")
			if nameNode != nil {
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: nodeText(nameNode, src), Type: typeName})
			} else {
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: "_", Type: typeName})
			}
		}
	}
	if result := childByFieldName(node, "result"); result != nil {
		sig.ReturnType = nodeText(result, src)
	}
	sig.Rendered = nodeText(node, src)
	if len(sig.Rendered) > 200 {
		sig.Rendered = sig.Rendered[:200]
	}
	return sig
}

// emitCalls walks fn's body for call_expression nodes and emits a symbolic
// CALLS edge per distinct callee name.
func emitCalls(b *builder, fn *sitter.Node, fnID string, src []byte) {
	body := childByFieldName(fn, "body")
	if body == nil {
		return
	}
	seen := map[string]bool{}
	walk(body, func(n *sitter.Node) bool {
		if n.Kind() == "call_expression" {
			callee := childByFieldName(n, "function")
			name := calleeName(callee, src)
			if name != "" && !seen[name] {
				seen[name] = true
				b.symbolicEdge(ir.EdgeCalls, fnID, name, "call", "")
			}
		}
		return true
	})
}

func calleeName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier", "field_identifier":
		return nodeText(node, src)
	case "selector_expression":
		if field := childByFieldName(node, "field"); field != nil {
			return nodeText(field, src)
		}
	}
	return nodeText(node, src)
}

func textOf(node *sitter.Node, src []byte) string {
	return nodeText(node, src)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func docFor(node *sitter.Node, src []byte, lang string) *ir.Documentation {
	raw := precedingComment(node, src, lang)
	if raw == "" {
		return nil
	}
	format := map[string]string{"go": "godoc", "java": "javadoc", "javascript": "jsdoc", "typescript": "jsdoc"}[lang]
	return parseDocComment(raw, format)
}
