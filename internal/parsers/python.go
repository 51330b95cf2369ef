package parsers

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/graphindex/internal/ir"
)

// ExtractPython walks a Python module's AST, emitting File/Class/Function/
// Method nodes. Grounded on extractPythonFunctionDefinition/
// extractPythonClassDefinition, generalized to ir.Node/Edge and extended
// with docstring capture (the first string-literal statement in a body) in
// place of the teacher's unused comment scanning, since Python's doc
// convention is a body-leading string, not a preceding comment block.
func ExtractPython(repositoryID, filePath string, root *sitter.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	b := newBuilder(repositoryID, filePath, "python", src, now)
	fileNode := b.addFileNode(baseName(filePath))
	fileID := fileNode.EntityID

	var v func(*sitter.Node, string)
	v = func(node *sitter.Node, enclosingClassID string) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "import_statement":
			if n := childByFieldName(node, "name"); n != nil {
				b.symbolicEdge(ir.EdgeImports, fileID, nodeText(n, src), "import", "")
			}

		case "import_from_statement":
			if n := childByFieldName(node, "module_name"); n != nil {
				b.symbolicEdge(ir.EdgeImports, fileID, nodeText(n, src), "import", "")
			}

		case "class_definition":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			qn := ir.QualifiedFilePath(filePath, name)
			sp := nodeSpan(node)
			cls := b.addNode(ir.KindClass, qn, name, sp)
			cls.Documentation = pythonDocstring(node, src)
			b.contains(ir.EdgeDefinesClass, fileID, cls.EntityID)

			if bases := childByFieldName(node, "superclasses"); bases != nil {
				walk(bases, func(n *sitter.Node) bool {
					if n.Kind() == "identifier" {
						b.symbolicEdge(ir.EdgeExtends, cls.EntityID, nodeText(n, src), "extends", nodeText(n, src))
					}
					return true
				})
			}

			body := childByFieldName(node, "body")
			if body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					v(body.Child(i), cls.EntityID)
				}
			}
			return

		case "function_definition":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			sig := pythonSignature(node, src)
			var qn string
			var kind ir.Kind
			var edgeType ir.EdgeType
			var parentID string
			if enclosingClassID != "" {
				kind = ir.KindMethod
				edgeType = ir.EdgeHasMethod
				parentID = enclosingClassID
				qn = ir.QualifiedMember(enclosingClassID, name, len(sig.Parameters))
			} else {
				kind = ir.KindFunction
				edgeType = ir.EdgeContains
				parentID = fileID
				sp := nodeSpan(node)
				qn = ir.QualifiedTopLevelFunction(filePath, name, sp.StartLine)
			}
			sp := nodeSpan(node)
			fn := b.addNode(kind, qn, name, sp)
			fn.Documentation = pythonDocstring(node, src)
			fn.Signature = sig
			b.contains(edgeType, parentID, fn.EntityID)
			emitPythonCalls(b, node, fn.EntityID, src)
			return
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			v(node.Child(i), enclosingClassID)
		}
	}
	v(root, "")

	return b.result()
}

func pythonSignature(node *sitter.Node, src []byte) *ir.Signature {
	sig := &ir.Signature{}
	params := childByFieldName(node, "parameters")
	if params != nil {
		for i := uint(0); i < params.ChildCount(); i++ {
			p := params.Child(i)
			if p == nil {
				continue
			}
			switch p.Kind() {
			case "identifier":
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: nodeText(p, src)})
			case "typed_parameter":
				name := ""
				if p.ChildCount() > 0 {
					name = nodeText(p.Child(0), src)
				}
				typeNode := childByFieldName(p, "type")
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: name, Type: textOf(typeNode, src)})
			case "default_parameter":
				name := textOf(childByFieldName(p, "name"), src)
				val := textOf(childByFieldName(p, "value"), src)
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: name, Default: val, Optional: true})
			case "list_splat_pattern", "dictionary_splat_pattern":
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: nodeText(p, src), Variadic: true})
			}
		}
	}
	if rt := childByFieldName(node, "return_type"); rt != nil {
		sig.ReturnType = nodeText(rt, src)
	}
	sig.Rendered = "def " + textOf(childByFieldName(node, "name"), src) + textOf(params, src)
	return sig
}

// pythonDocstring extracts the first string-literal expression statement in
// node's body, Python's docstring convention.
func pythonDocstring(node *sitter.Node, src []byte) *ir.Documentation {
	body := childByFieldName(node, "body")
	if body == nil || body.ChildCount() == 0 {
		return nil
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return nil
	}
	strNode := first.Child(0)
	if strNode == nil || strNode.Kind() != "string" {
		return nil
	}
	raw := strings.Trim(nodeText(strNode, src), `"' `)
	if raw == "" {
		return nil
	}
	lines := splitLines(raw)
	var summary string
	if len(lines) > 0 {
		summary = strings.TrimSpace(lines[0])
	}
	return &ir.Documentation{Summary: summary, RawComment: raw, Format: "docstring"}
}

func emitPythonCalls(b *builder, node *sitter.Node, callerID string, src []byte) {
	body := childByFieldName(node, "body")
	if body == nil {
		return
	}
	seen := map[string]bool{}
	walk(body, func(n *sitter.Node) bool {
		if n.Kind() == "call" {
			fnNode := childByFieldName(n, "function")
			name := pythonCalleeName(fnNode, src)
			if name != "" && !seen[name] {
				seen[name] = true
				b.symbolicEdge(ir.EdgeCalls, callerID, name, "call", "")
			}
		}
		return true
	})
}

func pythonCalleeName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier":
		return nodeText(node, src)
	case "attribute":
		if attr := childByFieldName(node, "attribute"); attr != nil {
			return nodeText(attr, src)
		}
	}
	return ""
}
