package parsers

import (
	"fmt"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/graphindex/internal/ir"
)

// ExtractJSFamily walks a JavaScript/TypeScript/JSX/TSX AST, emitting File/
// Class/Interface/Function/Method nodes plus containment and symbolic call/
// extends edges (TypeScript `implements` clauses are not recorded).
// Grounded directly on the teacher's
// extractJavaScriptEntities and extractTypeScriptEntities walks, merged
// into one extractor since the two grammars share almost every node kind
// the teacher already switches on, generalized to the ir.Node/Edge shape
// and extended with JSX/React component detection and call-edge emission
// the teacher's CodeEntity rows didn't carry.
func ExtractJSFamily(repositoryID, filePath, language string, root *sitter.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	b := newBuilder(repositoryID, filePath, language, src, now)
	fileNode := b.addFileNode(baseName(filePath))
	fileID := fileNode.EntityID

	anonCounter := map[string]int{}

	var v func(*sitter.Node, string)
	v = func(node *sitter.Node, enclosingClassID string) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "import_statement":
			source := childByFieldName(node, "source")
			if source != nil {
				path := strings.Trim(nodeText(source, src), `"'`+"`")
				b.symbolicEdge(ir.EdgeImports, fileID, path, "import", "")
			}

		case "export_statement":
			for i := uint(0); i < node.ChildCount(); i++ {
				v(node.Child(i), enclosingClassID)
			}
			return

		case "function_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			sp := nodeSpan(node)
			qn := ir.QualifiedTopLevelFunction(filePath, name, sp.StartLine)
			fn := b.addNode(ir.KindFunction, qn, name, sp)
			fn.Documentation = docFor(node, src, "javascript")
			fn.Signature = jsSignature(node, src)
			if isReactComponent(name, node, src) {
				fn.Properties = map[string]interface{}{"reactComponent": true}
			}
			b.contains(ir.EdgeContains, fileID, fn.EntityID)
			emitJSCalls(b, node, fn.EntityID, src)

		case "arrow_function", "function_expression":
			parent := node.Parent()
			var name string
			if parent != nil {
				switch parent.Kind() {
				case "variable_declarator":
					if n := childByFieldName(parent, "name"); n != nil {
						name = nodeText(n, src)
					}
				case "assignment_expression":
					if n := childByFieldName(parent, "left"); n != nil {
						name = nodeText(n, src)
					}
				case "pair":
					if n := childByFieldName(parent, "key"); n != nil {
						name = nodeText(n, src)
					}
				}
			}
			sp := nodeSpan(node)
			var qn string
			if name == "" {
				caller := enclosingFunctionName(node, src)
				anonCounter[caller]++
				qn = ir.QualifiedCallback(caller, anonCounter[caller])
				name = "<anonymous>"
			} else {
				qn = ir.QualifiedTopLevelFunction(filePath, name, sp.StartLine)
			}
			fn := b.addNode(ir.KindFunction, qn, name, sp)
			fn.Signature = jsSignature(node, src)
			if name != "<anonymous>" {
				b.contains(ir.EdgeContains, fileID, fn.EntityID)
			}
			emitJSCalls(b, node, fn.EntityID, src)

		case "class_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			qn := ir.QualifiedFilePath(filePath, name)
			sp := nodeSpan(node)
			cls := b.addNode(ir.KindClass, qn, name, sp)
			cls.Documentation = docFor(node, src, "javascript")
			b.contains(ir.EdgeDefinesClass, fileID, cls.EntityID)

			if heritage := childByFieldName(node, "superclass"); heritage != nil {
				b.symbolicEdge(ir.EdgeExtends, cls.EntityID, strings.TrimSpace(nodeText(heritage, src)), "extends", "")
			}

			body := childByFieldName(node, "body")
			if body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					v(body.Child(i), cls.EntityID)
				}
			}
			return

		case "interface_declaration", "type_alias_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			kind := ir.KindInterface
			if node.Kind() == "type_alias_declaration" {
				kind = ir.KindClass
			}
			qn := ir.QualifiedFilePath(filePath, name)
			sp := nodeSpan(node)
			iface := b.addNode(kind, qn, name, sp)
			b.contains(ir.EdgeDefinesClass, fileID, iface.EntityID)

		case "method_definition", "method_signature":
			if enclosingClassID == "" {
				break
			}
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			sig := jsSignature(node, src)
			qn := ir.QualifiedMember(enclosingClassID, name, len(sig.Parameters))
			sp := nodeSpan(node)
			m := b.addNode(ir.KindMethod, qn, name, sp)
			m.Documentation = docFor(node, src, "javascript")
			m.Signature = sig
			b.contains(ir.EdgeHasMethod, enclosingClassID, m.EntityID)
			emitJSCalls(b, node, m.EntityID, src)
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			v(node.Child(i), enclosingClassID)
		}
	}
	v(root, "")

	return b.result()
}

func jsSignature(node *sitter.Node, src []byte) *ir.Signature {
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
			case "required_parameter", "optional_parameter":
				name := textOf(childByFieldName(p, "pattern"), src)
				typeAnn := childByFieldName(p, "type")
				param := ir.Parameter{Name: name, Optional: p.Kind() == "optional_parameter"}
				if typeAnn != nil {
					param.Type = nodeText(typeAnn, src)
				}
				sig.Parameters = append(sig.Parameters, param)
			case "rest_pattern":
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: nodeText(p, src), Variadic: true})
			case "assignment_pattern":
				left := textOf(childByFieldName(p, "left"), src)
				right := textOf(childByFieldName(p, "right"), src)
				sig.Parameters = append(sig.Parameters, ir.Parameter{Name: left, Default: right, Optional: true})
			}
		}
	}
	if rt := childByFieldName(node, "return_type"); rt != nil {
		sig.ReturnType = strings.TrimPrefix(nodeText(rt, src), ": ")
	}
	full := nodeText(node, src)
	sig.Async = strings.Contains(full[:min(len(full), 20)], "async")
	sig.Rendered = full
	if len(sig.Rendered) > 200 {
		sig.Rendered = sig.Rendered[:200]
	}
	return sig
}

func emitJSCalls(b *builder, fn *sitter.Node, fnID string, src []byte) {
	body := childByFieldName(fn, "body")
	if body == nil {
		return
	}
	seen := map[string]bool{}
	walk(body, func(n *sitter.Node) bool {
		if n.Kind() == "call_expression" {
			fnNode := childByFieldName(n, "function")
			name := jsCalleeName(fnNode, src)
			if name != "" && !seen[name] {
				seen[name] = true
				b.symbolicEdge(ir.EdgeCalls, fnID, name, "call", "")
			}
		}
		return true
	})
}

func jsCalleeName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier":
		return nodeText(node, src)
	case "member_expression":
		if prop := childByFieldName(node, "property"); prop != nil {
			return nodeText(prop, src)
		}
	}
	return ""
}

func isReactComponent(name string, node *sitter.Node, src []byte) bool {
	if len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	return strings.Contains(nodeText(node, src), "return")
}

func enclosingFunctionName(node *sitter.Node, src []byte) string {
	current := node.Parent()
	for current != nil {
		switch current.Kind() {
		case "function_declaration", "method_definition":
			if n := childByFieldName(current, "name"); n != nil {
				return nodeText(n, src)
			}
		case "arrow_function", "function_expression":
			if p := current.Parent(); p != nil && p.Kind() == "variable_declarator" {
				if n := childByFieldName(p, "name"); n != nil {
					return nodeText(n, src)
				}
			}
		}
		current = current.Parent()
	}
	return fmt.Sprintf("file_%d", node.StartPosition().Row)
}
