package parsers

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/graphindex/internal/ir"
)

// ExtractJava walks a Java source file's AST, emitting File/Package/Class/
// Interface/Method/Field nodes. Grounded on the teacher's
// extractClassDeclaration/extractMethodDefinition shape, extended with
// Javadoc capture, modifiers/visibility, and annotation tags used by the
// stereotype detector.
func ExtractJava(repositoryID, filePath string, root *sitter.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	b := newBuilder(repositoryID, filePath, "java", src, now)
	fileNode := b.addFileNode(baseName(filePath))
	fileID := fileNode.EntityID

	packageName := javaPackageName(root, src)

	var v func(*sitter.Node, string, string)
	v = func(node *sitter.Node, enclosingClassID, enclosingQualifiedName string) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "package_declaration":
			name := packageName
			if name != "" {
				qn := ir.QualifiedFilePath(filePath, name)
				pkg := b.addNode(ir.KindPackage, qn, name, span{})
				b.contains(ir.EdgeDeclaresPkg, fileID, pkg.EntityID)
			}

		case "import_declaration":
			imp := strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(nodeText(node, src), ";"), "import"))
			if imp != "" {
				b.symbolicEdge(ir.EdgeImports, fileID, strings.TrimSpace(imp), "import", "")
			}

		case "class_declaration", "interface_declaration", "enum_declaration":
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				break
			}
			kind := ir.KindClass
			switch node.Kind() {
			case "interface_declaration":
				kind = ir.KindInterface
			case "enum_declaration":
				kind = ir.KindEnum
			}
			// §3.2: class/interface/enum qualified names are package.Name,
			// not filePath:name — filePath:name is only the fallback for
			// file-scoped kinds with no enclosing package/namespace.
			qualifiedName := name
			switch {
			case enclosingQualifiedName != "":
				qualifiedName = enclosingQualifiedName + "." + name
			case packageName != "":
				qualifiedName = ir.QualifiedPackageMember(packageName, name)
			}
			qn := qualifiedName
			if packageName == "" && enclosingQualifiedName == "" {
				qn = ir.QualifiedFilePath(filePath, name)
			}
			sp := nodeSpan(node)
			cls := b.addNode(kind, qn, name, sp)
			cls.Documentation = docFor(node, src, "java")
			cls.Properties = map[string]interface{}{"annotations": annotationNames(node, src)}
			b.contains(ir.EdgeDefinesClass, fileID, cls.EntityID)

			if superclass := childByFieldName(node, "superclass"); superclass != nil {
				b.symbolicEdge(ir.EdgeExtends, cls.EntityID, extendedTypeName(superclass, src), "extends", "")
			}
			if interfaces := childByFieldName(node, "interfaces"); interfaces != nil {
				walk(interfaces, func(n *sitter.Node) bool {
					if n.Kind() == "type_identifier" {
						b.symbolicEdge(ir.EdgeImplements, cls.EntityID, nodeText(n, src), "implements", nodeText(n, src))
					}
					return true
				})
			}

			body := childByFieldName(node, "body")
			if body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					v(body.Child(i), cls.EntityID, qualifiedName)
				}
			}
			return

		case "method_declaration", "constructor_declaration":
			if enclosingClassID == "" {
				break
			}
			name := textOf(childByFieldName(node, "name"), src)
			if name == "" {
				name = "<init>"
			}
			sig := javaSignature(node, src)
			qn := ir.QualifiedMember(enclosingClassID, name, len(sig.Parameters))
			sp := nodeSpan(node)
			m := b.addNode(ir.KindMethod, qn, name, sp)
			m.Documentation = docFor(node, src, "java")
			m.Signature = sig
			b.contains(ir.EdgeHasMethod, enclosingClassID, m.EntityID)
			emitJavaCalls(b, node, m.EntityID, src)

		case "field_declaration":
			if enclosingClassID == "" {
				break
			}
			typeNode := childByFieldName(node, "type")
			typeName := textOf(typeNode, src)
			for i := uint(0); i < node.ChildCount(); i++ {
				decl := node.Child(i)
				if decl == nil || decl.Kind() != "variable_declarator" {
					continue
				}
				name := textOf(childByFieldName(decl, "name"), src)
				if name == "" {
					continue
				}
				qn := ir.QualifiedMember(enclosingClassID, name, -1)
				sp := nodeSpan(node)
				f := b.addNode(ir.KindField, qn, name, sp)
				f.Properties = map[string]interface{}{"type": typeName, "annotations": annotationNames(node, src)}
				b.contains(ir.EdgeHasField, enclosingClassID, f.EntityID)
			}
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			v(node.Child(i), enclosingClassID, enclosingQualifiedName)
		}
	}
	v(root, "", "")

	return b.result()
}

// javaPackageName returns the file's declared package name, or "" if the
// file has no package_declaration (the default package).
func javaPackageName(root *sitter.Node, src []byte) string {
	var name string
	walk(root, func(n *sitter.Node) bool {
		if name != "" {
			return false
		}
		if n.Kind() == "package_declaration" {
			for i := uint(0); i < n.ChildCount(); i++ {
				if c := n.Child(i); c != nil && (c.Kind() == "scoped_identifier" || c.Kind() == "identifier") {
					name = textOf(c, src)
				}
			}
			return false
		}
		return true
	})
	return name
}

func javaSignature(node *sitter.Node, src []byte) *ir.Signature {
	sig := &ir.Signature{}
	mods := childByFieldName(node, "modifiers")
	visibility := "package"
	for _, kw := range []string{"public", "private", "protected"} {
		if mods != nil && strings.Contains(nodeText(mods, src), kw) {
			visibility = kw
		}
	}
	sig.Visibility = visibility
	if mods != nil {
		text := nodeText(mods, src)
		if strings.Contains(text, "static") {
			sig.Static = true
		}
		if strings.Contains(text, "abstract") {
			sig.Abstract = true
		}
	}
	params := childByFieldName(node, "parameters")
	if params != nil {
		for i := uint(0); i < params.ChildCount(); i++ {
			p := params.Child(i)
			if p == nil || p.Kind() != "formal_parameter" {
				continue
			}
			typeName := textOf(childByFieldName(p, "type"), src)
			nameNode := childByFieldName(p, "name")
			sig.Parameters = append(sig.Parameters, ir.Parameter{Name: nodeText(nameNode, src), Type: typeName})
		}
	}
	if t := childByFieldName(node, "type"); t != nil {
		sig.ReturnType = nodeText(t, src)
	}
	sig.Rendered = nodeText(node, src)
	if len(sig.Rendered) > 200 {
		sig.Rendered = sig.Rendered[:200]
	}
	return sig
}

func emitJavaCalls(b *builder, node *sitter.Node, callerID string, src []byte) {
	body := childByFieldName(node, "body")
	if body == nil {
		return
	}
	seen := map[string]bool{}
	walk(body, func(n *sitter.Node) bool {
		if n.Kind() == "method_invocation" {
			if name := textOf(childByFieldName(n, "name"), src); name != "" && !seen[name] {
				seen[name] = true
				b.symbolicEdge(ir.EdgeCalls, callerID, name, "call", "")
			}
		}
		return true
	})
}

func annotationNames(node *sitter.Node, src []byte) []string {
	var names []string
	modifiers := childByFieldName(node, "modifiers")
	if modifiers == nil {
		return names
	}
	walk(modifiers, func(n *sitter.Node) bool {
		if n.Kind() == "marker_annotation" || n.Kind() == "annotation" {
			if nameNode := childByFieldName(n, "name"); nameNode != nil {
				names = append(names, nodeText(nameNode, src))
			}
		}
		return true
	})
	return names
}

func extendedTypeName(node *sitter.Node, src []byte) string {
	var name string
	walk(node, func(n *sitter.Node) bool {
		if n.Kind() == "type_identifier" && name == "" {
			name = nodeText(n, src)
		}
		return true
	})
	return name
}
