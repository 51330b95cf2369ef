package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source text spanned by node.
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(src) {
		end = uint(len(src))
	}
	if start > end {
		return ""
	}
	return string(src[start:end])
}

// span converts a node's position to the location fields spec §4.6 mandates:
// 1-based lines, 0-based columns, end-line inclusive.
type span struct {
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
}

func nodeSpan(node *sitter.Node) span {
	start := node.StartPosition()
	end := node.EndPosition()
	return span{
		StartLine:   int(start.Row) + 1,
		EndLine:     int(end.Row) + 1,
		StartColumn: int(start.Column),
		EndColumn:   int(end.Column),
	}
}

// childByFieldName is a nil-safe wrapper mirroring the teacher's repeated
// "if nameNode == nil { return }" early-exit idiom.
func childByFieldName(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(field)
}

// findParentOfKinds walks up the tree looking for the nearest ancestor
// whose Kind() is one of kinds, returning its name-field text if present.
func findParentOfKinds(node *sitter.Node, src []byte, kinds ...string) (name string, found *sitter.Node) {
	current := node.Parent()
	for current != nil {
		for _, k := range kinds {
			if current.Kind() == k {
				if n := childByFieldName(current, "name"); n != nil {
					return nodeText(n, src), current
				}
				return "", current
			}
		}
		current = current.Parent()
	}
	return "", nil
}

// walk performs a pre-order traversal, calling visit on every node.
// Returning false from visit skips that node's children.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

// normalizeDocTag maps raw doc-comment tags to the normalized vocabulary
// spec §4.6 requires (e.g. "@return" -> "returns").
func normalizeDocTag(tag string) string {
	tag = strings.TrimPrefix(tag, "@")
	switch strings.ToLower(tag) {
	case "return", "returns":
		return "returns"
	case "param", "parameter", "arg", "argument":
		return "param"
	case "throws", "exception", "raises":
		return "throws"
	case "deprecated":
		return "deprecated"
	case "see", "seealso":
		return "see"
	case "author":
		return "author"
	default:
		return strings.ToLower(tag)
	}
}
