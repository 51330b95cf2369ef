package graphwriter

import (
	"strings"

	"github.com/coderisk/graphindex/internal/ir"
)

// componentKinds is the set of kinds PageRank and dependency-depth analytics
// operate over (spec §4.10's "(Component-labels)" subgraph). Membership
// decides whether the generic "Component" label is added alongside a node's
// kind label, so analytics Cypher can match on one stable label regardless
// of which specific kind produced the node — resolved as an Open Question
// since spec.md never enumerates the set explicitly (see DESIGN.md).
var componentKinds = map[ir.Kind]bool{
	ir.KindFile:         true,
	ir.KindPackage:      true,
	ir.KindClass:        true,
	ir.KindInterface:    true,
	ir.KindEnum:         true,
	ir.KindFunction:     true,
	ir.KindMethod:       true,
	ir.KindAnonCallback: true,
	ir.KindController:   true,
	ir.KindService:      true,
	ir.KindRepository:   true,
}

// languageSpecificKinds is the set of kinds spec §3.3 partitions as
// "language-specific types (classes/interfaces/functions/methods/fields per
// language)" — these get an extra per-language label (e.g. JavaClass,
// PythonFunction) alongside the generic kind label, so a query can match
// either the language-agnostic shape or a specific language's.
var languageSpecificKinds = map[ir.Kind]bool{
	ir.KindClass:     true,
	ir.KindInterface: true,
	ir.KindEnum:      true,
	ir.KindFunction:  true,
	ir.KindMethod:    true,
	ir.KindField:     true,
}

// LabelsForKind returns the full, exclusive label set a node of kind/language
// should carry. The graph writer REMOVEs all current labels and SETs exactly
// this set on every upsert (spec §3.2's "sole key" invariant), so a node
// never accumulates a stale label from a prior run where it had a different
// kind.
func LabelsForKind(kind ir.Kind, language string) []string {
	labels := []string{string(kind)}
	if language != "" && languageSpecificKinds[kind] {
		labels = append(labels, languageLabel(language)+string(kind))
	}
	if componentKinds[kind] {
		labels = append(labels, "Component")
	}
	return labels
}

// languageLabel title-cases a language identifier for use as a label
// prefix (java -> Java, javascript -> JavaScript, typescript -> TypeScript).
func languageLabel(language string) string {
	switch language {
	case "javascript":
		return "JavaScript"
	case "typescript":
		return "TypeScript"
	default:
		if language == "" {
			return ""
		}
		return strings.ToUpper(language[:1]) + language[1:]
	}
}

// StereotypeLabel returns the extra label contributed by a node's detected
// stereotype property (the parser's ApplyStereotypes result), or "" if the
// node carries none. Kept separate from LabelsForKind because stereotype is
// a per-node classification, not a static function of Kind.
func StereotypeLabel(properties map[string]interface{}) string {
	if properties == nil {
		return ""
	}
	st, _ := properties["stereotype"].(string)
	return st
}
