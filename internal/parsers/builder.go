package parsers

import (
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// builder accumulates nodes/edges for one file and centralizes entityId
// construction so every per-language extractor computes qualified names the
// same way.
type builder struct {
	repositoryID string
	filePath     string
	language     string
	src          []byte
	now          time.Time

	nodes []ir.Node
	edges []ir.Edge
}

func newBuilder(repositoryID, filePath, language string, src []byte, now time.Time) *builder {
	return &builder{repositoryID: repositoryID, filePath: filePath, language: language, src: src, now: now}
}

func (b *builder) addNode(kind ir.Kind, qualifiedName, name string, sp span) *ir.Node {
	n := ir.Node{
		EntityID:     ir.Fingerprint(b.repositoryID, kind, qualifiedName),
		RepositoryID: b.repositoryID,
		Kind:         kind,
		Name:         name,
		FilePath:     b.filePath,
		Language:     b.language,
		StartLine:    sp.StartLine,
		EndLine:      sp.EndLine,
		StartColumn:  sp.StartColumn,
		EndColumn:    sp.EndColumn,
		CreatedAt:    b.now,
	}
	b.nodes = append(b.nodes, n)
	return &b.nodes[len(b.nodes)-1]
}

func (b *builder) addFileNode(name string) *ir.Node {
	qn := ir.NormalizePath(b.filePath)
	n := ir.Node{
		EntityID:     ir.Fingerprint(b.repositoryID, ir.KindFile, qn),
		RepositoryID: b.repositoryID,
		Kind:         ir.KindFile,
		Name:         name,
		FilePath:     b.filePath,
		Language:     b.language,
		CreatedAt:    b.now,
	}
	b.nodes = append(b.nodes, n)
	return &b.nodes[len(b.nodes)-1]
}

// contains emits a containment edge of type edgeType from parent to child,
// keyed by the pair so MERGE never duplicates it.
func (b *builder) contains(edgeType ir.EdgeType, parentID, childID string) {
	b.edges = append(b.edges, ir.Edge{
		EntityID:       ir.EdgeFingerprint(edgeType, parentID, childID, ""),
		RepositoryID:   b.repositoryID,
		Type:           edgeType,
		SourceEntityID: parentID,
		TargetEntityID: childID,
		CreatedAt:      b.now,
	})
}

// symbolicEdge emits an unresolved reference for the resolver (pass 2) to
// rewrite, per spec §4.6: "emitted as symbolic edges with targetId =
// <unresolved-symbol> and a kind tag".
func (b *builder) symbolicEdge(edgeType ir.EdgeType, sourceID, symbolicTarget, symbolicKind string, disambiguator string) {
	b.edges = append(b.edges, ir.Edge{
		EntityID:       ir.EdgeFingerprint(edgeType, sourceID, symbolicTarget, disambiguator),
		RepositoryID:   b.repositoryID,
		Type:           edgeType,
		SourceEntityID: sourceID,
		TargetEntityID: symbolicTarget,
		Symbolic:       true,
		SymbolicTarget: symbolicTarget,
		SymbolicKind:   symbolicKind,
		CreatedAt:      b.now,
	})
}

func (b *builder) result() ([]ir.Node, []ir.Edge) {
	return b.nodes, b.edges
}

// parseDocComment splits a raw comment body into the {summary, tags}
// shape: every non-blank line before the first @tag line joins the
// summary, and each @tag line becomes one normalized tag entry.
func parseDocComment(raw, format string) *ir.Documentation {
	if raw == "" {
		return nil
	}
	lines := splitLines(raw)
	var summaryLines []string
	tags := map[string]string{}
	inSummary := true
	for _, line := range lines {
		line = trimCommentMarkers(line)
		if line == "" {
			continue
		}
		if line[0] == '@' {
			inSummary = false
			tag, val := splitTagLine(line)
			tags[normalizeDocTag(tag)] = val
			continue
		}
		if inSummary {
			summaryLines = append(summaryLines, line)
		}
	}
	return &ir.Documentation{
		Summary:    joinLines(summaryLines),
		RawComment: raw,
		Tags:       tags,
		Format:     format,
	}
}
