// Package resolver implements the cross-file resolver (pass 2): it loads the
// full set of pass-1 nodes, indexes them by name, and rewrites each
// symbolic edge emitted during parsing into one or more concrete edges.
//
// The ranking shape — score every candidate, accept a unique winner, else
// fall back to a documented tie-breaking rule — is grounded on
// internal/graph/semantic_matcher.go's confidence-scored candidate ranking
// for issue/PR linking, adapted from text-similarity scoring to
// resolution-scope scoring (same package > same module > same repository).
package resolver

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// candidateKindsFor restricts which node kinds are plausible resolution
// targets for a given symbolic reference kind, so a CALLS edge never
// resolves onto a Class and an EXTENDS edge never resolves onto a Function.
var candidateKindsFor = map[string][]ir.Kind{
	"call":       {ir.KindFunction, ir.KindMethod, ir.KindAnonCallback},
	"import":     {ir.KindFile, ir.KindPackage},
	"extends":    {ir.KindClass},
	"implements": {ir.KindInterface},
}

// Index is the in-memory lookup pass 1 output is loaded into before
// resolution. It is built once per repository and reused across every
// symbolic edge.
type Index struct {
	byEntityID map[string]ir.Node
	byName     map[string][]ir.Node
}

// NewIndex builds a resolution index from the full set of pass-1 nodes.
func NewIndex(nodes []ir.Node) *Index {
	idx := &Index{
		byEntityID: make(map[string]ir.Node, len(nodes)),
		byName:     make(map[string][]ir.Node),
	}
	for _, n := range nodes {
		idx.byEntityID[n.EntityID] = n
		idx.byName[n.Name] = append(idx.byName[n.Name], n)
	}
	return idx
}

// Result is what Resolve returns for one repository's full edge set.
type Result struct {
	Edges            []ir.Edge // concrete edges, including CROSS_FILE_ mirrors
	PlaceholderNodes []ir.Node
}

// Resolve rewrites every symbolic edge in edges against idx, per spec §4.7:
// unique match rewrites in place, multiple tied matches emit one ambiguous
// edge per candidate, no match leaves a Placeholder target. Edges that were
// never symbolic pass through unchanged.
func Resolve(repositoryID string, idx *Index, edges []ir.Edge, now time.Time) Result {
	var out []ir.Edge
	placeholders := make(map[string]ir.Node) // keyed by symbol name+kind, deduped

	for _, e := range edges {
		if !e.Symbolic {
			out = append(out, e)
			continue
		}

		source, haveSource := idx.byEntityID[e.SourceEntityID]
		symbolName := lastSegment(e.SymbolicTarget)
		candidates := filterByKind(idx.byName[symbolName], e.SymbolicKind)

		if len(candidates) == 0 {
			ph := placeholderFor(repositoryID, e.SymbolicTarget, e.SymbolicKind, now)
			placeholders[ph.EntityID] = ph
			out = append(out, concreteEdge(e, ph.EntityID, haveSource, source, ph, false, true))
			continue
		}

		ranked := rankCandidates(source, haveSource, candidates)
		winners := topTier(ranked)

		if len(winners) == 1 {
			target := winners[0].node
			out = append(out, concreteEdge(e, target.EntityID, haveSource, source, target, false, false))
			continue
		}

		for _, w := range winners {
			out = append(out, concreteEdge(e, w.node.EntityID, haveSource, source, w.node, true, false))
		}
	}

	nodes := make([]ir.Node, 0, len(placeholders))
	for _, ph := range placeholders {
		nodes = append(nodes, ph)
	}
	return Result{Edges: out, PlaceholderNodes: nodes}
}

type scored struct {
	node  ir.Node
	scope int // higher is nearer: 2 = same package, 1 = same module, 0 = same repository
}

// rankCandidates scores each candidate's resolution distance from the
// source node's file, nearest first: same package > same module > same
// repository. "Package" is the source file's directory;
// "module" is its top-level path component.
func rankCandidates(source ir.Node, haveSource bool, candidates []ir.Node) []scored {
	out := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		scope := 0
		if haveSource {
			switch {
			case filepath.Dir(c.FilePath) == filepath.Dir(source.FilePath):
				scope = 2
			case topLevelDir(c.FilePath) == topLevelDir(source.FilePath):
				scope = 1
			}
		}
		out = append(out, scored{node: c, scope: scope})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].scope > out[j].scope })
	return out
}

// topTier returns every candidate tied for the highest scope score.
func topTier(ranked []scored) []scored {
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0].scope
	var winners []scored
	for _, r := range ranked {
		if r.scope != best {
			break
		}
		winners = append(winners, r)
	}
	return winners
}

func filterByKind(candidates []ir.Node, symbolicKind string) []ir.Node {
	allowed, ok := candidateKindsFor[symbolicKind]
	if !ok {
		return candidates
	}
	var out []ir.Node
	for _, c := range candidates {
		for _, k := range allowed {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func concreteEdge(e ir.Edge, targetEntityID string, haveSource bool, source, target ir.Node, ambiguous, unresolved bool) ir.Edge {
	out := e
	out.TargetEntityID = targetEntityID
	out.Symbolic = false
	out.Ambiguous = ambiguous
	out.Unresolved = unresolved
	out.EntityID = ir.EdgeFingerprint(e.Type, e.SourceEntityID, targetEntityID, disambiguator(ambiguous, unresolved, targetEntityID))
	if haveSource && source.FilePath != "" && target.FilePath != "" && source.FilePath != target.FilePath {
		out.CrossFile = true
	}
	return out
}

func disambiguator(ambiguous, unresolved bool, targetEntityID string) string {
	if ambiguous {
		return targetEntityID
	}
	if unresolved {
		return "unresolved"
	}
	return ""
}

func placeholderFor(repositoryID, symbol, symbolicKind string, now time.Time) ir.Node {
	qn := symbolicKind + ":" + symbol
	return ir.Node{
		EntityID:     ir.Fingerprint(repositoryID, ir.KindPlaceholder, qn),
		RepositoryID: repositoryID,
		Kind:         ir.KindPlaceholder,
		Name:         symbol,
		CreatedAt:    now,
		Properties:   map[string]interface{}{"symbolicKind": symbolicKind},
	}
}

// CrossFileMirrors builds the parallel CROSS_FILE_T edge set (spec §4.7's
// last rule) for every resolved, non-ambiguous, non-unresolved edge whose
// endpoints live in different files.
func CrossFileMirrors(edges []ir.Edge, now time.Time) []ir.Edge {
	var mirrors []ir.Edge
	for _, e := range edges {
		if !e.CrossFile || e.Ambiguous || e.Unresolved {
			continue
		}
		mirrorType := ir.CrossFileEdgeType(e.Type)
		mirrors = append(mirrors, ir.Edge{
			EntityID:       ir.EdgeFingerprint(mirrorType, e.SourceEntityID, e.TargetEntityID, ""),
			RepositoryID:   e.RepositoryID,
			Type:           mirrorType,
			SourceEntityID: e.SourceEntityID,
			TargetEntityID: e.TargetEntityID,
			CreatedAt:      now,
		})
	}
	return mirrors
}

func lastSegment(symbol string) string {
	if i := strings.LastIndexAny(symbol, ".:"); i >= 0 {
		return symbol[i+1:]
	}
	return symbol
}

func topLevelDir(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "/")
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}
