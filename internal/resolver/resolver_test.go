package resolver

import (
	"testing"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fn(repo, path, name string) ir.Node {
	return ir.Node{
		EntityID:     ir.Fingerprint(repo, ir.KindFunction, ir.QualifiedTopLevelFunction(path, name, 1)),
		RepositoryID: repo,
		Kind:         ir.KindFunction,
		Name:         name,
		FilePath:     path,
	}
}

func callEdge(source, symbol string) ir.Edge {
	return ir.Edge{
		Type:           ir.EdgeCalls,
		SourceEntityID: source,
		Symbolic:       true,
		SymbolicTarget: symbol,
		SymbolicKind:   "call",
	}
}

func TestResolve_UniqueMatch_Rewrites(t *testing.T) {
	caller := fn("repo-1", "a/main.go", "main")
	callee := fn("repo-1", "a/helper.go", "Helper")
	idx := NewIndex([]ir.Node{caller, callee})

	result := Resolve("repo-1", idx, []ir.Edge{callEdge(caller.EntityID, "Helper")}, time.Now())
	require.Len(t, result.Edges, 1)
	e := result.Edges[0]
	assert.False(t, e.Symbolic)
	assert.False(t, e.Ambiguous)
	assert.False(t, e.Unresolved)
	assert.Equal(t, callee.EntityID, e.TargetEntityID)
	assert.True(t, e.CrossFile)
	assert.Empty(t, result.PlaceholderNodes)
}

func TestResolve_SamePackageWinsOverSameModule(t *testing.T) {
	caller := fn("repo-1", "pkg/a/main.go", "main")
	samePkg := fn("repo-1", "pkg/a/helper.go", "Process")
	sameModule := fn("repo-1", "pkg/b/helper.go", "Process")
	idx := NewIndex([]ir.Node{caller, samePkg, sameModule})

	result := Resolve("repo-1", idx, []ir.Edge{callEdge(caller.EntityID, "Process")}, time.Now())
	require.Len(t, result.Edges, 1)
	assert.Equal(t, samePkg.EntityID, result.Edges[0].TargetEntityID)
	assert.False(t, result.Edges[0].Ambiguous)
}

func TestResolve_TiedCandidates_EmitsAmbiguousPerCandidate(t *testing.T) {
	caller := fn("repo-1", "pkg/a/main.go", "main")
	c1 := fn("repo-1", "pkg/b/one.go", "Process")
	c2 := fn("repo-1", "pkg/c/two.go", "Process")
	idx := NewIndex([]ir.Node{caller, c1, c2})

	result := Resolve("repo-1", idx, []ir.Edge{callEdge(caller.EntityID, "Process")}, time.Now())
	require.Len(t, result.Edges, 2)
	for _, e := range result.Edges {
		assert.True(t, e.Ambiguous)
		assert.False(t, e.Unresolved)
	}
}

func TestResolve_NoMatch_CreatesPlaceholderAndMarksUnresolved(t *testing.T) {
	caller := fn("repo-1", "pkg/a/main.go", "main")
	idx := NewIndex([]ir.Node{caller})

	result := Resolve("repo-1", idx, []ir.Edge{callEdge(caller.EntityID, "Missing")}, time.Now())
	require.Len(t, result.Edges, 1)
	e := result.Edges[0]
	assert.True(t, e.Unresolved)
	assert.False(t, e.Ambiguous)
	require.Len(t, result.PlaceholderNodes, 1)
	assert.Equal(t, ir.KindPlaceholder, result.PlaceholderNodes[0].Kind)
	assert.Equal(t, e.TargetEntityID, result.PlaceholderNodes[0].EntityID)
}

func TestResolve_NonSymbolicEdge_PassesThroughUnchanged(t *testing.T) {
	idx := NewIndex(nil)
	concrete := ir.Edge{Type: ir.EdgeContains, SourceEntityID: "a", TargetEntityID: "b"}
	result := Resolve("repo-1", idx, []ir.Edge{concrete}, time.Now())
	require.Len(t, result.Edges, 1)
	assert.Equal(t, concrete, result.Edges[0])
}

func TestCrossFileMirrors_OnlyForResolvedCrossFileEdges(t *testing.T) {
	resolved := ir.Edge{Type: ir.EdgeCalls, SourceEntityID: "a", TargetEntityID: "b", CrossFile: true}
	sameFile := ir.Edge{Type: ir.EdgeCalls, SourceEntityID: "a", TargetEntityID: "c", CrossFile: false}
	ambiguous := ir.Edge{Type: ir.EdgeCalls, SourceEntityID: "a", TargetEntityID: "d", CrossFile: true, Ambiguous: true}

	mirrors := CrossFileMirrors([]ir.Edge{resolved, sameFile, ambiguous}, time.Now())
	require.Len(t, mirrors, 1)
	assert.Equal(t, ir.EdgeType("CROSS_FILE_CALLS"), mirrors[0].Type)
}
