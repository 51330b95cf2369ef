package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	responses map[string][]map[string]interface{}
	errors    map[string]error
	queries   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string][]map[string]interface{}{}, errors: map[string]error{}}
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	f.queries = append(f.queries, cypher)
	for key, err := range f.errors {
		if strings.Contains(cypher, key) {
			return nil, err
		}
	}
	for key, rows := range f.responses {
		if strings.Contains(cypher, key) {
			return rows, nil
		}
	}
	return nil, nil
}

func TestComputePageRank_FallsBackWhenGDSUnavailable(t *testing.T) {
	runner := newFakeRunner()
	runner.errors["gds.graph.project.cypher"] = errors.New("Neo.ClientError.Procedure.ProcedureNotFound: no such procedure")
	runner.responses["count(r) AS totalEdges"] = []map[string]interface{}{{"totalEdges": int64(10)}}
	runner.responses["count(r) AS inDegree"] = []map[string]interface{}{
		{"entityId": "n1", "inDegree": int64(5)},
		{"entityId": "n2", "inDegree": int64(0)},
	}

	a := NewAnalyzer(runner)
	result, err := a.ComputePageRank(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Method)
	assert.Equal(t, 2, result.NodesUpdated)
}

func TestComputePageRank_UsesGDSWhenAvailable(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["gds.graph.project.cypher"] = []map[string]interface{}{{"graphName": "pagerank_repo_1"}}
	runner.responses["gds.pageRank.stream"] = []map[string]interface{}{
		{"entityId": "n1", "score": 0.5},
		{"entityId": "n2", "score": 0.25},
	}

	a := NewAnalyzer(runner)
	result, err := a.ComputePageRank(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Equal(t, "gds", result.Method)
	assert.Equal(t, 2, result.NodesUpdated)
}

func TestComputeDependencyDepth_BFSFromEntryPoints(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["RestEndpoint OR n:UIRoute"] = []map[string]interface{}{{"entityId": "entry1"}}
	runner.responses["RETURN a.entityId AS source"] = []map[string]interface{}{
		{"source": "entry1", "target": "mid1"},
		{"source": "mid1", "target": "leaf1"},
	}

	a := NewAnalyzer(runner)
	result, err := a.ComputeDependencyDepth(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.NodesUpdated)
}

func TestIsProcedureNotFound_MatchesTypicalNeo4jError(t *testing.T) {
	assert.True(t, isProcedureNotFound(errors.New("Neo.ClientError.Procedure.ProcedureNotFound: no such procedure")))
	assert.False(t, isProcedureNotFound(errors.New("connection refused")))
}
