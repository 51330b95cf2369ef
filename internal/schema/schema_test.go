package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	queries []string
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	f.queries = append(f.queries, cypher)
	return nil, nil
}

func TestApply_IssuesConstraintsIndexesAndFullTextIndexes(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(runner)

	require.NoError(t, m.Apply(context.Background()))

	joined := joinQueries(runner.queries)
	assert.Contains(t, joined, "CREATE CONSTRAINT")
	assert.Contains(t, joined, "IS UNIQUE")
	assert.Contains(t, joined, "CREATE INDEX")
	assert.Contains(t, joined, "CREATE FULLTEXT INDEX")
	assert.True(t, len(runner.queries) > len(constraintLabels))
}

func TestForceUpdate_DropsThenReapplies(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(runner)

	require.NoError(t, m.ForceUpdate(context.Background()))
	require.NotEmpty(t, runner.queries)
	assert.Contains(t, runner.queries[0], "apoc.schema.assert")
}

func TestReset_DeletesRepositorySubgraphViaPeriodicIterate(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(runner)

	require.NoError(t, m.Reset(context.Background(), "repo-1"))
	require.Len(t, runner.queries, 1)
	assert.Contains(t, runner.queries[0], "apoc.periodic.iterate")
	assert.Contains(t, runner.queries[0], "DETACH DELETE")
}

func joinQueries(qs []string) string {
	out := ""
	for _, q := range qs {
		out += q + "\n"
	}
	return out
}
