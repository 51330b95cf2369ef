package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/graphindex/internal/config"
	"github.com/coderisk/graphindex/internal/graphwriter"
	"github.com/coderisk/graphindex/internal/logging"
)

type fakeBackend struct {
	nodes      []graphwriter.NodeRecord
	edges      []graphwriter.EdgeRecord
	runQueries []string
}

func (f *fakeBackend) SaveNodesBatch(ctx context.Context, nodes []graphwriter.NodeRecord) error {
	f.nodes = append(f.nodes, nodes...)
	return nil
}

func (f *fakeBackend) SaveRelationshipsBatch(ctx context.Context, relType string, edges []graphwriter.EdgeRecord) error {
	f.edges = append(f.edges, edges...)
	return nil
}

func (f *fakeBackend) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	f.runQueries = append(f.runQueries, cypher)
	switch {
	case strings.Contains(cypher, "count(n)"):
		return []map[string]interface{}{{"total": int64(len(f.nodes))}}, nil
	case strings.Contains(cypher, "count(r)"):
		return []map[string]interface{}{{"total": int64(len(f.edges))}}, nil
	default:
		return nil, nil
	}
}

func (f *fakeBackend) Close(ctx context.Context) error { return nil }

func testConfig(t *testing.T, repoDir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Repository.ID = "repo-1"
	cfg.Repository.Name = "fixture"
	cfg.Repository.Path = repoDir
	cfg.Index.UpdateSchema = false
	cfg.Index.ResetDB = false
	return cfg
}

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(logging.DebugConfig())
	require.NoError(t, err)
	return log
}

func TestRun_FreshRepository_ParsesAndWritesGraphAndIndexState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeter.go"), []byte(`package fixture

func Greet(name string) string {
	return "hello " + name
}
`), 0o644))

	backend := &fakeBackend{}
	o := New(testConfig(t, dir), backend, newTestLogger(t))

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FilesDiscovered)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Empty(t, result.FilesFailed)
	assert.False(t, result.Resumed)
	assert.Greater(t, result.NodesCreated, 0)
	assert.NotEmpty(t, backend.nodes)

	var sawFile, sawFunction bool
	for _, n := range backend.nodes {
		for _, l := range n.Labels {
			if l == "File" {
				sawFile = true
			}
			if l == "Function" {
				sawFunction = true
			}
		}
	}
	assert.True(t, sawFile, "expected a File node to be written")
	assert.True(t, sawFunction, "expected a Function node to be written")

	var sawBelongsTo bool
	for _, e := range backend.edges {
		if e.Properties["type"] == "BELONGS_TO" {
			sawBelongsTo = true
		}
	}
	assert.True(t, sawBelongsTo, "expected a BELONGS_TO edge from the file to the repository root")
}

func TestRun_EmptyRepository_ProducesNoFailures(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{}
	o := New(testConfig(t, dir), backend, newTestLogger(t))

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesDiscovered)
	assert.Empty(t, result.FilesFailed)
}
