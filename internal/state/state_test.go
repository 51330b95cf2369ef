package state

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/graphindex/internal/checkpoint"
)

type fakeRunner struct {
	responses map[string][]map[string]interface{}
	queries   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string][]map[string]interface{}{}}
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	f.queries = append(f.queries, cypher)
	for key, rows := range f.responses {
		if strings.Contains(cypher, key) {
			return rows, nil
		}
	}
	return nil, nil
}

func TestEnsureRepository_MergesRootNode(t *testing.T) {
	runner := newFakeRunner()
	s := NewStore(runner)
	err := s.EnsureRepository(context.Background(), "repo-1", "acme/widgets", "/tmp/widgets", time.Now())
	require.NoError(t, err)
	require.Len(t, runner.queries, 1)
	assert.Contains(t, runner.queries[0], "MERGE (r:RepositoryRoot")
}

func TestLoadIndexState_NoPriorState_ReturnsNil(t *testing.T) {
	runner := newFakeRunner()
	s := NewStore(runner)
	st, err := s.LoadIndexState(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLoadIndexState_DecodesFileHashesJSON(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["HAS_INDEX_STATE"] = []map[string]interface{}{
		{
			"lastCommitSha": "abc123",
			"fileHashes":    `{"a.go":"h1","b.go":"h2"}`,
			"indexVersion":  int64(3),
		},
	}
	s := NewStore(runner)
	st, err := s.LoadIndexState(context.Background(), "repo-1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "abc123", st.LastCommitSha)
	assert.Equal(t, 3, st.IndexVersion)
	assert.Equal(t, map[string]string{"a.go": "h1", "b.go": "h2"}, st.FileHashes)
}

func TestSaveIndexState_SerializesFileHashesAndMergesEdge(t *testing.T) {
	runner := newFakeRunner()
	s := NewStore(runner)
	err := s.SaveIndexState(context.Background(), "repo-1", IndexStateUpdate{
		LastCommitSha:     "def456",
		FileHashes:        map[string]string{"a.go": "h1"},
		IndexVersion:      1,
		TotalFilesIndexed: 1,
		PageRankMethod:    "gds",
	}, time.Now())
	require.NoError(t, err)
	require.Len(t, runner.queries, 1)
	assert.Contains(t, runner.queries[0], "MERGE (i:IndexState")
	assert.Contains(t, runner.queries[0], "HAS_INDEX_STATE")
}

func TestCheckpointStore_SaveThenLoad_RoundTripsThroughJSON(t *testing.T) {
	runner := newFakeRunner()
	cs := NewCheckpointStore(runner)
	cp := &checkpoint.Checkpoint{
		RepositoryID:   "repo-1",
		AnalysisID:     "run-1",
		Phase:          checkpoint.PhaseParsing,
		FilesProcessed: []string{"a.go", "b.go"},
		ChangedFiles:   []string{"a.go", "b.go", "c.go"},
		StartedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, cs.Save(context.Background(), cp))
	require.Len(t, runner.queries, 1)
	assert.Contains(t, runner.queries[0], "MERGE (p:ProcessingCheckpoint")

	runner.responses["ProcessingCheckpoint"] = []map[string]interface{}{
		{
			"phase":          "parsing",
			"analysisId":     "run-1",
			"filesProcessed": `["a.go","b.go"]`,
			"changedFiles":   `["a.go","b.go","c.go"]`,
		},
	}
	loaded, err := cs.Load(context.Background(), "repo-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, checkpoint.PhaseParsing, loaded.Phase)
	assert.Equal(t, []string{"a.go", "b.go"}, loaded.FilesProcessed)
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, loaded.ChangedFiles)
}

func TestCheckpointStore_Delete_RemovesNode(t *testing.T) {
	runner := newFakeRunner()
	cs := NewCheckpointStore(runner)
	require.NoError(t, cs.Delete(context.Background(), "repo-1"))
	require.Len(t, runner.queries, 1)
	assert.Contains(t, runner.queries[0], "DETACH DELETE p")
}
