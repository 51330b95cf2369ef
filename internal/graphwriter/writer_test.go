package graphwriter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	nodeBatches [][]NodeRecord
	edgeBatches map[string][][]EdgeRecord
	failOn      int // SaveNodesBatch call index (1-based) to fail, 0 = never
	calls       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{edgeBatches: make(map[string][][]EdgeRecord)}
}

func (f *fakeBackend) SaveNodesBatch(ctx context.Context, nodes []NodeRecord) error {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return errors.New("simulated failure")
	}
	f.nodeBatches = append(f.nodeBatches, nodes)
	return nil
}

func (f *fakeBackend) SaveRelationshipsBatch(ctx context.Context, relType string, edges []EdgeRecord) error {
	f.edgeBatches[relType] = append(f.edgeBatches[relType], edges)
	return nil
}

func (f *fakeBackend) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeBackend) Close(ctx context.Context) error { return nil }

func TestWriter_SaveNodes_SplitsIntoBatchesAndSetsLabels(t *testing.T) {
	backend := newFakeBackend()
	w := NewWriter(backend, BatchConfig{NodeBatchSize: 2, EdgeBatchSize: 2})

	nodes := []ir.Node{
		{EntityID: "n1", Kind: ir.KindFunction, Name: "a"},
		{EntityID: "n2", Kind: ir.KindClass, Name: "b", Properties: map[string]interface{}{"stereotype": "Controller"}},
		{EntityID: "n3", Kind: ir.KindFile, Name: "c"},
	}

	require.NoError(t, w.SaveNodes(context.Background(), nodes))
	require.Len(t, backend.nodeBatches, 2)
	assert.Len(t, backend.nodeBatches[0], 2)
	assert.Len(t, backend.nodeBatches[1], 1)

	classRecord := backend.nodeBatches[0][1]
	assert.Contains(t, classRecord.Labels, "Class")
	assert.Contains(t, classRecord.Labels, "Component")
	assert.Contains(t, classRecord.Labels, "Controller")
}

func TestWriter_SaveNodes_BatchFailureReturnsGraphWriteError(t *testing.T) {
	backend := newFakeBackend()
	backend.failOn = 1
	w := NewWriter(backend, BatchConfig{NodeBatchSize: 1, EdgeBatchSize: 1})

	err := w.SaveNodes(context.Background(), []ir.Node{{EntityID: "n1", Kind: ir.KindFunction}})
	require.Error(t, err)
	var writeErr *GraphWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, 0, writeErr.BatchIndex)
}

func TestWriter_SaveEdges_GroupsByTypeAndBatches(t *testing.T) {
	backend := newFakeBackend()
	w := NewWriter(backend, BatchConfig{NodeBatchSize: 10, EdgeBatchSize: 10})

	edges := []ir.Edge{
		{EntityID: "e1", Type: ir.EdgeCalls, SourceEntityID: "a", TargetEntityID: "b", CreatedAt: time.Now()},
		{EntityID: "e2", Type: ir.EdgeImports, SourceEntityID: "a", TargetEntityID: "c", CreatedAt: time.Now()},
	}

	require.NoError(t, w.SaveEdges(context.Background(), edges))
	assert.Len(t, backend.edgeBatches["CALLS"], 1)
	assert.Len(t, backend.edgeBatches["IMPORTS"], 1)
}

func TestPrepareProperties_SerializesMapsAndObjectArrays(t *testing.T) {
	props := map[string]interface{}{
		"plain":  "value",
		"count":  3,
		"nested": map[string]interface{}{"a": 1},
		"tags":   []string{"x", "y"},
		"mixed":  []interface{}{map[string]interface{}{"a": 1}},
	}
	out := prepareProperties(props)
	assert.Equal(t, "value", out["plain"])
	assert.Equal(t, 3, out["count"])
	assert.IsType(t, "", out["nested"])
	assert.Equal(t, []string{"x", "y"}, out["tags"])
	assert.IsType(t, "", out["mixed"])
}
