package graphwriter

import (
	"context"
	"strconv"
)

// Backend is the minimal persistence seam the writer drives, generalized
// from the teacher's internal/graph.Backend interface (CreateNode(s)/
// CreateEdge(s)/Query/Close) down to the two batch operations spec §4.8
// names plus a raw Cypher escape hatch for the schema manager and
// analytics components.
type Backend interface {
	SaveNodesBatch(ctx context.Context, nodes []NodeRecord) error
	SaveRelationshipsBatch(ctx context.Context, relType string, edges []EdgeRecord) error
	Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)
	Close(ctx context.Context) error
}

// NodeRecord is the writer-ready shape of one ir.Node: labels resolved,
// properties prepared.
type NodeRecord struct {
	EntityID   string
	Labels     []string
	Properties map[string]interface{}
}

// EdgeRecord is the writer-ready shape of one ir.Edge.
type EdgeRecord struct {
	EntityID       string
	SourceEntityID string
	TargetEntityID string
	Properties     map[string]interface{}
	CreatedAt      interface{}
}

// GraphWriteError is the typed per-batch error spec §4.8 requires, carrying
// enough context for the orchestrator to decide continue-vs-abort (§7)
// without re-parsing an error string.
type GraphWriteError struct {
	BatchIndex int
	Sample     []string // a few entityIds from the failed batch, for diagnostics
	Cause      error
}

func (e *GraphWriteError) Error() string {
	return "graph write failed for batch " + strconv.Itoa(e.BatchIndex) + ": " + e.Cause.Error()
}

func (e *GraphWriteError) Unwrap() error { return e.Cause }
