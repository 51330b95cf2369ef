package graphwriter

import (
	"context"

	"github.com/coderisk/graphindex/internal/ir"
)

// Writer drives Backend in fixed-size batches, converting ir.Node/ir.Edge
// into the Backend's wire records. Grounded on internal/graph/
// batch_operations.go's BatchNodeCreator batching loop, generalized from
// per-label batch methods to one batching loop reused for every kind.
type Writer struct {
	backend Backend
	config  BatchConfig
}

// NewWriter constructs a Writer over backend with the given batch sizing.
func NewWriter(backend Backend, config BatchConfig) *Writer {
	return &Writer{backend: backend, config: config}
}

// SaveNodes splits nodes into NodeBatchSize chunks and upserts each. A
// chunk failure returns immediately with a GraphWriteError carrying the
// failing batch's index and a small entityId sample (spec §4.8); earlier
// batches have already committed.
func (w *Writer) SaveNodes(ctx context.Context, nodes []ir.Node) error {
	batchSize := w.config.NodeBatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	for i := 0; i < len(nodes); i += batchSize {
		end := min(i+batchSize, len(nodes))
		batch := nodes[i:end]

		records := make([]NodeRecord, len(batch))
		for j, n := range batch {
			labels := LabelsForKind(n.Kind, n.Language)
			if st := StereotypeLabel(n.Properties); st != "" {
				labels = append(labels, st)
			}
			records[j] = NodeRecord{
				EntityID:   n.EntityID,
				Labels:     labels,
				Properties: nodeProperties(n),
			}
		}

		if err := w.backend.SaveNodesBatch(ctx, records); err != nil {
			return &GraphWriteError{BatchIndex: i / batchSize, Sample: sampleEntityIDs(batch), Cause: err}
		}
	}
	return nil
}

// SaveEdges groups edges by type (a Neo4j relationship type can't be
// parameterized, so each type needs its own query) and splits each group
// into EdgeBatchSize chunks, matching the teacher's createEdgesBatchByType
// grouping in internal/graph/batch_operations.go.
func (w *Writer) SaveEdges(ctx context.Context, edges []ir.Edge) error {
	byType := make(map[ir.EdgeType][]ir.Edge)
	for _, e := range edges {
		byType[e.Type] = append(byType[e.Type], e)
	}

	batchSize := w.config.EdgeBatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	batchIndex := 0
	for relType, group := range byType {
		for i := 0; i < len(group); i += batchSize {
			end := min(i+batchSize, len(group))
			batch := group[i:end]

			records := make([]EdgeRecord, len(batch))
			for j, e := range batch {
				records[j] = EdgeRecord{
					EntityID:       e.EntityID,
					SourceEntityID: e.SourceEntityID,
					TargetEntityID: e.TargetEntityID,
					Properties:     edgeProperties(e),
					CreatedAt:      e.CreatedAt,
				}
			}

			if err := w.backend.SaveRelationshipsBatch(ctx, string(relType), records); err != nil {
				return &GraphWriteError{BatchIndex: batchIndex, Sample: sampleEdgeIDs(batch), Cause: err}
			}
			batchIndex++
		}
	}
	return nil
}

// DeleteFiles removes every node whose filePath is one of paths, along with
// its relationships, within repositoryID's subgraph. Used by the
// orchestrator to clean up files the incremental planner reports as
// deleted since the last run.
func (w *Writer) DeleteFiles(ctx context.Context, repositoryID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := w.backend.Run(ctx, `
UNWIND $paths AS path
MATCH (n {repositoryId: $repositoryId, filePath: path})
DETACH DELETE n
`, map[string]interface{}{"repositoryId": repositoryID, "paths": paths})
	return err
}

func nodeProperties(n ir.Node) map[string]interface{} {
	props := map[string]interface{}{
		"repositoryId": n.RepositoryID,
		"name":         n.Name,
		"filePath":     n.FilePath,
		"language":     n.Language,
		"startLine":    n.StartLine,
		"endLine":      n.EndLine,
		"startColumn":  n.StartColumn,
		"endColumn":    n.EndColumn,
		"kind":         string(n.Kind),
		"createdAt":    n.CreatedAt,
	}
	for k, v := range prepareProperties(n.Properties) {
		props[k] = v
	}
	if n.Documentation != nil {
		props["documentation"] = serializeJSON(n.Documentation)
	}
	if n.Signature != nil {
		props["signature"] = serializeJSON(n.Signature)
	}
	return props
}

func edgeProperties(e ir.Edge) map[string]interface{} {
	props := map[string]interface{}{
		"repositoryId": e.RepositoryID,
		"type":         string(e.Type),
		"crossFile":    e.CrossFile,
		"ambiguous":    e.Ambiguous,
		"unresolved":   e.Unresolved,
	}
	if e.Weight != nil {
		props["weight"] = *e.Weight
	}
	for k, v := range prepareProperties(e.Properties) {
		props[k] = v
	}
	return props
}

func sampleEntityIDs(nodes []ir.Node) []string {
	n := min(len(nodes), 5)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = nodes[i].EntityID
	}
	return out
}

func sampleEdgeIDs(edges []ir.Edge) []string {
	n := min(len(edges), 5)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = edges[i].EntityID
	}
	return out
}
