package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coderisk/graphindex/internal/checkpoint"
	"github.com/coderisk/graphindex/internal/ir"
)

// CheckpointStore implements checkpoint.Store as a ProcessingCheckpoint
// graph node, so a checkpoint is inspectable with the same Cypher tooling
// as the rest of the graph rather than living in a side table.
type CheckpointStore struct {
	backend Runner
}

// NewCheckpointStore constructs a CheckpointStore over backend.
func NewCheckpointStore(backend Runner) *CheckpointStore {
	return &CheckpointStore{backend: backend}
}

var _ checkpoint.Store = (*CheckpointStore)(nil)

// Load returns the current non-terminal checkpoint for repositoryID, or nil
// if none exists.
func (c *CheckpointStore) Load(ctx context.Context, repositoryID string) (*checkpoint.Checkpoint, error) {
	rows, err := c.backend.Run(ctx, `
MATCH (p:`+string(ir.KindProcessingCheckpoint)+` {repositoryId: $repositoryId})
WHERE p.phase <> 'completed' AND p.phase <> 'failed'
RETURN p.entityId AS entityId, p.analysisId AS analysisId, p.phase AS phase,
       p.totalFilesDiscovered AS totalFilesDiscovered, p.nodesCreated AS nodesCreated,
       p.relationshipsCreated AS relationshipsCreated, p.currentBatchIndex AS currentBatchIndex,
       p.totalBatches AS totalBatches, p.filesProcessed AS filesProcessed,
       p.filesFailed AS filesFailed, p.changedFiles AS changedFiles,
       p.deletedFiles AS deletedFiles, p.unchangedFiles AS unchangedFiles,
       p.forceFullReindex AS forceFullReindex, p.resetDB AS resetDB,
       p.startedAt AS startedAt, p.updatedAt AS updatedAt, p.errorMessage AS errorMessage
`, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToCheckpoint(repositoryID, rows[0]), nil
}

// Save upserts cp as a ProcessingCheckpoint node keyed by repositoryId (one
// non-terminal checkpoint per repository is the invariant the caller in
// internal/checkpoint enforces; this store just persists whatever it's
// given).
func (c *CheckpointStore) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	filesProcessed, err := json.Marshal(cp.FilesProcessed)
	if err != nil {
		return err
	}
	filesFailed, err := json.Marshal(cp.FilesFailed)
	if err != nil {
		return err
	}
	changedFiles, err := json.Marshal(cp.ChangedFiles)
	if err != nil {
		return err
	}
	deletedFiles, err := json.Marshal(cp.DeletedFiles)
	if err != nil {
		return err
	}
	unchangedFiles, err := json.Marshal(cp.UnchangedFiles)
	if err != nil {
		return err
	}

	_, err = c.backend.Run(ctx, `
MERGE (p:`+string(ir.KindProcessingCheckpoint)+` {repositoryId: $repositoryId})
SET p.entityId = $repositoryId, p.analysisId = $analysisId, p.phase = $phase,
    p.totalFilesDiscovered = $totalFilesDiscovered, p.nodesCreated = $nodesCreated,
    p.relationshipsCreated = $relationshipsCreated, p.currentBatchIndex = $currentBatchIndex,
    p.totalBatches = $totalBatches, p.filesProcessed = $filesProcessed,
    p.filesFailed = $filesFailed, p.changedFiles = $changedFiles,
    p.deletedFiles = $deletedFiles, p.unchangedFiles = $unchangedFiles,
    p.forceFullReindex = $forceFullReindex, p.resetDB = $resetDB,
    p.startedAt = $startedAt, p.updatedAt = $updatedAt, p.errorMessage = $errorMessage
`, map[string]interface{}{
		"repositoryId":          cp.RepositoryID,
		"analysisId":            cp.AnalysisID,
		"phase":                 string(cp.Phase),
		"totalFilesDiscovered":  cp.TotalFilesDiscovered,
		"nodesCreated":          cp.NodesCreated,
		"relationshipsCreated":  cp.RelationshipsCreated,
		"currentBatchIndex":     cp.CurrentBatchIndex,
		"totalBatches":          cp.TotalBatches,
		"filesProcessed":        string(filesProcessed),
		"filesFailed":           string(filesFailed),
		"changedFiles":          string(changedFiles),
		"deletedFiles":          string(deletedFiles),
		"unchangedFiles":        string(unchangedFiles),
		"forceFullReindex":      cp.ForceFullReindex,
		"resetDB":               cp.ResetDB,
		"startedAt":             cp.StartedAt,
		"updatedAt":             cp.UpdatedAt,
		"errorMessage":          cp.ErrorMessage,
	})
	return err
}

// Delete removes repositoryID's checkpoint node entirely (called on
// successful completion — a completed run leaves no checkpoint behind).
func (c *CheckpointStore) Delete(ctx context.Context, repositoryID string) error {
	_, err := c.backend.Run(ctx, `
MATCH (p:`+string(ir.KindProcessingCheckpoint)+` {repositoryId: $repositoryId})
DETACH DELETE p
`, map[string]interface{}{"repositoryId": repositoryID})
	return err
}

func rowToCheckpoint(repositoryID string, row map[string]interface{}) *checkpoint.Checkpoint {
	cp := &checkpoint.Checkpoint{
		RepositoryID:         repositoryID,
		Phase:                checkpoint.Phase(stringOf(row["phase"])),
		AnalysisID:           stringOf(row["analysisId"]),
		TotalFilesDiscovered: int(toInt64(row["totalFilesDiscovered"])),
		NodesCreated:         int(toInt64(row["nodesCreated"])),
		RelationshipsCreated: int(toInt64(row["relationshipsCreated"])),
		CurrentBatchIndex:    int(toInt64(row["currentBatchIndex"])),
		TotalBatches:         int(toInt64(row["totalBatches"])),
		ForceFullReindex:     boolOf(row["forceFullReindex"]),
		ResetDB:              boolOf(row["resetDB"]),
		ErrorMessage:         stringOf(row["errorMessage"]),
	}
	unmarshalInto(row["filesProcessed"], &cp.FilesProcessed)
	unmarshalInto(row["filesFailed"], &cp.FilesFailed)
	unmarshalInto(row["changedFiles"], &cp.ChangedFiles)
	unmarshalInto(row["deletedFiles"], &cp.DeletedFiles)
	unmarshalInto(row["unchangedFiles"], &cp.UnchangedFiles)
	if t, ok := row["startedAt"].(time.Time); ok {
		cp.StartedAt = t
	}
	if t, ok := row["updatedAt"].(time.Time); ok {
		cp.UpdatedAt = t
	}
	return cp
}

func unmarshalInto(v interface{}, out *[]string) {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), out)
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}

func boolOf(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
