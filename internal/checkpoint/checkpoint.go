// Package checkpoint implements the checkpoint store (C5): a graph-backed
// ProcessingCheckpoint lifecycle entity that lets a killed run resume
// instead of restarting from scratch. Grounded on the bookkeeping shape of
// internal/ingestion's IngestionResult/ProcessResult (totals, failed-file
// lists, timestamps), generalized into an explicit phase state machine with
// a persistence seam (Store) so the orchestrator can inject a graph-backed
// implementation without this package importing the driver directly.
package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	graphindexerrors "github.com/coderisk/graphindex/internal/errors"
)

// Phase is one stage of the strictly ordered state machine (spec §4.5).
type Phase string

const (
	PhaseInitialized       Phase = "initialized"
	PhaseScanning          Phase = "scanning"
	PhaseIncrementalCheck  Phase = "incremental_check"
	PhaseParsing           Phase = "parsing"
	PhaseStoringNodes      Phase = "storing_nodes"
	PhaseStoringRelations  Phase = "storing_relationships"
	PhaseComputingPageRank Phase = "computing_pagerank"
	PhaseSavingIndexState  Phase = "saving_index_state"
	PhaseCompleted         Phase = "completed"
	PhaseFailed            Phase = "failed"
)

// order assigns each non-terminal phase a position so transitions can be
// checked for monotonicity; completed/failed are terminal and not indexed.
var order = map[Phase]int{
	PhaseInitialized:       0,
	PhaseScanning:          1,
	PhaseIncrementalCheck:  2,
	PhaseParsing:           3,
	PhaseStoringNodes:      4,
	PhaseStoringRelations:  5,
	PhaseComputingPageRank: 6,
	PhaseSavingIndexState:  7,
}

// Checkpoint is the full state of one indexing run for one repository.
type Checkpoint struct {
	AnalysisID   string
	RepositoryID string
	Phase        Phase

	TotalFilesDiscovered int
	NodesCreated         int
	RelationshipsCreated int

	CurrentBatchIndex int
	TotalBatches      int

	FilesProcessed []string
	FilesFailed    []string
	ChangedFiles   []string
	DeletedFiles   []string
	UnchangedFiles []string

	ForceFullReindex bool
	ResetDB          bool

	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	ErrorMessage string
}

// Store is the persistence seam a graph-backed implementation fulfills;
// checkpoint.Checkpoint itself stays storage-agnostic so this package can be
// unit tested without a live database.
type Store interface {
	// Load returns the current non-terminal checkpoint for repositoryID, or
	// nil if none exists (or the only one present is terminal).
	Load(ctx context.Context, repositoryID string) (*Checkpoint, error)
	Save(ctx context.Context, cp *Checkpoint) error
	Delete(ctx context.Context, repositoryID string) error
}

// Tracker wraps a Checkpoint with the mutation methods the orchestrator
// calls as each phase and batch completes. Every mutating method persists
// via Store, but a persistence failure is logged by the caller and never
// propagated as fatal (spec §4.5: "checkpoint writes are best-effort").
type Tracker struct {
	store Store
	cp    *Checkpoint
}

// Start begins a new run for repositoryID, or resumes an existing
// non-terminal checkpoint if one is found (spec §4.5: "any non-terminal
// checkpoint for the same repository is inspected; if present, the
// orchestrator resumes; else a new checkpoint replaces any terminal one").
func Start(ctx context.Context, store Store, repositoryID string, forceFullReindex, resetDB bool) (*Tracker, bool, error) {
	existing, err := store.Load(ctx, repositoryID)
	if err != nil {
		return nil, false, graphindexerrors.CheckpointError(err, "failed to load prior checkpoint")
	}
	if existing != nil {
		return &Tracker{store: store, cp: existing}, true, nil
	}

	cp := &Checkpoint{
		AnalysisID:       uuid.NewString(),
		RepositoryID:     repositoryID,
		Phase:            PhaseInitialized,
		ForceFullReindex: forceFullReindex,
		ResetDB:          resetDB,
		StartedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := store.Save(ctx, cp); err != nil {
		// A failed initial write is itself non-fatal; the run proceeds
		// in-memory and simply cannot be resumed if it crashes before the
		// next successful save.
		return &Tracker{store: store, cp: cp}, false, nil
	}
	return &Tracker{store: store, cp: cp}, false, nil
}

// Checkpoint returns the current in-memory state.
func (t *Tracker) Checkpoint() *Checkpoint {
	return t.cp
}

// Advance moves to the next phase. It refuses to move backward or skip a
// terminal transition outside Complete/Fail, enforcing the monotonic
// ordering invariant (spec §8: "phase moves only forward").
func (t *Tracker) Advance(ctx context.Context, next Phase) error {
	if t.cp.Phase == PhaseCompleted || t.cp.Phase == PhaseFailed {
		return fmt.Errorf("checkpoint %s: cannot advance from terminal phase %s", t.cp.AnalysisID, t.cp.Phase)
	}
	if next != PhaseCompleted && next != PhaseFailed {
		curIdx, curOK := order[t.cp.Phase]
		nextIdx, nextOK := order[next]
		if curOK && nextOK && nextIdx < curIdx {
			return fmt.Errorf("checkpoint %s: phase %s cannot move backward to %s", t.cp.AnalysisID, t.cp.Phase, next)
		}
	}
	t.cp.Phase = next
	t.cp.UpdatedAt = time.Now().UTC()
	return t.persist(ctx)
}

// SetPlan records the incremental planner's output on the checkpoint so a
// resumed run knows which files it was already committed to processing.
func (t *Tracker) SetPlan(ctx context.Context, totalDiscovered int, changed, deleted, unchanged []string) error {
	t.cp.TotalFilesDiscovered = totalDiscovered
	t.cp.ChangedFiles = changed
	t.cp.DeletedFiles = deleted
	t.cp.UnchangedFiles = unchanged
	t.cp.UpdatedAt = time.Now().UTC()
	return t.persist(ctx)
}

// SetTotalBatches records the batch count once parsing has partitioned the
// changed-file set.
func (t *Tracker) SetTotalBatches(ctx context.Context, total int) error {
	t.cp.TotalBatches = total
	return t.persist(ctx)
}

// MarkBatchComplete is called after a batch write commits (spec §4.5:
// "called after the batch write commits, appending to filesProcessed and
// incrementing counters"). filesInBatch are appended in order; duplicates
// are not filtered since the caller guarantees disjoint batches.
func (t *Tracker) MarkBatchComplete(ctx context.Context, batchIndex int, filesInBatch []string, nodesAdded, edgesAdded int) error {
	t.cp.CurrentBatchIndex = batchIndex
	t.cp.FilesProcessed = append(t.cp.FilesProcessed, filesInBatch...)
	t.cp.NodesCreated += nodesAdded
	t.cp.RelationshipsCreated += edgesAdded
	t.cp.UpdatedAt = time.Now().UTC()
	return t.persist(ctx)
}

// MarkFileFailed records a per-file ParseError without aborting the run.
func (t *Tracker) MarkFileFailed(ctx context.Context, path string) error {
	t.cp.FilesFailed = append(t.cp.FilesFailed, path)
	return t.persist(ctx)
}

// AlreadyProcessed reports whether path is in filesProcessed, used to skip
// re-parsing files on a resumed run.
func (t *Tracker) AlreadyProcessed(path string) bool {
	for _, p := range t.cp.FilesProcessed {
		if p == path {
			return true
		}
	}
	return false
}

// Complete sets phase=completed and deletes the checkpoint node (spec
// §4.5).
func (t *Tracker) Complete(ctx context.Context) error {
	now := time.Now().UTC()
	t.cp.Phase = PhaseCompleted
	t.cp.CompletedAt = &now
	t.cp.UpdatedAt = now
	if err := t.store.Delete(ctx, t.cp.RepositoryID); err != nil {
		return graphindexerrors.CheckpointError(err, "failed to delete completed checkpoint")
	}
	return nil
}

// Fail sets phase=failed and retains the checkpoint for inspection (spec
// §4.5). The returned error is never fatal to the caller's own error
// handling; it only reports whether the retention write itself succeeded.
func (t *Tracker) Fail(ctx context.Context, cause error) error {
	t.cp.Phase = PhaseFailed
	t.cp.UpdatedAt = time.Now().UTC()
	if cause != nil {
		t.cp.ErrorMessage = cause.Error()
	}
	return t.persist(ctx)
}

func (t *Tracker) persist(ctx context.Context) error {
	if err := t.store.Save(ctx, t.cp); err != nil {
		return graphindexerrors.CheckpointError(err, "failed to persist checkpoint")
	}
	return nil
}
