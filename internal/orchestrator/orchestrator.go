// Package orchestrator implements the end-to-end indexing run (C11): it
// drives every other component through the fixed phase state machine
// (initialized -> scanning -> incremental_check -> parsing -> storing_nodes
// -> storing_relationships -> computing_pagerank -> saving_index_state ->
// completed|failed), resuming a killed run from its ProcessingCheckpoint
// and persisting a fresh IndexState atomically at the end.
//
// Grounded on internal/ingestion/orchestrator.go's Orchestrator/
// IngestRepository/IncrementalIngest entrypoint and its errgroup-fanned
// storeRawData helper, generalized from a fixed GitHub-metadata pipeline
// (repository/commits/files/PRs/issues) into a pipeline over this
// package's own components (scanner, planner, parsers, resolver,
// graphwriter, schema, analytics).
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/coderisk/graphindex/internal/analytics"
	"github.com/coderisk/graphindex/internal/checkpoint"
	"github.com/coderisk/graphindex/internal/config"
	"github.com/coderisk/graphindex/internal/graphwriter"
	"github.com/coderisk/graphindex/internal/ir"
	"github.com/coderisk/graphindex/internal/logging"
	"github.com/coderisk/graphindex/internal/parsers"
	"github.com/coderisk/graphindex/internal/planner"
	"github.com/coderisk/graphindex/internal/resolver"
	"github.com/coderisk/graphindex/internal/scanner"
	"github.com/coderisk/graphindex/internal/schema"
	"github.com/coderisk/graphindex/internal/state"
	"github.com/coderisk/graphindex/internal/vcs"
)

// Orchestrator wires every component together for one repository's indexing
// runs. It holds no per-run state itself — that lives in the
// checkpoint.Tracker a Run call creates.
type Orchestrator struct {
	cfg        *config.Config
	backend    graphwriter.Backend
	writer     *graphwriter.Writer
	schemaMgr  *schema.Manager
	analyzer   *analytics.Analyzer
	stateStore *state.Store
	cpStore    *state.CheckpointStore
	log        *logging.Logger
}

// New constructs an Orchestrator over an already-connected backend.
func New(cfg *config.Config, backend graphwriter.Backend, log *logging.Logger) *Orchestrator {
	batchCfg := graphwriter.DefaultBatchConfig()
	if cfg.Index.StorageBatchSize > 0 {
		batchCfg = graphwriter.BatchConfig{
			NodeBatchSize: cfg.Index.StorageBatchSize,
			EdgeBatchSize: cfg.Index.StorageBatchSize,
		}
	}
	return &Orchestrator{
		cfg:        cfg,
		backend:    backend,
		writer:     graphwriter.NewWriter(backend, batchCfg),
		schemaMgr:  schema.NewManager(backend),
		analyzer:   analytics.NewAnalyzer(backend),
		stateStore: state.NewStore(backend),
		cpStore:    state.NewCheckpointStore(backend),
		log:        log,
	}
}

// Result summarizes one completed (or resumed-and-completed) run.
type Result struct {
	AnalysisID           string
	RepositoryID         string
	Resumed              bool
	FilesDiscovered      int
	FilesProcessed       int
	FilesFailed          []string
	FilesDeleted         int
	NodesCreated         int
	RelationshipsCreated int
	PageRankMethod       string
	Duration             time.Duration
}

// Run executes one full indexing pass for o.cfg.Repository, from clone/scan
// through analytics and IndexState persistence.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	repoID := o.cfg.Repository.ID

	repoDir, cleanup, err := o.resolveRepoDir(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve repository source: %w", err)
	}
	defer cleanup()

	tracker, resumed, err := checkpoint.Start(ctx, o.cpStore, repoID, o.cfg.Index.ForceFullReindex, o.cfg.Index.ResetDB)
	if err != nil {
		return nil, err
	}
	o.log.Info("indexing run starting", "repositoryId", repoID, "analysisId", tracker.Checkpoint().AnalysisID, "resumed", resumed)

	result, err := o.run(ctx, tracker, repoDir, resumed)
	if err != nil {
		if failErr := tracker.Fail(ctx, err); failErr != nil {
			o.log.Error("failed to persist checkpoint failure", "error", failErr)
		}
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, tracker *checkpoint.Tracker, repoDir string, resumed bool) (*Result, error) {
	repoID := o.cfg.Repository.ID
	now := time.Now().UTC()

	if o.cfg.Index.ResetDB {
		if err := o.schemaMgr.Reset(ctx, repoID); err != nil {
			return nil, fmt.Errorf("reset schema: %w", err)
		}
	}
	if o.cfg.Index.UpdateSchema {
		if err := o.schemaMgr.Apply(ctx); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := o.stateStore.EnsureRepository(ctx, repoID, o.cfg.Repository.Name, repoDir, now); err != nil {
		return nil, fmt.Errorf("ensure repository node: %w", err)
	}

	if err := tracker.Advance(ctx, checkpoint.PhaseScanning); err != nil {
		return nil, err
	}
	sc, err := scanner.New(repoDir, scanner.Config{
		SupportedExtensions: o.cfg.Scanner.SupportedExtensions,
		IgnorePatterns:      o.cfg.Scanner.IgnorePatterns,
		FollowSymlinks:      o.cfg.Scanner.FollowSymlinks,
	})
	if err != nil {
		return nil, fmt.Errorf("construct scanner: %w", err)
	}
	files, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan repository: %w", err)
	}

	if err := tracker.Advance(ctx, checkpoint.PhaseIncrementalCheck); err != nil {
		return nil, err
	}
	prior, err := o.stateStore.LoadIndexState(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("load prior index state: %w", err)
	}
	var vcsDriver *vcs.Driver
	if d := vcs.New(repoDir); d.IsRepo(ctx) {
		vcsDriver = d
	}
	plan, err := planner.Plan(ctx, planner.Inputs{
		RepoDir:        repoDir,
		ScannedFiles:   files,
		PriorState:     prior,
		ForceFull:      o.cfg.Index.ForceFullReindex,
		CurrentVersion: o.cfg.Index.Version,
		VCS:            vcsDriver,
	})
	if err != nil {
		return nil, fmt.Errorf("plan incremental run: %w", err)
	}
	if err := tracker.SetPlan(ctx, len(files), plan.ChangedFiles, plan.DeletedFiles, plan.UnchangedFiles); err != nil {
		o.log.Warn("failed to persist plan on checkpoint", "error", err)
	}
	o.log.Info("incremental plan computed", "reason", plan.Reason, "changed", len(plan.ChangedFiles), "deleted", len(plan.DeletedFiles), "unchanged", len(plan.UnchangedFiles))

	toParse := plan.ChangedFiles
	if resumed {
		var remaining []string
		for _, p := range toParse {
			if !tracker.AlreadyProcessed(p) {
				remaining = append(remaining, p)
			}
		}
		toParse = remaining
	}

	if err := tracker.Advance(ctx, checkpoint.PhaseParsing); err != nil {
		return nil, err
	}
	poolCfg := parsers.PoolConfig{Workers: o.cfg.Parser.Concurrency, PerFileTimeout: o.cfg.Parser.PerFileTimeout}
	if poolCfg.Workers == 0 {
		poolCfg = parsers.DefaultPoolConfig()
	}

	scratchPath := filepath.Join(os.TempDir(), fmt.Sprintf("graphindex-scratch-%s-%s.db", repoID, tracker.Checkpoint().AnalysisID))
	scratch, err := parsers.OpenScratchStore(scratchPath)
	if err != nil {
		return nil, fmt.Errorf("open scratch store: %w", err)
	}
	defer scratch.Close()

	parseResults := parsers.ParseAll(ctx, repoID, toParse, poolCfg, scratch)

	var filesFailed []string
	var filesOK []string
	for _, pr := range parseResults {
		if pr.Err != nil {
			filesFailed = append(filesFailed, pr.FilePath)
			if err := tracker.MarkFileFailed(ctx, pr.FilePath); err != nil {
				o.log.Warn("failed to persist file failure on checkpoint", "error", err)
			}
			continue
		}
		filesOK = append(filesOK, pr.FilePath)
	}

	// Pass 2 (resolver) needs the whole repository's IR resident at once to
	// build its cross-file symbol index, so it reads every entry back out of
	// the scratch store here rather than carrying it through the parse loop
	// above — ParseAll already dropped it from memory once each file's
	// result was persisted.
	var allNodes []ir.Node
	var allEdges []ir.Edge
	if err := scratch.ForEach(func(pr ir.ParseResult) error {
		allNodes = append(allNodes, pr.Nodes...)
		allEdges = append(allEdges, pr.Edges...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read scratch store: %w", err)
	}

	idx := resolver.NewIndex(allNodes)
	resolved := resolver.Resolve(repoID, idx, allEdges, now)
	allEdges = resolved.Edges
	allNodes = append(allNodes, resolved.PlaceholderNodes...)
	allEdges = append(allEdges, resolver.CrossFileMirrors(allEdges, now)...)
	allEdges = append(allEdges, belongsToRepository(repoID, allNodes, now)...)

	if err := tracker.Advance(ctx, checkpoint.PhaseStoringNodes); err != nil {
		return nil, err
	}
	if err := o.writer.SaveNodes(ctx, allNodes); err != nil {
		return nil, fmt.Errorf("save nodes: %w", err)
	}

	if err := tracker.Advance(ctx, checkpoint.PhaseStoringRelations); err != nil {
		return nil, err
	}
	if err := o.writer.SaveEdges(ctx, allEdges); err != nil {
		return nil, fmt.Errorf("save relationships: %w", err)
	}
	nodeCount, edgeCount, err := o.countGraph(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("count graph after write: %w", err)
	}
	if err := tracker.MarkBatchComplete(ctx, 0, filesOK, nodeCount, edgeCount); err != nil {
		o.log.Warn("failed to persist batch completion on checkpoint", "error", err)
	}

	if len(plan.DeletedFiles) > 0 {
		if err := o.writer.DeleteFiles(ctx, repoID, plan.DeletedFiles); err != nil {
			return nil, fmt.Errorf("delete removed files: %w", err)
		}
	}

	pageRankMethod := ""
	if o.cfg.Analytics.Enabled {
		if err := tracker.Advance(ctx, checkpoint.PhaseComputingPageRank); err != nil {
			return nil, err
		}
		prResult, err := o.analyzer.ComputePageRank(ctx, repoID)
		if err != nil {
			return nil, fmt.Errorf("compute pagerank: %w", err)
		}
		pageRankMethod = prResult.Method
		if _, err := o.analyzer.ComputeDependencyDepth(ctx, repoID); err != nil {
			return nil, fmt.Errorf("compute dependency depth: %w", err)
		}
	}

	if err := tracker.Advance(ctx, checkpoint.PhaseSavingIndexState); err != nil {
		return nil, err
	}
	newHashes := mergeFileHashes(prior, plan, files)
	lastSha := ""
	if vcsDriver != nil {
		if sha, err := vcsDriver.HeadSha(ctx); err == nil {
			lastSha = sha
		}
	}
	if err := o.stateStore.SaveIndexState(ctx, repoID, state.IndexStateUpdate{
		LastCommitSha:     lastSha,
		FileHashes:        newHashes,
		IndexVersion:      o.cfg.Index.Version,
		TotalFilesIndexed: len(newHashes),
		PageRankMethod:    pageRankMethod,
	}, now); err != nil {
		return nil, fmt.Errorf("save index state: %w", err)
	}

	if err := tracker.Complete(ctx); err != nil {
		return nil, err
	}

	cp := tracker.Checkpoint()
	return &Result{
		AnalysisID:           cp.AnalysisID,
		RepositoryID:         repoID,
		Resumed:              resumed,
		FilesDiscovered:      len(files),
		FilesProcessed:       len(filesOK),
		FilesFailed:          filesFailed,
		FilesDeleted:         len(plan.DeletedFiles),
		NodesCreated:         nodeCount,
		RelationshipsCreated: edgeCount,
		PageRankMethod:       pageRankMethod,
	}, nil
}

// resolveRepoDir returns a local directory to scan, cloning first when
// Repository.URL is set. The returned cleanup func is always safe to call.
func (o *Orchestrator) resolveRepoDir(ctx context.Context) (string, func(), error) {
	if o.cfg.Repository.URL == "" {
		return o.cfg.Repository.Path, func() {}, nil
	}
	cloned, err := vcs.Clone(ctx, o.cfg.Repository.URL, vcs.CloneOptions{
		Branch:    o.cfg.Repository.Branch,
		AuthToken: o.cfg.Repository.AuthToken,
		Depth:     o.cfg.Repository.Depth,
		KeepClone: o.cfg.Repository.KeepClone,
	})
	if err != nil {
		return "", func() {}, err
	}
	return cloned.Path, func() {
		if err := cloned.Cleanup(); err != nil {
			o.log.Warn("failed to clean up clone", "error", err)
		}
	}, nil
}

// countGraph re-derives the node/relationship totals from the graph itself
// rather than trusting the in-memory counts this run accumulated, so a
// resumed run's checkpoint/result reflects what was actually committed
// (spec §9's partial-save idempotency concern — a crash between the write
// and the checkpoint update must not double count on resume).
func (o *Orchestrator) countGraph(ctx context.Context, repositoryID string) (int, int, error) {
	nodeRows, err := o.backend.Run(ctx, `
MATCH (n {repositoryId: $repositoryId})
RETURN count(n) AS total
`, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return 0, 0, err
	}
	edgeRows, err := o.backend.Run(ctx, `
MATCH ()-[r {repositoryId: $repositoryId}]->()
RETURN count(r) AS total
`, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return 0, 0, err
	}
	return toInt(nodeRows), toInt(edgeRows), nil
}

func toInt(rows []map[string]interface{}) int {
	if len(rows) == 0 {
		return 0
	}
	switch n := rows[0]["total"].(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// mergeFileHashes builds the fileHashes map the new IndexState persists:
// every unchanged file keeps its prior hash, every changed file gets its
// freshly scanned hash, deleted files are dropped.
func mergeFileHashes(prior *planner.IndexState, plan *planner.Plan, files []ir.FileRecord) map[string]string {
	current := make(map[string]string, len(files))
	for _, f := range files {
		current[f.Path] = f.ContentHash
	}
	out := make(map[string]string, len(files))
	for _, p := range plan.UnchangedFiles {
		if prior != nil {
			if h, ok := prior.FileHashes[p]; ok {
				out[p] = h
				continue
			}
		}
		if h, ok := current[p]; ok {
			out[p] = h
		}
	}
	for _, p := range plan.ChangedFiles {
		if h, ok := current[p]; ok {
			out[p] = h
		}
	}
	return out
}

// belongsToRepository emits the lifecycle BELONGS_TO edge from every File
// node to the repository root, per spec's lifecycle edge category.
func belongsToRepository(repositoryID string, nodes []ir.Node, now time.Time) []ir.Edge {
	// The repository root node's entityId is the bare repositoryId (see
	// state.Store.EnsureRepository), not a Fingerprint-derived id.
	rootID := repositoryID
	var edges []ir.Edge
	for _, n := range nodes {
		if n.Kind != ir.KindFile {
			continue
		}
		edges = append(edges, ir.Edge{
			EntityID:       ir.EdgeFingerprint(ir.EdgeBelongsTo, n.EntityID, rootID, ""),
			RepositoryID:   repositoryID,
			Type:           ir.EdgeBelongsTo,
			SourceEntityID: n.EntityID,
			TargetEntityID: rootID,
			CreatedAt:      now,
		})
	}
	return edges
}
