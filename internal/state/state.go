// Package state persists the lifecycle entities that sit alongside the code
// graph: the Repository root node and its IndexState. Per the persisted
// state layout, these are not a side table — they are graph nodes like any
// other, so this package talks to the same Runner seam internal/schema and
// internal/analytics use (a thin Cypher escape hatch over
// internal/graphwriter.Backend) rather than opening its own store.
package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/coderisk/graphindex/internal/planner"
)

// Runner is the subset of graphwriter.Backend this package needs.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// Store persists the Repository root node and its IndexState.
type Store struct {
	backend Runner
}

// NewStore constructs a Store over backend.
func NewStore(backend Runner) *Store {
	return &Store{backend: backend}
}

// EnsureRepository upserts the single root node identified by repositoryID
// (the Repository label is named RepositoryRoot on this node to avoid
// colliding with the data-access stereotype label of the same name — see
// ir.KindRepositoryRoot).
func (s *Store) EnsureRepository(ctx context.Context, repositoryID, name, source string, now time.Time) error {
	_, err := s.backend.Run(ctx, `
MERGE (r:`+string(ir.KindRepositoryRoot)+` {entityId: $repositoryId})
ON CREATE SET r.createdAt = $now
SET r.repositoryId = $repositoryId, r.name = $name, r.source = $source, r.updatedAt = $now
`, map[string]interface{}{
		"repositoryId": repositoryID,
		"name":         name,
		"source":       source,
		"now":          now,
	})
	return err
}

// LoadIndexState returns the repository's current IndexState, or nil if it
// has never been indexed (the planner's "no existing index state" branch).
func (s *Store) LoadIndexState(ctx context.Context, repositoryID string) (*planner.IndexState, error) {
	rows, err := s.backend.Run(ctx, `
MATCH (:`+string(ir.KindRepositoryRoot)+` {entityId: $repositoryId})-[:`+string(ir.EdgeHasIndexState)+`]->(i:`+string(ir.KindIndexState)+`)
RETURN i.lastCommitSha AS lastCommitSha, i.fileHashes AS fileHashes, i.indexVersion AS indexVersion
`, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	st := &planner.IndexState{FileHashes: map[string]string{}}
	if sha, ok := row["lastCommitSha"].(string); ok {
		st.LastCommitSha = sha
	}
	st.IndexVersion = int(toInt64(row["indexVersion"]))
	if raw, ok := row["fileHashes"].(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &st.FileHashes)
	}
	return st, nil
}

// IndexStateUpdate is what the orchestrator has in hand when it reaches the
// saving_index_state phase.
type IndexStateUpdate struct {
	LastCommitSha     string
	FileHashes        map[string]string
	IndexVersion      int
	TotalFilesIndexed int
	PageRankMethod    string
}

// SaveIndexState replaces the IndexState node in one MERGE, matching the
// "replaced atomically at end of a successful run" requirement — there is
// no intermediate state between the old and new IndexState from any
// observer's point of view.
func (s *Store) SaveIndexState(ctx context.Context, repositoryID string, upd IndexStateUpdate, now time.Time) error {
	hashes, err := json.Marshal(upd.FileHashes)
	if err != nil {
		return err
	}
	_, err = s.backend.Run(ctx, `
MATCH (r:`+string(ir.KindRepositoryRoot)+` {entityId: $repositoryId})
MERGE (i:`+string(ir.KindIndexState)+` {entityId: $repositoryId})
SET i.repositoryId = $repositoryId,
    i.lastCommitSha = $lastCommitSha,
    i.fileHashes = $fileHashes,
    i.totalFilesIndexed = $totalFilesIndexed,
    i.indexVersion = $indexVersion,
    i.pageRankMethod = $pageRankMethod,
    i.lastIndexedAt = $now
MERGE (r)-[:`+string(ir.EdgeHasIndexState)+`]->(i)
`, map[string]interface{}{
		"repositoryId":      repositoryID,
		"lastCommitSha":     upd.LastCommitSha,
		"fileHashes":        string(hashes),
		"totalFilesIndexed": upd.TotalFilesIndexed,
		"indexVersion":      upd.IndexVersion,
		"pageRankMethod":    upd.PageRankMethod,
		"now":               now,
	})
	return err
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
