package graphwriter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// maxQueryRetries and baseRetryDelay implement spec §5/§7's bounded
// exponential-backoff retry policy for transient graph-DB errors: up to 3
// retries (4 attempts total), doubling the delay each time (250ms, 500ms,
// 1s), grounded on the teacher's generateContentWithRetry
// (internal/llm/gemini_client.go) backoff loop shape.
const (
	maxQueryRetries = 3
	baseRetryDelay  = 250 * time.Millisecond
)

// defaultQueryTimeout is used when the caller configured no QueryTimeout.
const defaultQueryTimeout = 30 * time.Second

// Neo4jBackend implements Backend against a real Neo4j cluster, grounded
// on internal/graph/neo4j_backend.go's driver lifecycle and
// neo4j.ExecuteQuery usage, generalized from that file's fixed
// File/Developer/Commit/PR label switch to the single entityId-keyed
// upsert shared by every kind (see cypher.go).
type Neo4jBackend struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
}

// NewNeo4jBackend opens a driver and verifies connectivity before
// returning, matching the teacher's NewNeo4jBackend contract.
func NewNeo4jBackend(ctx context.Context, uri, username, password, database string) (*Neo4jBackend, error) {
	return NewNeo4jBackendWithTimeout(ctx, uri, username, password, database, defaultQueryTimeout)
}

// NewNeo4jBackendWithTimeout is NewNeo4jBackend with an explicit per-call
// query timeout (spec §5); callers that don't care use NewNeo4jBackend.
func NewNeo4jBackendWithTimeout(ctx context.Context, uri, username, password, database string, queryTimeout time.Duration) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Neo4jBackend{driver: driver, database: database, queryTimeout: queryTimeout}, nil
}

// withRetry runs op under a per-call timeout, retrying up to
// maxQueryRetries times with exponential backoff when op's error is a
// transient one (neo4j.IsRetryable), and returning immediately on any
// other error, context cancellation, or retry exhaustion.
func (b *Neo4jBackend) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, b.queryTimeout)
		err = op(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt >= maxQueryRetries || !isRetryableError(err) {
			return err
		}
		delay := baseRetryDelay * time.Duration(uint(1)<<uint(attempt))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// isRetryableError reports whether err is a transient Neo4j error worth
// retrying (deadlocks, leader switches, transient service unavailability),
// or a per-call timeout from withRetry's own context, which is itself
// retryable since it reflects that single attempt timing out rather than a
// caller-level cancellation.
func isRetryableError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return neo4j.IsRetryable(err)
}

// SaveNodesBatch upserts one UNWIND batch of nodes. Caller (Writer) has
// already split the full node set into per-config-size batches.
func (b *Neo4jBackend) SaveNodesBatch(ctx context.Context, nodes []NodeRecord) error {
	if len(nodes) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, len(nodes))
	for i, n := range nodes {
		rows[i] = map[string]interface{}{
			"entityId":   n.EntityID,
			"labels":     n.Labels,
			"properties": n.Properties,
		}
	}
	err := b.withRetry(ctx, func(callCtx context.Context) error {
		_, err := neo4j.ExecuteQuery(callCtx, b.driver, nodeUpsertCypher,
			map[string]interface{}{"nodes": rows},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		return err
	})
	if err != nil {
		return fmt.Errorf("save nodes batch: %w", err)
	}
	return nil
}

// SaveRelationshipsBatch upserts one UNWIND batch of edges sharing relType.
func (b *Neo4jBackend) SaveRelationshipsBatch(ctx context.Context, relType string, edges []EdgeRecord) error {
	if len(edges) == 0 {
		return nil
	}
	query, err := edgeUpsertCypher(relType)
	if err != nil {
		return err
	}
	rows := make([]map[string]interface{}, len(edges))
	for i, e := range edges {
		rows[i] = map[string]interface{}{
			"entityId":       e.EntityID,
			"sourceEntityId": e.SourceEntityID,
			"targetEntityId": e.TargetEntityID,
			"properties":     e.Properties,
			"createdAt":      e.CreatedAt,
		}
	}
	err = b.withRetry(ctx, func(callCtx context.Context) error {
		_, err := neo4j.ExecuteQuery(callCtx, b.driver, query,
			map[string]interface{}{"edges": rows},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		return err
	})
	if err != nil {
		return fmt.Errorf("save relationships batch (%s): %w", relType, err)
	}
	return nil
}

// Run executes an arbitrary parameterized Cypher statement, used by the
// schema manager (DDL) and analytics (PageRank/BFS) components, mirroring
// the teacher's QueryWithParams escape hatch.
func (b *Neo4jBackend) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	var result *neo4j.EagerResult
	err := b.withRetry(ctx, func(callCtx context.Context) error {
		r, err := neo4j.ExecuteQuery(callCtx, b.driver, cypher,
			params,
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	rows := make([]map[string]interface{}, 0, len(result.Records))
	for _, record := range result.Records {
		row := make(map[string]interface{}, len(record.Keys))
		for _, key := range record.Keys {
			if v, ok := record.Get(key); ok {
				row[key] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close shuts down the underlying driver.
func (b *Neo4jBackend) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}
