// Package analytics implements the post-index analytics component (C10):
// PageRank over the code-reference subgraph and dependency-depth BFS from
// entry points. No teacher file computes either — graph analytics are a
// Neo4j GDS plugin capability, not something the ingestion pipeline itself
// implements — so the primary path issues native GDS Cypher the way
// internal/graph/neo4j_backend.go issues any other ExecuteQuery call, and
// falls back to a plain-Go approximation when GDS is absent (see
// DESIGN.md's standard-library justification for the fallback only).
package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Runner is the subset of graphwriter.Backend analytics needs.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// referenceEdgeTypes is the CALLS|IMPORTS|EXTENDS|IMPLEMENTS|DEPENDS_ON
// scope spec §4.10 names for the PageRank subgraph (DEPENDS_ON_MODULE has
// no equivalent edge type in this IR — there is no module-granularity
// dependency edge distinct from DEPENDS_ON — so it is folded into
// DEPENDS_ON rather than introducing an unused edge type).
const referenceEdgeTypes = "CALLS|IMPORTS|EXTENDS|IMPLEMENTS|DEPENDS_ON"

// ProcedureNotFoundError signals GDS is unavailable on the target Neo4j
// instance, triggering the fallback path.
type ProcedureNotFoundError struct {
	Cause error
}

func (e *ProcedureNotFoundError) Error() string {
	return fmt.Sprintf("gds procedure not available: %v", e.Cause)
}
func (e *ProcedureNotFoundError) Unwrap() error { return e.Cause }

func isProcedureNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ProcedureNotFound") || strings.Contains(msg, "Unknown function") || strings.Contains(msg, "There is no procedure")
}

// Analyzer runs analytics against a Runner.
type Analyzer struct {
	backend Runner
}

// NewAnalyzer constructs an Analyzer over backend.
func NewAnalyzer(backend Runner) *Analyzer {
	return &Analyzer{backend: backend}
}

// PageRankResult records which method actually produced the scores, so the
// orchestrator can persist it on the run's IndexState (DESIGN.md Open
// Question resolution 7).
type PageRankResult struct {
	Method        string // "gds" or "fallback"
	NodesUpdated  int
}

// ComputePageRank scores every Component-labeled node in repositoryID's
// subgraph and writes pageRank back onto each node, preferring native GDS
// and falling back to an in-process approximation when GDS is unavailable.
func (a *Analyzer) ComputePageRank(ctx context.Context, repositoryID string) (PageRankResult, error) {
	scores, err := a.computeViaGDS(ctx, repositoryID)
	if err != nil {
		if !isProcedureNotFound(err) {
			return PageRankResult{}, err
		}
		scores, err = a.computeFallback(ctx, repositoryID)
		if err != nil {
			return PageRankResult{}, err
		}
		if err := a.writeBack(ctx, scores); err != nil {
			return PageRankResult{}, err
		}
		return PageRankResult{Method: "fallback", NodesUpdated: len(scores)}, nil
	}

	if err := a.writeBack(ctx, scores); err != nil {
		return PageRankResult{}, err
	}
	return PageRankResult{Method: "gds", NodesUpdated: len(scores)}, nil
}

func (a *Analyzer) computeViaGDS(ctx context.Context, repositoryID string) (map[string]float64, error) {
	graphName := "pagerank_" + sanitizeGraphName(repositoryID)

	projectCypher := fmt.Sprintf(`
CALL gds.graph.project.cypher(
  $graphName,
  'MATCH (n:Component {repositoryId: $repositoryId}) RETURN id(n) AS id',
  'MATCH (a:Component {repositoryId: $repositoryId})-[r:%s]->(b:Component {repositoryId: $repositoryId}) RETURN id(a) AS source, id(b) AS target',
  {parameters: {repositoryId: $repositoryId}}
) YIELD graphName
RETURN graphName
`, referenceEdgeTypes)

	if _, err := a.backend.Run(ctx, projectCypher, map[string]interface{}{
		"graphName":    graphName,
		"repositoryId": repositoryID,
	}); err != nil {
		return nil, &ProcedureNotFoundError{Cause: err}
	}
	defer a.backend.Run(ctx, "CALL gds.graph.drop($graphName, false)", map[string]interface{}{"graphName": graphName})

	streamCypher := `
CALL gds.pageRank.stream($graphName, {dampingFactor: 0.85, maxIterations: 20})
YIELD nodeId, score
RETURN gds.util.asNode(nodeId).entityId AS entityId, score AS score
`
	rows, err := a.backend.Run(ctx, streamCypher, map[string]interface{}{"graphName": graphName})
	if err != nil {
		return nil, err
	}

	return normalize(rowsToScores(rows)), nil
}

// computeFallback approximates relevance as inDegree/totalEdges + 0.15,
// normalized by max to [0,1] (spec §4.10's documented approximation).
func (a *Analyzer) computeFallback(ctx context.Context, repositoryID string) (map[string]float64, error) {
	totalRows, err := a.backend.Run(ctx, fmt.Sprintf(`
MATCH (:Component {repositoryId: $repositoryId})-[r:%s]->(:Component {repositoryId: $repositoryId})
RETURN count(r) AS totalEdges
`, referenceEdgeTypes), map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return nil, err
	}
	totalEdges := 0.0
	if len(totalRows) > 0 {
		totalEdges = toFloat(totalRows[0]["totalEdges"])
	}
	if totalEdges == 0 {
		totalEdges = 1 // avoid divide-by-zero; every inDegree is 0 anyway
	}

	inDegreeRows, err := a.backend.Run(ctx, fmt.Sprintf(`
MATCH (n:Component {repositoryId: $repositoryId})
OPTIONAL MATCH (:Component {repositoryId: $repositoryId})-[r:%s]->(n)
RETURN n.entityId AS entityId, count(r) AS inDegree
`, referenceEdgeTypes), map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return nil, err
	}

	raw := make(map[string]float64, len(inDegreeRows))
	for _, row := range inDegreeRows {
		entityID, _ := row["entityId"].(string)
		if entityID == "" {
			continue
		}
		inDegree := toFloat(row["inDegree"])
		raw[entityID] = inDegree/totalEdges + 0.15
	}
	return normalize(raw), nil
}

func (a *Analyzer) writeBack(ctx context.Context, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(scores))
	for entityID, score := range scores {
		rows = append(rows, map[string]interface{}{"entityId": entityID, "score": score})
	}
	cypher := `
UNWIND $rows AS row
MATCH (n {entityId: row.entityId})
SET n.pageRank = row.score
`
	_, err := a.backend.Run(ctx, cypher, map[string]interface{}{"rows": rows})
	return err
}

func rowsToScores(rows []map[string]interface{}) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		entityID, _ := row["entityId"].(string)
		if entityID == "" {
			continue
		}
		out[entityID] = toFloat(row["score"])
	}
	return out
}

func normalize(scores map[string]float64) map[string]float64 {
	max := 0.0
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return scores
	}
	out := make(map[string]float64, len(scores))
	for k, v := range scores {
		out[k] = math.Min(v/max, 1.0)
	}
	return out
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func sanitizeGraphName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
