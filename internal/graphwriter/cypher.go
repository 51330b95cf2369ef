package graphwriter

import (
	"fmt"
	"regexp"
)

// identifierPattern matches the same "alphanumeric + underscore" rule the
// teacher's CypherBuilder uses for label/key validation, grounded on
// internal/graph/cypher_builder.go's isValidIdentifier.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(s string) bool {
	return s != "" && identifierPattern.MatchString(s)
}

// nodeUpsertCypher is the single UNWIND+MERGE template every node batch
// uses, regardless of kind, because entityId is the sole upsert key (spec
// §3.2). Labels are set dynamically per row via apoc.create.setLabels,
// which REPLACES a node's label set in one call — the same APOC dependency
// the teacher already carries for apoc.convert.toJson (internal/risk/
// ownership.go), reused here instead of hand-building per-label-set query
// strings.
const nodeUpsertCypher = `
UNWIND $nodes AS node
MERGE (n {entityId: node.entityId})
SET n = node.properties
SET n.entityId = node.entityId
WITH n, node
CALL apoc.create.setLabels(n, node.labels) YIELD node AS labeled
RETURN count(labeled) AS upserted
`

// edgeUpsertCypher merges an edge of one relationship type against a batch
// of endpoint pairs. Relationship types can't be bound as query parameters,
// so relType is validated against isValidIdentifier and interpolated as a
// literal — the same approach as the teacher's sanitizeLabel/
// createEdgesBatchByType, safe because relType is always drawn from the
// fixed ir.EdgeType enum, never from user input.
func edgeUpsertCypher(relType string) (string, error) {
	if !isValidIdentifier(relType) {
		return "", fmt.Errorf("invalid relationship type: %s", relType)
	}
	return fmt.Sprintf(`
UNWIND $edges AS edge
MERGE (from {entityId: edge.sourceEntityId})
MERGE (to {entityId: edge.targetEntityId})
MERGE (from)-[r:%s {entityId: edge.entityId}]->(to)
ON CREATE SET r = edge.properties, r.entityId = edge.entityId, r.createdAt = edge.createdAt
ON MATCH SET r += edge.properties
RETURN count(r) AS upserted
`, relType), nil
}
