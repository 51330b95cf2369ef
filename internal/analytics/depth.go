package analytics

import (
	"context"
	"fmt"
)

// depthEdgeTypes is the CALLS|RENDERS|ROUTE_USES_SERVICE scope spec §4.10
// names for dependency-depth BFS. This IR has no ROUTE_USES_SERVICE edge
// type and models "renders" as RENDERS_PAGE rather than bare RENDERS, so
// the BFS scope is CALLS|RENDERS_PAGE|DEPENDS_ON — DEPENDS_ON stands in for
// ROUTE_USES_SERVICE as the closest existing edge for a route depending on
// the service it calls into (documented limitation, not a silent drop).
const depthEdgeTypes = "CALLS|RENDERS_PAGE|DEPENDS_ON"

const maxDependencyDepth = 10

// DependencyDepthResult mirrors PageRankResult's shape for orchestrator
// reporting.
type DependencyDepthResult struct {
	NodesUpdated int
}

// ComputeDependencyDepth runs a multi-source BFS from every entry-point
// node (RestEndpoint, UIRoute, CLICommand, ScheduledTask) out along
// depthEdgeTypes, capping at maxDependencyDepth, min-depth-wins when a node
// is reachable from multiple entry points, and writes dependencyDepth back
// onto every reached node.
func (a *Analyzer) ComputeDependencyDepth(ctx context.Context, repositoryID string) (DependencyDepthResult, error) {
	entryRows, err := a.backend.Run(ctx, `
MATCH (n {repositoryId: $repositoryId})
WHERE n:RestEndpoint OR n:UIRoute OR n:CLICommand OR n:ScheduledTask
RETURN n.entityId AS entityId
`, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return DependencyDepthResult{}, err
	}

	edgeRows, err := a.backend.Run(ctx, fmt.Sprintf(`
MATCH (a:Component {repositoryId: $repositoryId})-[r:%s]->(b:Component {repositoryId: $repositoryId})
RETURN a.entityId AS source, b.entityId AS target
`, depthEdgeTypes), map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return DependencyDepthResult{}, err
	}

	adjacency := make(map[string][]string)
	for _, row := range edgeRows {
		source, _ := row["source"].(string)
		target, _ := row["target"].(string)
		if source == "" || target == "" {
			continue
		}
		adjacency[source] = append(adjacency[source], target)
	}

	depth := make(map[string]int)
	var frontier []string
	for _, row := range entryRows {
		entityID, _ := row["entityId"].(string)
		if entityID == "" {
			continue
		}
		if _, seen := depth[entityID]; !seen {
			depth[entityID] = 0
			frontier = append(frontier, entityID)
		}
	}

	for d := 0; d < maxDependencyDepth && len(frontier) > 0; d++ {
		var next []string
		for _, node := range frontier {
			for _, neighbor := range adjacency[node] {
				if _, seen := depth[neighbor]; seen {
					continue
				}
				depth[neighbor] = d + 1
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	if err := a.writeDepth(ctx, depth); err != nil {
		return DependencyDepthResult{}, err
	}
	return DependencyDepthResult{NodesUpdated: len(depth)}, nil
}

func (a *Analyzer) writeDepth(ctx context.Context, depth map[string]int) error {
	if len(depth) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(depth))
	for entityID, d := range depth {
		rows = append(rows, map[string]interface{}{"entityId": entityID, "depth": d})
	}
	_, err := a.backend.Run(ctx, `
UNWIND $rows AS row
MATCH (n {entityId: row.entityId})
SET n.dependencyDepth = row.depth
`, map[string]interface{}{"rows": rows})
	return err
}
