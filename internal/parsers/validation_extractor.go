package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

var fieldConstraintPattern = regexp.MustCompile(`@(NotNull|NotEmpty|NotBlank|Size|Pattern|Min|Max|Email)\s*(\([^)]*\))?`)

var guardClausePattern = regexp.MustCompile(`(?i)\b(if\s*\(?\s*!?\s*\w+(\.length\s*==\s*0|\s*==\s*(nil|null|None)|\.empty\(\))|assert\s|precondition|require\s*\()`)

// ExtractValidationChains is the validation-chain extractor (spec §4.6).
// For each Method node it scans the method's own source span (not a full
// AST walk — the same lexical-sniffing approach used by ExtractSQL and
// DetectRoutes above, chosen because guard-clause shapes vary too widely
// across languages to express as one grammar-specific node-kind match) for
// guard clauses and field-level constraint annotations, emitting a
// ValidationChain node plus GUARDS_METHOD/VALIDATES_FIELD edges.
func ExtractValidationChains(repositoryID, filePath string, fileNodes []ir.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge

	lines := strings.Split(string(src), "\n")

	for _, n := range fileNodes {
		if n.Kind != ir.KindMethod && n.Kind != ir.KindFunction {
			continue
		}
		if n.StartLine < 1 || n.EndLine > len(lines) || n.StartLine > n.EndLine {
			continue
		}
		body := strings.Join(lines[n.StartLine-1:n.EndLine], "\n")

		guardCount := len(guardClausePattern.FindAllString(body, -1))
		constraints := fieldConstraintPattern.FindAllStringSubmatch(body, -1)
		if guardCount == 0 && len(constraints) == 0 {
			continue
		}

		qn := n.EntityID + ":validation"
		chain := ir.Node{
			EntityID:     ir.Fingerprint(repositoryID, ir.KindValidationChain, qn),
			RepositoryID: repositoryID,
			Kind:         ir.KindValidationChain,
			Name:         n.Name + " validation",
			FilePath:     filePath,
			StartLine:    n.StartLine,
			EndLine:      n.EndLine,
			CreatedAt:    now,
			Properties: map[string]interface{}{
				"guardClauseCount": guardCount,
				"constraintCount":  len(constraints),
			},
		}
		nodes = append(nodes, chain)
		edges = append(edges, ir.Edge{
			EntityID:       ir.EdgeFingerprint(ir.EdgeGuardsMethod, chain.EntityID, n.EntityID, ""),
			RepositoryID:   repositoryID,
			Type:           ir.EdgeGuardsMethod,
			SourceEntityID: chain.EntityID,
			TargetEntityID: n.EntityID,
			CreatedAt:      now,
		})

		for _, c := range constraints {
			constraintName := c[1]
			ruleQN := n.EntityID + ":rule:" + constraintName
			rule := ir.Node{
				EntityID:     ir.Fingerprint(repositoryID, ir.KindEnrichedBusinessRule, ruleQN),
				RepositoryID: repositoryID,
				Kind:         ir.KindEnrichedBusinessRule,
				Name:         constraintName,
				FilePath:     filePath,
				CreatedAt:    now,
				Properties:   map[string]interface{}{"constraint": constraintName},
			}
			nodes = append(nodes, rule)
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeValidatesField, chain.EntityID, rule.EntityID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeValidatesField,
				SourceEntityID: chain.EntityID,
				TargetEntityID: rule.EntityID,
				CreatedAt:      now,
			})
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeEnforcesRule, n.EntityID, rule.EntityID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeEnforcesRule,
				SourceEntityID: n.EntityID,
				TargetEntityID: rule.EntityID,
				CreatedAt:      now,
			})
		}
	}

	return nodes, edges
}
