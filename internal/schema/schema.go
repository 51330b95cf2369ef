// Package schema applies and tears down the graph's constraints, property
// indexes, and full-text indexes. No teacher file does this explicitly —
// the teacher relies on MERGE idempotency alone and never issues DDL — so
// this package is new, built in the teacher's CypherBuilder-parameterized
// style: DDL statements don't take user-supplied bind parameters, so
// instead every label/property name is validated against the same
// alphanumeric-plus-underscore identifier rule before being interpolated
// into a literal (see internal/graph/cypher_builder.go's isValidIdentifier).
package schema

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/coderisk/graphindex/internal/ir"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(s string) bool {
	return s != "" && identifierPattern.MatchString(s)
}

// Runner is the subset of graphwriter.Backend the schema manager needs.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// Manager applies and tears down schema against a Runner.
type Manager struct {
	backend Runner
}

// NewManager constructs a Manager over backend.
func NewManager(backend Runner) *Manager {
	return &Manager{backend: backend}
}

// constraintLabels is every kind that gets an entityId uniqueness
// constraint, i.e. every kind the graph writer ever upserts.
var constraintLabels = []ir.Kind{
	ir.KindFile, ir.KindDirectory, ir.KindPackage,
	ir.KindClass, ir.KindInterface, ir.KindEnum,
	ir.KindFunction, ir.KindMethod, ir.KindField, ir.KindAnonCallback,
	ir.KindController, ir.KindService, ir.KindRepository, ir.KindUIRoute, ir.KindUIPage,
	ir.KindSQLStatement, ir.KindSQLTable,
	ir.KindRestEndpoint, ir.KindScheduledTask, ir.KindCLICommand, ir.KindEventHandler, ir.KindGraphQLOperation,
	ir.KindTestFile, ir.KindTestCase,
	ir.KindBusinessRule, ir.KindEnrichedBusinessRule, ir.KindSecurityRule, ir.KindValidationChain,
	ir.KindMenuItem, ir.KindScreen,
	ir.KindPlaceholder,
	ir.KindRepositoryRoot, ir.KindIndexState, ir.KindProcessingCheckpoint,
}

// propertyIndexSpec is one `label.property` combination to index.
type propertyIndexSpec struct {
	label    string
	property string
}

// propertyIndexes covers spec §4.9's "frequently filtered fields".
var propertyIndexes = []propertyIndexSpec{
	{"Component", "name"},
	{"Component", "filePath"},
	{"Component", "stereotype"},
	{"Component", "kind"},
	{"Component", "pageRank"},
	{"RestEndpoint", "framework"},
	{"RestEndpoint", "path"},
}

// fullTextIndexSpec is one curated full-text index (spec §4.9).
type fullTextIndexSpec struct {
	name       string
	labels     []string
	properties []string
}

var fullTextIndexes = []fullTextIndexSpec{
	{"ftComponents", []string{"Component"}, []string{"name", "stereotype"}},
	{"ftFiles", []string{"File"}, []string{"name", "filePath"}},
	{"ftAPIEndpoints", []string{"RestEndpoint", "GraphQLOperation"}, []string{"path", "name"}},
	{"ftFeatures", []string{"UIRoute", "UIPage", "Screen"}, []string{"name"}},
	{"ftJSPSpring", []string{"Controller", "Service"}, []string{"name", "stereotype"}},
	{"ftBusinessRules", []string{"BusinessRule", "EnrichedBusinessRule"}, []string{"name"}},
	{"ftSecurityRules", []string{"SecurityRule"}, []string{"name"}},
	{"ftErrorMessages", []string{"ValidationChain"}, []string{"name"}},
	{"ftMenuScreens", []string{"MenuItem", "Screen"}, []string{"name"}},
}

// Apply idempotently creates every constraint and index; "already exists"
// is swallowed via IF NOT EXISTS, matching spec §4.9.
func (m *Manager) Apply(ctx context.Context) error {
	if err := m.applyConstraints(ctx); err != nil {
		return err
	}
	if err := m.applyPropertyIndexes(ctx); err != nil {
		return err
	}
	return m.applyFullTextIndexes(ctx)
}

func (m *Manager) applyConstraints(ctx context.Context) error {
	for _, kind := range constraintLabels {
		label := string(kind)
		if !isValidIdentifier(label) {
			return fmt.Errorf("invalid constraint label: %s", label)
		}
		constraintName := "uniq_" + strings.ToLower(label) + "_entityId"
		cypher := fmt.Sprintf(
			"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.entityId IS UNIQUE",
			constraintName, label,
		)
		if _, err := m.backend.Run(ctx, cypher, nil); err != nil {
			return fmt.Errorf("create constraint %s: %w", constraintName, err)
		}
	}
	return nil
}

func (m *Manager) applyPropertyIndexes(ctx context.Context) error {
	for _, spec := range propertyIndexes {
		if !isValidIdentifier(spec.label) || !isValidIdentifier(spec.property) {
			return fmt.Errorf("invalid property index spec: %s.%s", spec.label, spec.property)
		}
		indexName := "idx_" + strings.ToLower(spec.label) + "_" + strings.ToLower(spec.property)
		cypher := fmt.Sprintf(
			"CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
			indexName, spec.label, spec.property,
		)
		if _, err := m.backend.Run(ctx, cypher, nil); err != nil {
			return fmt.Errorf("create index %s: %w", indexName, err)
		}
	}
	return nil
}

func (m *Manager) applyFullTextIndexes(ctx context.Context) error {
	for _, spec := range fullTextIndexes {
		if !isValidIdentifier(spec.name) {
			return fmt.Errorf("invalid full-text index name: %s", spec.name)
		}
		for _, l := range spec.labels {
			if !isValidIdentifier(l) {
				return fmt.Errorf("invalid full-text index label: %s", l)
			}
		}
		for _, p := range spec.properties {
			if !isValidIdentifier(p) {
				return fmt.Errorf("invalid full-text index property: %s", p)
			}
		}
		cypher := fmt.Sprintf(
			"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON EACH [%s]",
			spec.name, strings.Join(spec.labels, "|"), quotedProperties(spec.properties),
		)
		if _, err := m.backend.Run(ctx, cypher, nil); err != nil {
			return fmt.Errorf("create full-text index %s: %w", spec.name, err)
		}
	}
	return nil
}

func quotedProperties(props []string) string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = "n." + p
	}
	return strings.Join(out, ", ")
}

// Reset detaches and deletes every node in the repository's subgraph,
// using apoc.periodic.iterate to delete in bounded batches rather than one
// huge transaction — the same APOC dependency internal/risk/ownership.go
// already carries, reused here for bulk deletion instead of JSON encoding.
func (m *Manager) Reset(ctx context.Context, repositoryID string) error {
	cypher := `
CALL apoc.periodic.iterate(
  "MATCH (n {repositoryId: $repositoryId}) RETURN n",
  "DETACH DELETE n",
  {batchSize: 5000, params: {repositoryId: $repositoryId}}
) YIELD batches, total
RETURN batches, total
`
	_, err := m.backend.Run(ctx, cypher, map[string]interface{}{"repositoryId": repositoryID})
	if err != nil {
		return fmt.Errorf("reset repository subgraph: %w", err)
	}
	return nil
}

// ForceUpdate drops every constraint and index this manager owns, then
// reapplies them — spec §4.9's "drops all user schema before re-applying".
// Uses apoc.schema.assert({}, {}) to clear ALL schema in one call rather
// than issuing one DROP per constraint/index, then calls Apply to rebuild.
func (m *Manager) ForceUpdate(ctx context.Context) error {
	if _, err := m.backend.Run(ctx, "CALL apoc.schema.assert({}, {})", nil); err != nil {
		return fmt.Errorf("drop existing schema: %w", err)
	}
	return m.Apply(ctx)
}
