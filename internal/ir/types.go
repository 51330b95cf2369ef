// Package ir defines the uniform intermediate representation that every
// per-language parser emits, and that the cross-file resolver and graph
// writer consume. It mirrors the composite-ID style of
// internal/graph/builder.go but generalizes it to an open set of entity
// kinds instead of a fixed File/Developer/Commit/PR schema.
package ir

import "time"

// Kind identifies the architectural role of a node. The label set written
// to the graph for a node is derived from Kind via a fixed mapping (see
// internal/graphwriter.LabelsForKind) so that label exclusivity holds: an
// entity never carries two semantically exclusive labels at once.
type Kind string

const (
	KindFile         Kind = "File"
	KindDirectory    Kind = "Directory"
	KindPackage      Kind = "Package"
	KindClass        Kind = "Class"
	KindInterface    Kind = "Interface"
	KindEnum         Kind = "Enum"
	KindFunction     Kind = "Function"
	KindMethod       Kind = "Method"
	KindField        Kind = "Field"
	KindAnonCallback Kind = "AnonymousCallback"

	KindController    Kind = "Controller"
	KindService       Kind = "Service"
	KindRepository    Kind = "Repository" // data-access stereotype, distinct from lifecycle Repository
	KindUIRoute       Kind = "UIRoute"
	KindUIPage        Kind = "UIPage"

	KindSQLStatement Kind = "SQLStatement"
	KindSQLTable     Kind = "SQLTable"

	KindRestEndpoint     Kind = "RestEndpoint"
	KindScheduledTask    Kind = "ScheduledTask"
	KindCLICommand       Kind = "CLICommand"
	KindEventHandler     Kind = "EventHandler"
	KindGraphQLOperation Kind = "GraphQLOperation"

	KindTestFile Kind = "TestFile"
	KindTestCase Kind = "TestCase"

	KindBusinessRule        Kind = "BusinessRule"
	KindEnrichedBusinessRule Kind = "EnrichedBusinessRule"
	KindSecurityRule        Kind = "SecurityRule"
	KindValidationChain     Kind = "ValidationChain"
	KindMenuItem            Kind = "MenuItem"
	KindScreen              Kind = "Screen"

	KindPlaceholder Kind = "Placeholder"

	// Lifecycle kinds. KindRepositoryRoot carries the graph label
	// "RepositoryRoot" rather than the spec's literal "Repository" because
	// that name is already taken by the data-access stereotype label
	// (KindRepository above) — reusing it would make `MATCH (n:Repository)`
	// ambiguous between the one root node and every repository-stereotype
	// class in the codebase. Resolved as an Open Question; see DESIGN.md.
	KindRepositoryRoot         Kind = "RepositoryRoot"
	KindIndexState             Kind = "IndexState"
	KindProcessingCheckpoint   Kind = "ProcessingCheckpoint"
)

// EdgeType identifies a relationship between two entities.
type EdgeType string

const (
	EdgeContains     EdgeType = "CONTAINS"
	EdgeHasMethod    EdgeType = "HAS_METHOD"
	EdgeHasField     EdgeType = "HAS_FIELD"
	EdgeDefinesClass EdgeType = "DEFINES_CLASS"
	EdgeDeclaresPkg  EdgeType = "DECLARES_PACKAGE"

	EdgeCalls      EdgeType = "CALLS"
	EdgeImports    EdgeType = "IMPORTS"
	EdgeExtends    EdgeType = "EXTENDS"
	EdgeImplements EdgeType = "IMPLEMENTS"
	EdgeDependsOn  EdgeType = "DEPENDS_ON"

	EdgeExecutesSQL EdgeType = "EXECUTES_SQL"
	EdgeTests       EdgeType = "TESTS"
	EdgeCovers      EdgeType = "COVERS"
	EdgeRendersPage EdgeType = "RENDERS_PAGE"

	EdgeValidatesField EdgeType = "VALIDATES_FIELD"
	EdgeGuardsMethod   EdgeType = "GUARDS_METHOD"
	EdgeEnforcesRule   EdgeType = "ENFORCES_RULE"

	EdgeBelongsTo     EdgeType = "BELONGS_TO"
	EdgeHasIndexState EdgeType = "HAS_INDEX_STATE"
)

// CrossFileEdgeType returns the CROSS_FILE_ mirror of a reference edge type,
// emitted by the resolver when source and target live in different files.
func CrossFileEdgeType(t EdgeType) EdgeType {
	return EdgeType("CROSS_FILE_" + string(t))
}

// Documentation captures a node's parsed doc comment, tags normalized
// (`@return` → `returns`, etc.) per spec.
type Documentation struct {
	Summary    string            `json:"summary"`
	RawComment string            `json:"rawComment"`
	Tags       map[string]string `json:"tags,omitempty"`
	Format     string            `json:"format,omitempty"` // "javadoc", "docstring", "jsdoc", ...
}

// Parameter describes one parameter of a function-like entity's signature.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Default  string `json:"default,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Signature describes a function/method/constructor's shape.
type Signature struct {
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returnType,omitempty"`
	Visibility string      `json:"visibility,omitempty"` // public, private, protected, package
	Modifiers  []string    `json:"modifiers,omitempty"`  // final, const, ...
	Async      bool        `json:"async,omitempty"`
	Static     bool        `json:"static,omitempty"`
	Abstract   bool        `json:"abstract,omitempty"`
	Rendered   string      `json:"rendered,omitempty"` // pre-rendered short signature string
}

// Node is the uniform per-entity record emitted by every language parser
// and consumed by the graph writer.
type Node struct {
	EntityID     string                 `json:"entityId"`
	RepositoryID string                 `json:"repositoryId"`
	Kind         Kind                   `json:"kind"`
	Name         string                 `json:"name"`
	FilePath     string                 `json:"filePath"`
	Language     string                 `json:"language"`
	StartLine    int                    `json:"startLine"`   // 1-based
	EndLine      int                    `json:"endLine"`     // 1-based, inclusive
	StartColumn  int                    `json:"startColumn"` // 0-based
	EndColumn    int                    `json:"endColumn"`   // 0-based
	CreatedAt    time.Time              `json:"createdAt"`
	Documentation *Documentation        `json:"documentation,omitempty"`
	Signature     *Signature            `json:"signature,omitempty"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
}

// Edge is the uniform per-relationship record. SourceEntityID/TargetEntityID
// are concrete once resolved; during pass 1 a symbolic edge carries an
// unresolved-symbol name in TargetEntityID and SymbolicTarget set.
type Edge struct {
	EntityID       string                 `json:"entityId"`
	RepositoryID   string                 `json:"repositoryId"`
	Type           EdgeType               `json:"type"`
	SourceEntityID string                 `json:"sourceEntityId"`
	TargetEntityID string                 `json:"targetEntityId"`
	Weight         *float64               `json:"weight,omitempty"`
	Properties     map[string]interface{} `json:"properties,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`

	// Symbolic/unresolved edge bookkeeping, consumed by internal/resolver.
	Symbolic       bool   `json:"symbolic,omitempty"`
	SymbolicTarget string `json:"symbolicTarget,omitempty"` // unresolved name, e.g. callee identifier
	SymbolicKind   string `json:"symbolicKind,omitempty"`   // "call", "import", "extends", ...
	Ambiguous      bool   `json:"ambiguous,omitempty"`
	Unresolved     bool   `json:"unresolved,omitempty"`
	CrossFile      bool   `json:"crossFile,omitempty"`
}

// ParseResult is what one language parser invocation returns for one file.
type ParseResult struct {
	FilePath string
	Language string
	Nodes    []Node
	Edges    []Edge
	Err      error
}

// FileRecord is what the scanner (C2) emits per candidate file.
type FileRecord struct {
	Path        string
	Size        int64
	ContentHash string
}
