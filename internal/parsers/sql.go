package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// sqlLiteralPattern matches quoted string literals across the supported
// languages (single, double, backtick/triple-quoted) so the SQL sniffer
// works uniformly without a language-specific AST walk.
var sqlLiteralPattern = regexp.MustCompile("(?s)(\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`[^`]*`|\"\"\"[\\s\\S]*?\"\"\")")

var sqlKeyword = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\s`)

var sqlFromTable = regexp.MustCompile(`(?i)(?:FROM|INTO|UPDATE|JOIN)\s+([a-zA-Z_][a-zA-Z0-9_\.]*)`)

var sqlSelectProjection = regexp.MustCompile(`(?is)^SELECT\s+(.*?)\s+FROM\s`)

var sqlInsertColumnList = regexp.MustCompile(`(?is)^INSERT\s+INTO\s+[a-zA-Z_][a-zA-Z0-9_.]*\s*\(([^)]*)\)`)

// nativeQueryPattern detects a JPA @Query(nativeQuery = true) annotation
// argument. Annotated queries default to isNativeQuery=false (plain JPQL)
// unless this flag is present, matching Spring Data's own default.
var nativeQueryPattern = regexp.MustCompile(`(?i)nativeQuery\s*=\s*true`)

// sqlAnnotationWindow bounds how far around a literal's byte offsets the
// native-query flag is looked for — wide enough to cross the annotation's
// other arguments (`@Query(value = "...", nativeQuery = true)` puts the
// flag after the literal) without pulling in an unrelated statement.
const sqlAnnotationWindow = 200

// ExtractSQL is the SQL extractor (spec §4.6): it sniffs string-literal
// SQL anywhere in a file's raw source, independent of the language grammar,
// since annotated queries/native query calls in Java/Python/Go/JS all
// reduce to "a string literal containing a SQL statement" at the text
// level — there is no SQL-parsing library anywhere in the retrieved corpus
// (see DESIGN.md), so statement/table extraction here is a deliberately
// simple regex-based approximation, not a full SQL parser.
func ExtractSQL(repositoryID, filePath string, fileNodes []ir.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge

	enclosingMethodFor := methodLookupByLine(fileNodes)

	matches := sqlLiteralPattern.FindAllStringIndex(string(src), -1)
	for _, m := range matches {
		literal := string(src[m[0]:m[1]])
		body := strings.Trim(literal, "\"'`")
		if !sqlKeyword.MatchString(body) {
			continue
		}
		lineNumber := lineOf(src, m[0])
		stmtType := strings.ToUpper(strings.Fields(strings.TrimSpace(body))[0])
		tables := extractTables(body)
		primaryTable := ""
		if len(tables) > 0 {
			primaryTable = tables[0]
		}
		columns := extractColumns(stmtType, body)
		nativeQuery := isNativeQuery(src, m[0], m[1])

		qn := ir.QualifiedSQLStatement(filePath, lineNumber, stmtType, primaryTable)
		stmt := ir.Node{
			EntityID:     ir.Fingerprint(repositoryID, ir.KindSQLStatement, qn),
			RepositoryID: repositoryID,
			Kind:         ir.KindSQLStatement,
			Name:         stmtType + " " + primaryTable,
			FilePath:     filePath,
			StartLine:    lineNumber,
			EndLine:      lineNumber + strings.Count(body, "\n"),
			CreatedAt:    now,
			Properties: map[string]interface{}{
				"statementType": stmtType,
				"primaryTable":  primaryTable,
				"tables":        tables,
				"columns":       columns,
				"isNativeQuery": nativeQuery,
				"raw":           truncate(body, 500),
			},
		}
		nodes = append(nodes, stmt)

		for _, table := range tables {
			tableNode := ir.Node{
				EntityID:     ir.Fingerprint(repositoryID, ir.KindSQLTable, table),
				RepositoryID: repositoryID,
				Kind:         ir.KindSQLTable,
				Name:         table,
				CreatedAt:    now,
			}
			nodes = append(nodes, tableNode)
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeDependsOn, stmt.EntityID, tableNode.EntityID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeDependsOn,
				SourceEntityID: stmt.EntityID,
				TargetEntityID: tableNode.EntityID,
				CreatedAt:      now,
			})
		}

		if methodID := enclosingMethodFor(lineNumber); methodID != "" {
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeExecutesSQL, methodID, stmt.EntityID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeExecutesSQL,
				SourceEntityID: methodID,
				TargetEntityID: stmt.EntityID,
				CreatedAt:      now,
			})
		}
	}
	return nodes, edges
}

// extractTables returns every distinct FROM/INTO/UPDATE/JOIN table
// reference in body, in first-seen order; callers treat index 0 as the
// statement's primary table.
func extractTables(body string) []string {
	matches := sqlFromTable.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		table := m[1]
		if table == "" || seen[table] {
			continue
		}
		seen[table] = true
		tables = append(tables, table)
	}
	return tables
}

// extractColumns parses the projection list out of a SELECT's `SELECT …
// FROM` clause or an INSERT's `(col1, col2)` list, stripping table-alias
// prefixes (`u.id` -> `id`) and `AS alias` suffixes. Other statement types
// (UPDATE, DELETE) have no fixed column list and return nil.
func extractColumns(stmtType, body string) []string {
	switch stmtType {
	case "SELECT":
		m := sqlSelectProjection.FindStringSubmatch(body)
		if len(m) != 2 {
			return nil
		}
		return splitColumnList(m[1])
	case "INSERT":
		m := sqlInsertColumnList.FindStringSubmatch(body)
		if len(m) != 2 {
			return nil
		}
		return splitColumnList(m[1])
	default:
		return nil
	}
}

// splitColumnList splits a comma-separated projection/column list and
// reduces each entry to its bare column name.
func splitColumnList(raw string) []string {
	parts := strings.Split(raw, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if col := bareColumnName(p); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// bareColumnName reduces one projection entry ("u.id", "u.name AS name",
// "*") to its bare column name, dropping any table-alias prefix and any
// trailing "AS alias"/"alias".
func bareColumnName(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		return expr
	}
	if fields := strings.Fields(expr); len(fields) > 0 {
		expr = fields[0]
	}
	if idx := strings.LastIndex(expr, "."); idx >= 0 {
		expr = expr[idx+1:]
	}
	return expr
}

// isNativeQuery reports whether a nativeQuery=true flag appears in the
// annotation text surrounding the literal at src[start:end] — the default
// for an annotated query with no such flag is false (plain JPQL).
func isNativeQuery(src []byte, start, end int) bool {
	lo := start - sqlAnnotationWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + sqlAnnotationWindow
	if hi > len(src) {
		hi = len(src)
	}
	return nativeQueryPattern.Match(src[lo:hi])
}

// methodLookupByLine returns a closure that finds the innermost Method/
// Function node whose span contains a given line, used to attach an
// EXECUTES_SQL edge from the statement back to its enclosing method.
func methodLookupByLine(nodes []ir.Node) func(line int) string {
	return func(line int) string {
		best := ""
		bestSpan := -1
		for _, n := range nodes {
			if n.Kind != ir.KindMethod && n.Kind != ir.KindFunction {
				continue
			}
			if n.StartLine <= line && line <= n.EndLine {
				spanLen := n.EndLine - n.StartLine
				if best == "" || spanLen < bestSpan {
					best = n.EntityID
					bestSpan = spanLen
				}
			}
		}
		return best
	}
}

func lineOf(src []byte, byteOffset int) int {
	if byteOffset > len(src) {
		byteOffset = len(src)
	}
	return 1 + strings.Count(string(src[:byteOffset]), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
