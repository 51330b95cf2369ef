package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Fingerprint computes entityId = fingerprint(kind, qualifiedName), the
// sole key used by every upsert. It is a readable composite string, not a
// bare hash, following the same human-readable-composite-key idiom as
// internal/graph/builder.go's buildCompositeNodeID — a deterministic
// "segment:segment:segment" join rather than an opaque digest, so that IDs
// remain useful in logs and ad-hoc Cypher during debugging.
func Fingerprint(repositoryID string, kind Kind, qualifiedName string) string {
	var b strings.Builder
	b.Grow(len(repositoryID) + len(kind) + len(qualifiedName) + 2)
	b.WriteString(repositoryID)
	b.WriteByte(':')
	b.WriteString(string(kind))
	b.WriteByte(':')
	b.WriteString(qualifiedName)
	return b.String()
}

// EdgeFingerprint computes entityId = fingerprint(type, source, target[,
// disambiguator]) for an edge.
func EdgeFingerprint(edgeType EdgeType, sourceEntityID, targetEntityID, disambiguator string) string {
	var b strings.Builder
	b.WriteString(string(edgeType))
	b.WriteByte(':')
	b.WriteString(sourceEntityID)
	b.WriteString("->")
	b.WriteString(targetEntityID)
	if disambiguator != "" {
		b.WriteByte(':')
		b.WriteString(disambiguator)
	}
	return b.String()
}

// NormalizePath converts a filesystem path to the normalized forward-slash
// absolute form used as the file kind's qualified name.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return filepath.ToSlash(abs)
}

// QualifiedFilePath builds the `filePath:name` qualified name used by
// file-scoped kinds (packageDecl/namespace, and classes/methods that fall
// back to file scope).
func QualifiedFilePath(filePath, name string) string {
	return fmt.Sprintf("%s:%s", filePath, name)
}

// QualifiedPackageMember builds the `package.Name` fully qualified name
// used for package/namespace-scoped kinds (class/interface/enum) per §3.2 —
// the file-path-based QualifiedFilePath is only the fallback for kinds that
// have no enclosing package/namespace.
func QualifiedPackageMember(packageName, name string) string {
	return fmt.Sprintf("%s.%s", packageName, name)
}

// QualifiedMember builds the `parentEntityId.memberName(arity)` qualified
// name for methods/fields. Arity (parameter count) is appended so that
// overloads differing in parameter count receive distinct entityIds — see
// DESIGN.md's "Overload disambiguation" resolution. Overloads with equal
// arity but differing parameter types still collide; this is a documented
// limitation, not a bug.
func QualifiedMember(parentEntityID, memberName string, arity int) string {
	if arity < 0 {
		return fmt.Sprintf("%s.%s", parentEntityID, memberName)
	}
	return fmt.Sprintf("%s.%s(%d)", parentEntityID, memberName, arity)
}

// QualifiedTopLevelFunction builds the `filePath:name:startLine` qualified
// name for top-level functions.
func QualifiedTopLevelFunction(filePath, name string, startLine int) string {
	return fmt.Sprintf("%s:%s:%d", filePath, name, startLine)
}

// QualifiedCallback builds the `callback_{callerName}_arg{index}` qualified
// name for an anonymous callback, disambiguated by its enclosing function
// and argument position.
func QualifiedCallback(callerName string, argIndex int) string {
	return fmt.Sprintf("callback_%s_arg%d", callerName, argIndex)
}

// QualifiedSQLStatement builds the `filePath:lineNumber:stmtType:primaryTable`
// qualified name for a SQL statement node.
func QualifiedSQLStatement(filePath string, lineNumber int, stmtType, primaryTable string) string {
	return fmt.Sprintf("%s:%d:%s:%s", filePath, lineNumber, stmtType, primaryTable)
}

// ContentHash computes the SHA-256 content-addressed digest of file bytes,
// grounded on the same algorithm the teacher uses for its repo-cache key
// (internal/ingestion/clone.go:generateRepoHash).
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
