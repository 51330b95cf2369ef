package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

var testPathPattern = regexp.MustCompile(`(?i)(^|/)(test|tests|__tests__|spec)(/|_)|(_test|\.test|\.spec|_spec)\.[a-z]+$`)

var testFuncNamePattern = regexp.MustCompile(`(?i)^(test_?|Test)[A-Za-z0-9_]*$|^it_should|^should_`)

// DetectTests is the test detector (spec §4.6): classifies a file as a test
// file via path conventions, then refines by scanning its already-extracted
// Function/Method nodes for test-case naming, and infers the tested source
// file by stripping the test-specific path segment/suffix — grounded on
// the path-pattern-then-content-sniff idiom used throughout the teacher's
// ingestion walker for file classification.
func DetectTests(repositoryID, filePath, language string, fileNodes []ir.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	if !testPathPattern.MatchString(filePath) {
		return nil, nil
	}

	var nodes []ir.Node
	var edges []ir.Edge

	fileID := ir.Fingerprint(repositoryID, ir.KindFile, ir.NormalizePath(filePath))
	testFileQN := ir.NormalizePath(filePath)
	testFile := ir.Node{
		EntityID:     ir.Fingerprint(repositoryID, ir.KindTestFile, testFileQN),
		RepositoryID: repositoryID,
		Kind:         ir.KindTestFile,
		Name:         baseName(filePath),
		FilePath:     filePath,
		Language:     language,
		CreatedAt:    now,
	}
	nodes = append(nodes, testFile)
	edges = append(edges, ir.Edge{
		EntityID:       ir.EdgeFingerprint(ir.EdgeContains, fileID, testFile.EntityID, "test_file"),
		RepositoryID:   repositoryID,
		Type:           ir.EdgeContains,
		SourceEntityID: fileID,
		TargetEntityID: testFile.EntityID,
		CreatedAt:      now,
	})

	for _, n := range fileNodes {
		if n.Kind != ir.KindFunction && n.Kind != ir.KindMethod {
			continue
		}
		if !testFuncNamePattern.MatchString(n.Name) {
			continue
		}
		qn := ir.QualifiedTopLevelFunction(filePath, n.Name, n.StartLine)
		tc := ir.Node{
			EntityID:     ir.Fingerprint(repositoryID, ir.KindTestCase, qn),
			RepositoryID: repositoryID,
			Kind:         ir.KindTestCase,
			Name:         n.Name,
			FilePath:     filePath,
			Language:     language,
			StartLine:    n.StartLine,
			EndLine:      n.EndLine,
			CreatedAt:    now,
			Properties: map[string]interface{}{
				"suite": suiteNameFor(filePath),
				"skip":  strings.Contains(strings.ToLower(n.Name), "skip"),
				"focus": strings.Contains(strings.ToLower(n.Name), "only") || strings.Contains(strings.ToLower(n.Name), "focus"),
			},
		}
		nodes = append(nodes, tc)
		edges = append(edges, ir.Edge{
			EntityID:       ir.EdgeFingerprint(ir.EdgeContains, testFile.EntityID, tc.EntityID, ""),
			RepositoryID:   repositoryID,
			Type:           ir.EdgeContains,
			SourceEntityID: testFile.EntityID,
			TargetEntityID: tc.EntityID,
			CreatedAt:      now,
		})

		if sourcePath := inferTestedSourcePath(filePath); sourcePath != "" {
			sourceFileID := ir.Fingerprint(repositoryID, ir.KindFile, ir.NormalizePath(sourcePath))
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeTests, tc.EntityID, sourceFileID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeTests,
				SourceEntityID: tc.EntityID,
				TargetEntityID: sourceFileID,
				CreatedAt:      now,
			})
		}
	}

	return nodes, edges
}

func suiteNameFor(filePath string) string {
	name := baseName(filePath)
	for _, suffix := range []string{"_test.go", ".test.ts", ".test.js", ".spec.ts", ".spec.js", "_test.py", "test_"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimPrefix(name, "test_")
}

// inferTestedSourcePath strips the test-specific suffix/prefix a file path
// carries to guess the production file it exercises (e.g.
// "foo_test.go" -> "foo.go", "test_foo.py" -> "foo.py"). Returns "" when no
// convention matches, in which case no TESTS edge is inferred.
func inferTestedSourcePath(filePath string) string {
	switch {
	case strings.HasSuffix(filePath, "_test.go"):
		return strings.TrimSuffix(filePath, "_test.go") + ".go"
	case strings.HasSuffix(filePath, ".test.ts"):
		return strings.TrimSuffix(filePath, ".test.ts") + ".ts"
	case strings.HasSuffix(filePath, ".test.tsx"):
		return strings.TrimSuffix(filePath, ".test.tsx") + ".tsx"
	case strings.HasSuffix(filePath, ".test.js"):
		return strings.TrimSuffix(filePath, ".test.js") + ".js"
	case strings.HasSuffix(filePath, ".spec.ts"):
		return strings.TrimSuffix(filePath, ".spec.ts") + ".ts"
	case strings.Contains(filePath, "/test_"):
		return strings.Replace(filePath, "/test_", "/", 1)
	case strings.HasPrefix(baseName(filePath), "test_"):
		dir := strings.TrimSuffix(filePath, baseName(filePath))
		return dir + strings.TrimPrefix(baseName(filePath), "test_")
	}
	return ""
}
