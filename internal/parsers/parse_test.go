package parsers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile_Go_ExtractsFunctionsAndContainment(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.go", `package main

// Greet says hello.
func Greet(name string) string {
	fmt.Println(name)
	return name
}
`)
	result := ParseFile("repo-1", path, time.Now())
	require.NoError(t, result.Err)
	assert.Equal(t, "go", result.Language)

	var fileNode, fnNode *ir.Node
	for i := range result.Nodes {
		switch result.Nodes[i].Kind {
		case ir.KindFile:
			fileNode = &result.Nodes[i]
		case ir.KindFunction:
			fnNode = &result.Nodes[i]
		}
	}
	require.NotNil(t, fileNode)
	require.NotNil(t, fnNode)
	assert.Equal(t, "Greet", fnNode.Name)

	foundContains := false
	for _, e := range result.Edges {
		if e.Type == ir.EdgeContains && e.SourceEntityID == fileNode.EntityID && e.TargetEntityID == fnNode.EntityID {
			foundContains = true
		}
	}
	assert.True(t, foundContains)
}

func TestParseFile_Python_ExtractsClassAndDocstring(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "mod.py", `class Widget:
    """Represents a widget."""
    def render(self):
        return True
`)
	result := ParseFile("repo-1", path, time.Now())
	require.NoError(t, result.Err)

	var classNode *ir.Node
	for i := range result.Nodes {
		if result.Nodes[i].Kind == ir.KindClass {
			classNode = &result.Nodes[i]
		}
	}
	require.NotNil(t, classNode)
	require.NotNil(t, classNode.Documentation)
	assert.Contains(t, classNode.Documentation.Summary, "Represents a widget")
}

func TestParseFile_JavaScript_ExtractsCallEdge(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "util.js", `function outer() {
  helper();
}
`)
	result := ParseFile("repo-1", path, time.Now())
	require.NoError(t, result.Err)

	found := false
	for _, e := range result.Edges {
		if e.Type == ir.EdgeCalls && e.Symbolic && e.SymbolicTarget == "helper" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseFile_UnsupportedExtension_ReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "README.md", "# hi")
	result := ParseFile("repo-1", path, time.Now())
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Nodes)
}

func TestParseFile_Java_ClassQualifiedNameUsesPackage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "UserService.java", `package com.acme;

public class UserService {
    public void save() {}
}
`)
	result := ParseFile("repo-1", path, time.Now())
	require.NoError(t, result.Err)

	var classNode *ir.Node
	for i := range result.Nodes {
		if result.Nodes[i].Kind == ir.KindClass {
			classNode = &result.Nodes[i]
		}
	}
	require.NotNil(t, classNode)
	assert.Equal(t, "UserService", classNode.Name)

	wantQualifiedName := ir.QualifiedPackageMember("com.acme", "UserService")
	wantEntityID := ir.Fingerprint("repo-1", ir.KindClass, wantQualifiedName)
	assert.Equal(t, wantEntityID, classNode.EntityID)
}

func TestExtractSQL_FindsSelectAndTable(t *testing.T) {
	src := []byte(`query := "SELECT * FROM users WHERE id = ?"`)
	nodes, edges := ExtractSQL("repo-1", "db.go", nil, src, time.Now())
	require.NotEmpty(t, nodes)

	var stmt *ir.Node
	for i := range nodes {
		if nodes[i].Kind == ir.KindSQLStatement {
			stmt = &nodes[i]
		}
	}
	require.NotNil(t, stmt)
	assert.Equal(t, "SELECT", stmt.Properties["statementType"])
	assert.Equal(t, "users", stmt.Properties["primaryTable"])
	assert.Equal(t, []string{"users"}, stmt.Properties["tables"])
	assert.Equal(t, []string{"*"}, stmt.Properties["columns"])
	assert.Equal(t, false, stmt.Properties["isNativeQuery"])
	assert.NotEmpty(t, edges)
}

func TestExtractSQL_AnnotatedQueryParsesColumnsAndTable(t *testing.T) {
	src := []byte(`@Query("SELECT u.id, u.name FROM users u WHERE u.active=true")
    List<User> findActiveUsers();`)
	nodes, edges := ExtractSQL("repo-1", "UserRepository.java", nil, src, time.Now())

	var stmt *ir.Node
	for i := range nodes {
		if nodes[i].Kind == ir.KindSQLStatement {
			stmt = &nodes[i]
		}
	}
	require.NotNil(t, stmt)
	assert.Equal(t, "SELECT", stmt.Properties["statementType"])
	assert.Equal(t, "users", stmt.Properties["primaryTable"])
	assert.Equal(t, []string{"users"}, stmt.Properties["tables"])
	assert.Equal(t, []string{"id", "name"}, stmt.Properties["columns"])
	assert.Equal(t, false, stmt.Properties["isNativeQuery"])
	assert.NotEmpty(t, edges)
}

func TestExtractSQL_NativeQueryFlagSetsIsNativeQuery(t *testing.T) {
	src := []byte(`@Query(value = "SELECT * FROM users WHERE email = ?1", nativeQuery = true)
    User findByEmail(String email);`)
	nodes, _ := ExtractSQL("repo-1", "UserRepository.java", nil, src, time.Now())

	var stmt *ir.Node
	for i := range nodes {
		if nodes[i].Kind == ir.KindSQLStatement {
			stmt = &nodes[i]
		}
	}
	require.NotNil(t, stmt)
	assert.Equal(t, true, stmt.Properties["isNativeQuery"])
}

func TestExtractSQL_InsertParsesColumnList(t *testing.T) {
	src := []byte(`stmt := "INSERT INTO users (id, name, email) VALUES (?, ?, ?)"`)
	nodes, _ := ExtractSQL("repo-1", "db.go", nil, src, time.Now())

	var stmt *ir.Node
	for i := range nodes {
		if nodes[i].Kind == ir.KindSQLStatement {
			stmt = &nodes[i]
		}
	}
	require.NotNil(t, stmt)
	assert.Equal(t, "INSERT", stmt.Properties["statementType"])
	assert.Equal(t, "users", stmt.Properties["primaryTable"])
	assert.Equal(t, []string{"id", "name", "email"}, stmt.Properties["columns"])
}

func TestDetectTests_ClassifiesTestFileAndCases(t *testing.T) {
	fnNodes := []ir.Node{
		{Kind: ir.KindFunction, Name: "TestAddition", StartLine: 3, EndLine: 5, EntityID: "fn1"},
	}
	nodes, edges := DetectTests("repo-1", "math_test.go", "go", fnNodes, []byte("package math"), time.Now())
	require.NotEmpty(t, nodes)

	var testFile, testCase *ir.Node
	for i := range nodes {
		switch nodes[i].Kind {
		case ir.KindTestFile:
			testFile = &nodes[i]
		case ir.KindTestCase:
			testCase = &nodes[i]
		}
	}
	require.NotNil(t, testFile)
	require.NotNil(t, testCase)
	assert.Equal(t, "TestAddition", testCase.Name)

	foundTests := false
	for _, e := range edges {
		if e.Type == ir.EdgeTests {
			foundTests = true
		}
	}
	assert.True(t, foundTests)
}

func TestDetectRoutes_ExpressStyle(t *testing.T) {
	src := []byte(`app.get('/users/:id', (req, res) => { res.send(req.params.id); });`)
	nodes, _ := DetectRoutes("repo-1", "server.js", "javascript", "file-1", nil, src, time.Now())
	require.Len(t, nodes, 1)
	assert.Equal(t, "/users/:id", nodes[0].Properties["path"])
	assert.Equal(t, true, nodes[0].Properties["isDynamic"])
}

func TestApplyStereotypes_ScoresBySuffix(t *testing.T) {
	nodes := []ir.Node{
		{Kind: ir.KindClass, Name: "UserController"},
		{Kind: ir.KindClass, Name: "OrderRepository"},
		{Kind: ir.KindClass, Name: "Widget"},
	}
	ApplyStereotypes(nodes)
	assert.Equal(t, "Controller", nodes[0].Properties["stereotype"])
	assert.Equal(t, "Repository", nodes[1].Properties["stereotype"])
	assert.Nil(t, nodes[2].Properties)
}

func TestParseAll_ParsesMultipleFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTestFile(t, dir, "a.go", "package a\nfunc A() {}\n")
	p2 := writeTestFile(t, dir, "b.go", "package a\nfunc B() {}\n")

	scratch, err := OpenScratchStore(filepath.Join(dir, "scratch.db"))
	require.NoError(t, err)
	defer scratch.Close()

	results := ParseAll(context.Background(), "repo-1", []string{p1, p2}, DefaultPoolConfig(), scratch)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Empty(t, r.Nodes, "ParseAll should drop Nodes once persisted to the scratch store")
	}

	seen := 0
	require.NoError(t, scratch.ForEach(func(pr ir.ParseResult) error {
		seen++
		assert.NotEmpty(t, pr.Nodes)
		return nil
	}))
	assert.Equal(t, 2, seen)
}
