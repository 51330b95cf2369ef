package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func defaultTestConfig() Config {
	return Config{
		SupportedExtensions: []string{".go", ".py"},
		IgnorePatterns:      []string{"**/node_modules/**", "**/*.generated.go"},
	}
}

func TestScan_FindsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "util.py"), "def f(): pass\n")
	writeFile(t, filepath.Join(dir, "README.md"), "not source\n")

	s, err := New(dir, defaultTestConfig())
	require.NoError(t, err)

	records, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestScan_SkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "lib", "x.go"), "package lib\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	s, err := New(dir, defaultTestConfig())
	require.NoError(t, err)

	records, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "main.go", filepath.Base(records[0].Path))
}

func TestScan_SkipsGeneratedGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "api.generated.go"), "package api\n")
	writeFile(t, filepath.Join(dir, "api.go"), "package api\n")

	s, err := New(dir, defaultTestConfig())
	require.NoError(t, err)

	records, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "api.go", filepath.Base(records[0].Path))
}

func TestScan_ContentHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n")

	s, err := New(dir, defaultTestConfig())
	require.NoError(t, err)
	first, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	writeFile(t, path, "package main\n\nfunc main() {}\n")
	second, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.NotEqual(t, first[0].ContentHash, second[0].ContentHash)
}

func TestScan_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	s, err := New(dir, defaultTestConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Scan(ctx)
	assert.Error(t, err)
}
