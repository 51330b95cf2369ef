package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Username)
	assert.Equal(t, 1, cfg.Repository.Depth)
	assert.False(t, cfg.Repository.KeepClone)
	assert.Contains(t, cfg.Scanner.SupportedExtensions, ".go")
	assert.Contains(t, cfg.Scanner.IgnorePatterns, "**/node_modules/**")
	assert.Equal(t, 1000, cfg.Index.StorageBatchSize)
	assert.Equal(t, 20, cfg.Parser.Concurrency)
	assert.True(t, cfg.Analytics.Enabled)
	assert.Equal(t, 0.85, cfg.Analytics.PageRankDamping)
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Graph.URI, cfg.Graph.URI)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://example:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("GRAPHINDEX_FORCE_FULL_REINDEX", "true")
	t.Setenv("GRAPHINDEX_PARSER_CONCURRENCY", "8")

	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bolt://example:7687", cfg.Graph.URI)
	assert.Equal(t, "secret", cfg.Graph.Password)
	assert.True(t, cfg.Index.ForceFullReindex)
	assert.Equal(t, 8, cfg.Parser.Concurrency)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Repository.Name = "example/repo"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example/repo", loaded.Repository.Name)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "foo"), expandPath("~/foo"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}
