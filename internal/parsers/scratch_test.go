package parsers

import (
	"path/filepath"
	"testing"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchStore_PutForEachRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenScratchStore(filepath.Join(dir, "scratch.db"))
	require.NoError(t, err)

	want := []ir.ParseResult{
		{FilePath: "a.go", Language: "go", Nodes: []ir.Node{{Kind: ir.KindFunction, Name: "A"}}},
		{FilePath: "b.go", Language: "go", Nodes: []ir.Node{{Kind: ir.KindFunction, Name: "B"}}},
	}
	for _, r := range want {
		require.NoError(t, store.Put(r))
	}

	got := make(map[string]ir.ParseResult)
	require.NoError(t, store.ForEach(func(r ir.ParseResult) error {
		got[r.FilePath] = r
		return nil
	}))

	require.Len(t, got, 2)
	assert.Equal(t, "A", got["a.go"].Nodes[0].Name)
	assert.Equal(t, "B", got["b.go"].Nodes[0].Name)

	require.NoError(t, store.Close())
	assert.NoFileExists(t, filepath.Join(dir, "scratch.db"))
}

func TestScratchStore_PutReplacesPriorEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenScratchStore(filepath.Join(dir, "scratch.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ir.ParseResult{FilePath: "a.go", Nodes: []ir.Node{{Name: "old"}}}))
	require.NoError(t, store.Put(ir.ParseResult{FilePath: "a.go", Nodes: []ir.Node{{Name: "new"}}}))

	count := 0
	require.NoError(t, store.ForEach(func(r ir.ParseResult) error {
		count++
		assert.Equal(t, "new", r.Nodes[0].Name)
		return nil
	}))
	assert.Equal(t, 1, count)
}
