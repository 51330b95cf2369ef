package planner

import (
	"context"
	"testing"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(pairs ...string) []ir.FileRecord {
	var out []ir.FileRecord
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, ir.FileRecord{Path: pairs[i], ContentHash: pairs[i+1]})
	}
	return out
}

func TestPlan_NoPriorState_IsFullReindex(t *testing.T) {
	p, err := Plan(context.Background(), Inputs{
		ScannedFiles:   files("a.go", "h1", "b.go", "h2"),
		PriorState:     nil,
		CurrentVersion: 1,
	})
	require.NoError(t, err)
	assert.True(t, p.IsFullReindex)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, p.ChangedFiles)
	assert.Equal(t, "No existing index state", p.Reason)
}

func TestPlan_ForceFull_OverridesEverything(t *testing.T) {
	p, err := Plan(context.Background(), Inputs{
		ScannedFiles: files("a.go", "h1"),
		PriorState: &IndexState{
			FileHashes:   map[string]string{"a.go": "h1"},
			IndexVersion: 1,
		},
		ForceFull:      true,
		CurrentVersion: 1,
	})
	require.NoError(t, err)
	assert.True(t, p.IsFullReindex)
	assert.Equal(t, []string{"a.go"}, p.ChangedFiles)
}

func TestPlan_VersionMismatch_MarksPriorFilesDeleted(t *testing.T) {
	p, err := Plan(context.Background(), Inputs{
		ScannedFiles: files("a.go", "h1"),
		PriorState: &IndexState{
			FileHashes:   map[string]string{"a.go": "oldhash", "removed.go": "h9"},
			IndexVersion: 1,
		},
		CurrentVersion: 2,
	})
	require.NoError(t, err)
	assert.True(t, p.IsFullReindex)
	assert.ElementsMatch(t, []string{"a.go", "removed.go"}, p.DeletedFiles)
	assert.Contains(t, p.Reason, "Version upgrade from 1 to 2")
}

func TestPlan_HashComparison_ClassifiesAddedModifiedUnchangedDeleted(t *testing.T) {
	p, err := Plan(context.Background(), Inputs{
		ScannedFiles: files("a.go", "h1", "b.go", "newhash", "c.go", "h3"),
		PriorState: &IndexState{
			FileHashes:   map[string]string{"a.go": "h1", "b.go": "oldhash", "gone.go": "h9"},
			IndexVersion: 1,
		},
		CurrentVersion: 1,
	})
	require.NoError(t, err)
	assert.False(t, p.IsFullReindex)
	assert.ElementsMatch(t, []string{"b.go", "c.go"}, p.ChangedFiles)
	assert.ElementsMatch(t, []string{"a.go"}, p.UnchangedFiles)
	assert.ElementsMatch(t, []string{"gone.go"}, p.DeletedFiles)
}

func TestPlan_NoVCS_FallsBackToHashComparison(t *testing.T) {
	p, err := Plan(context.Background(), Inputs{
		ScannedFiles: files("a.go", "h1"),
		PriorState: &IndexState{
			LastCommitSha: "deadbeef",
			FileHashes:    map[string]string{"a.go": "h1"},
			IndexVersion:  1,
		},
		CurrentVersion: 1,
		VCS:            nil,
	})
	require.NoError(t, err)
	assert.Empty(t, p.ChangedFiles)
	assert.Equal(t, []string{"a.go"}, p.UnchangedFiles)
}
