package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		require.NoError(t, cmd.Run())
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))
	run("add", "a.go")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestDriver_IsRepo(t *testing.T) {
	dir := initTestRepo(t)
	d := New(dir)
	assert.True(t, d.IsRepo(context.Background()))

	nonRepo := t.TempDir()
	assert.False(t, New(nonRepo).IsRepo(context.Background()))
}

func TestDriver_HeadSha(t *testing.T) {
	dir := initTestRepo(t)
	d := New(dir)
	sha, err := d.HeadSha(context.Background())
	require.NoError(t, err)
	assert.Len(t, sha, 40)
}

func TestDriver_Diff_DetectsModification(t *testing.T) {
	dir := initTestRepo(t)
	d := New(dir)

	first, err := d.HeadSha(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc F() {}\n"), 0644))
	cmd := exec.Command("git", "commit", "-aqm", "modify")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	second, err := d.HeadSha(context.Background())
	require.NoError(t, err)

	diff, err := d.Diff(context.Background(), first, second)
	require.NoError(t, err)
	assert.Contains(t, diff.Modified, "a.go")
}

func TestDriver_Untracked(t *testing.T) {
	dir := initTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package a\n"), 0644))

	d := New(dir)
	untracked, err := d.Untracked(context.Background())
	require.NoError(t, err)
	assert.Contains(t, untracked, "new.go")
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url      string
		wantOrg  string
		wantRepo string
	}{
		{"https://github.com/acme/widgets", "acme", "widgets"},
		{"https://github.com/acme/widgets.git", "acme", "widgets"},
		{"git@github.com:acme/widgets.git", "acme", "widgets"},
		{"acme/widgets", "acme", "widgets"},
	}
	for _, tt := range tests {
		org, repo, err := ParseRepoURL(tt.url)
		require.NoError(t, err)
		assert.Equal(t, tt.wantOrg, org)
		assert.Equal(t, tt.wantRepo, repo)
	}
}

func TestDiff_AsDeleteAdd(t *testing.T) {
	d := Diff{
		Added:    []string{"x.go"},
		Renamed:  []RenamedFile{{Old: "old.go", New: "new.go"}},
	}
	added, deleted := d.AsDeleteAdd()
	assert.ElementsMatch(t, []string{"x.go", "new.go"}, added)
	assert.ElementsMatch(t, []string{"old.go"}, deleted)
}
