package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	graphindexerrors "github.com/coderisk/graphindex/internal/errors"
	"github.com/coderisk/graphindex/internal/ir"
)

// CloneOptions mirrors the repository-input options of spec §6: branch,
// auth-token, depth, keepClone.
type CloneOptions struct {
	Branch    string
	AuthToken string
	Depth     int // 0 means full clone
	KeepClone bool
}

// ClonedRepo describes a repository checked out into a per-run temp
// directory, grounded on internal/ingestion/clone.go's CloneRepository but
// generalized from a persistent ~/.coderisk/repos/ cache into an ephemeral
// per-run directory, since the spec's cleanup policy (§6) is
// "delete iff temp-owned and keepClone=false" rather than reuse-by-hash.
type ClonedRepo struct {
	Path      string
	tempOwned bool
	keepClone bool
}

// Cleanup removes the clone iff it is temp-owned and KeepClone was false.
func (c *ClonedRepo) Cleanup() error {
	if !c.tempOwned || c.keepClone {
		return nil
	}
	return os.RemoveAll(c.Path)
}

// Clone clones url into a per-run temp directory; the clone is shallow
// (--depth) only when opts.Depth > 0, otherwise it is a full clone.
func Clone(ctx context.Context, url string, opts CloneOptions) (*ClonedRepo, error) {
	tempDir, err := os.MkdirTemp("", "graphindex-clone-*")
	if err != nil {
		return nil, graphindexerrors.VcsError(err, "failed to create clone temp dir")
	}

	args := []string{"clone", "--single-branch"}
	if opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", opts.Depth))
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	args = append(args, authenticatedURL(url, opts.AuthToken), tempDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tempDir)
		return nil, graphindexerrors.VcsError(err, fmt.Sprintf("git clone failed: %s", string(output)))
	}

	return &ClonedRepo{Path: tempDir, tempOwned: true, keepClone: opts.KeepClone}, nil
}

// authenticatedURL injects a token into an HTTPS clone URL (x-access-token
// convention), leaving SSH/git-protocol URLs untouched since they carry
// their own auth via the local SSH agent.
func authenticatedURL(url, token string) string {
	if token == "" || !strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.Replace(url, "https://", fmt.Sprintf("https://x-access-token:%s@", token), 1)
}

// ParseRepoURL extracts org/repo from a GitHub-style URL, supporting
// https://github.com/org/repo, git@github.com:org/repo.git, and the org/repo
// shorthand — grounded on internal/ingestion/clone.go:ParseRepoURL.
func ParseRepoURL(url string) (org, repo string, err error) {
	url = strings.TrimSpace(url)
	url = strings.TrimPrefix(url, "git@github.com:")
	url = strings.TrimPrefix(url, "https://github.com/")
	url = strings.TrimSuffix(url, ".git")

	parts := strings.Split(url, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format: %s (expected org/repo)", url)
	}
	return parts[0], parts[1], nil
}

// BuildGitHubURL converts org/repo to a full GitHub clone URL.
func BuildGitHubURL(org, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", org, repo)
}

// RepositoryIdentity derives a stable repositoryId from either a local path
// or a clone URL, used as the root Repository lifecycle entity's key and
// the namespace for every entityId fingerprint in that run.
func RepositoryIdentity(pathOrURL string) string {
	if org, repo, err := ParseRepoURL(pathOrURL); err == nil {
		return fmt.Sprintf("%s/%s", org, repo)
	}
	return ir.NormalizePath(pathOrURL)
}
