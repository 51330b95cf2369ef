// Package vcs implements the VCS driver (C3): detect repo, current commit
// SHA, and diffs against a prior commit. It shells out to the `git` binary
// via os/exec the same way internal/git/repo.go and diff.go do, generalized
// from implicit-cwd operations to an explicit repository directory and a
// context.Context threaded through every call so cancellation is observable
// at the VCS I/O boundary (spec §5).
package vcs

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	graphindexerrors "github.com/coderisk/graphindex/internal/errors"
)

// Diff is the structured result of comparing two commits.
type Diff struct {
	Added    []string
	Modified []string
	Deleted  []string
	Renamed  []RenamedFile
}

// RenamedFile is reported as a delete-old + add-new pair downstream (spec
// §4.2: "Rename with similarity ≥ N is reported as delete-old + add-new to
// simplify downstream logic"), but the raw old/new pair is preserved here
// so callers can choose either representation.
type RenamedFile struct {
	Old string
	New string
}

// AsDeleteAdd flattens renames into delete-old/add-new semantics, per the
// simplification spec §4.2 mandates for the incremental planner.
func (d Diff) AsDeleteAdd() (added, deleted []string) {
	added = append(append([]string{}, d.Added...))
	deleted = append(append([]string{}, d.Deleted...))
	for _, r := range d.Renamed {
		deleted = append(deleted, r.Old)
		added = append(added, r.New)
	}
	return added, deleted
}

// Driver wraps git operations against one repository directory.
type Driver struct {
	dir string
}

// New returns a Driver rooted at dir.
func New(dir string) *Driver {
	return &Driver{dir: dir}
}

// IsRepo reports whether dir is inside a git working tree.
func (d *Driver) IsRepo(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = d.dir
	return cmd.Run() == nil
}

// HeadSha returns the current HEAD commit SHA.
func (d *Driver) HeadSha(ctx context.Context) (string, error) {
	out, err := d.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", graphindexerrors.VcsError(err, "failed to resolve HEAD")
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the current branch name.
func (d *Driver) CurrentBranch(ctx context.Context) (string, error) {
	out, err := d.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", graphindexerrors.VcsError(err, "failed to resolve current branch")
	}
	return strings.TrimSpace(out), nil
}

// Diff computes {added, modified, deleted, renamed} between fromSha and
// toSha (pass "HEAD" for the working tree's current commit).
func (d *Driver) Diff(ctx context.Context, fromSha, toSha string) (Diff, error) {
	out, err := d.run(ctx, "diff", "--name-status", "--find-renames", fromSha, toSha)
	if err != nil {
		return Diff{}, graphindexerrors.VcsError(err, fmt.Sprintf("git diff %s..%s failed", fromSha, toSha))
	}
	return parseNameStatus(out), nil
}

// Untracked lists untracked files in the working tree.
func (d *Driver) Untracked(ctx context.Context) ([]string, error) {
	out, err := d.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, graphindexerrors.VcsError(err, "failed to list untracked files")
	}
	return splitNonEmptyLines(out), nil
}

// Uncommitted lists files with unstaged or staged-but-uncommitted changes
// (porcelain status), used to augment the git-diff path with working-tree
// edits per spec §4.3.
func (d *Driver) Uncommitted(ctx context.Context) (Diff, error) {
	out, err := d.run(ctx, "status", "--porcelain")
	if err != nil {
		return Diff{}, graphindexerrors.VcsError(err, "git status failed")
	}
	return parsePorcelainStatus(out), nil
}

func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.dir
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", graphindexerrors.CancelledError(ctx.Err())
		}
		return "", err
	}
	return string(out), nil
}

func parseNameStatus(output string) Diff {
	var diff Diff
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		switch {
		case status == "A":
			diff.Added = append(diff.Added, fields[1])
		case status == "M":
			diff.Modified = append(diff.Modified, fields[1])
		case status == "D":
			diff.Deleted = append(diff.Deleted, fields[1])
		case strings.HasPrefix(status, "R") && len(fields) >= 3:
			diff.Renamed = append(diff.Renamed, RenamedFile{Old: fields[1], New: fields[2]})
		}
	}
	return diff
}

func parsePorcelainStatus(output string) Diff {
	var diff Diff
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 3 {
			continue
		}
		statusCode := line[0:2]
		path := strings.TrimSpace(line[3:])

		switch {
		case statusCode[0] == 'A' || statusCode[1] == 'A' || statusCode == "??":
			diff.Added = append(diff.Added, path)
		case statusCode[0] == 'D' || statusCode[1] == 'D':
			diff.Deleted = append(diff.Deleted, path)
		case statusCode[0] == 'R':
			parts := strings.SplitN(path, " -> ", 2)
			if len(parts) == 2 {
				diff.Renamed = append(diff.Renamed, RenamedFile{Old: parts[0], New: parts[1]})
			}
		default:
			diff.Modified = append(diff.Modified, path)
		}
	}
	return diff
}

func splitNonEmptyLines(s string) []string {
	var out []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
