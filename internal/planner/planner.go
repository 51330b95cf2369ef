// Package planner implements the incremental planner (C4): given the
// current scan and any prior IndexState, decides which files need
// (re)parsing, which are unchanged, and which were deleted since the last
// successful run. Grounded on internal/ingestion/orchestrator.go's
// IncrementalIngest entrypoint, generalized from a time-window cutoff into
// the five-branch decision tree: force-full, no-prior-state,
// version-mismatch, git-diff, hash-comparison.
package planner

import (
	"context"
	"fmt"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/coderisk/graphindex/internal/vcs"
)

// IndexState is the subset of the persisted lifecycle entity the planner
// reads; the full record (including timestamps) lives in internal/state.
type IndexState struct {
	LastCommitSha string
	FileHashes    map[string]string
	IndexVersion  int
}

// Plan is the output of the decision tree (spec §4.3).
type Plan struct {
	ChangedFiles   []string
	DeletedFiles   []string
	UnchangedFiles []string
	IsFullReindex  bool
	Reason         string
}

// Inputs bundles everything the decision tree consults.
type Inputs struct {
	RepoDir        string
	ScannedFiles   []ir.FileRecord
	PriorState     *IndexState
	ForceFull      bool
	CurrentVersion int
	VCS            *vcs.Driver // nil when the repository is not under VCS
}

// Plan runs the decision tree and returns the file classification.
func Plan(ctx context.Context, in Inputs) (*Plan, error) {
	current := make(map[string]string, len(in.ScannedFiles))
	for _, f := range in.ScannedFiles {
		current[f.Path] = f.ContentHash
	}

	switch {
	case in.ForceFull:
		return fullReindex(current, "forceFullReindex set"), nil

	case in.PriorState == nil:
		return fullReindex(current, "No existing index state"), nil

	case in.PriorState.IndexVersion != in.CurrentVersion:
		reason := fmt.Sprintf("Version upgrade from %d to %d", in.PriorState.IndexVersion, in.CurrentVersion)
		p := fullReindex(current, reason)
		// every previously indexed path becomes deleted for cleanup purposes,
		// not just the ones absent from the current scan — the whole prior
		// state is invalidated by a version bump.
		p.DeletedFiles = keysOf(in.PriorState.FileHashes)
		return p, nil

	case in.VCS != nil && in.PriorState.LastCommitSha != "" && in.VCS.IsRepo(ctx):
		head, err := in.VCS.HeadSha(ctx)
		if err == nil && head != in.PriorState.LastCommitSha {
			return gitDiffPlan(ctx, in, current, head)
		}
		// Same SHA: still reconcile against uncommitted/untracked changes, else
		// fall through to hash comparison which is equivalent and simpler.
		return hashComparisonPlan(in, current), nil

	default:
		return hashComparisonPlan(in, current), nil
	}
}

func fullReindex(current map[string]string, reason string) *Plan {
	p := &Plan{IsFullReindex: true, Reason: reason}
	for path := range current {
		p.ChangedFiles = append(p.ChangedFiles, path)
	}
	return p
}

func gitDiffPlan(ctx context.Context, in Inputs, current map[string]string, head string) (*Plan, error) {
	diff, err := in.VCS.Diff(ctx, in.PriorState.LastCommitSha, head)
	if err != nil {
		return nil, err
	}
	added, deleted := diff.AsDeleteAdd()

	changedSet := make(map[string]bool)
	for _, p := range added {
		changedSet[p] = true
	}
	for _, p := range diff.Modified {
		changedSet[p] = true
	}
	deletedSet := make(map[string]bool)
	for _, p := range deleted {
		deletedSet[p] = true
	}

	uncommitted, err := in.VCS.Uncommitted(ctx)
	if err == nil {
		ua, ud := uncommitted.AsDeleteAdd()
		for _, p := range ua {
			changedSet[p] = true
		}
		for _, p := range uncommitted.Modified {
			changedSet[p] = true
		}
		for _, p := range ud {
			deletedSet[p] = true
		}
	}

	plan := &Plan{Reason: "git diff against prior commit"}
	for path := range changedSet {
		hash, ok := current[path]
		priorHash, hadPrior := in.PriorState.FileHashes[path]
		if ok && hadPrior && hash == priorHash {
			// Hash-over-VCS: whitespace-only edits or reverts collapse to
			// unchanged even though git reports the path as touched.
			plan.UnchangedFiles = append(plan.UnchangedFiles, path)
			continue
		}
		plan.ChangedFiles = append(plan.ChangedFiles, path)
	}
	for path := range deletedSet {
		if _, stillPresent := current[path]; !stillPresent {
			plan.DeletedFiles = append(plan.DeletedFiles, path)
		}
	}
	for path := range current {
		if !changedSet[path] {
			if _, hadPrior := in.PriorState.FileHashes[path]; hadPrior {
				plan.UnchangedFiles = append(plan.UnchangedFiles, path)
			} else {
				plan.ChangedFiles = append(plan.ChangedFiles, path)
			}
		}
	}
	return plan, nil
}

func hashComparisonPlan(in Inputs, current map[string]string) *Plan {
	plan := &Plan{Reason: "hash comparison"}
	for path, hash := range current {
		priorHash, hadPrior := in.PriorState.FileHashes[path]
		switch {
		case !hadPrior:
			plan.ChangedFiles = append(plan.ChangedFiles, path)
		case priorHash != hash:
			plan.ChangedFiles = append(plan.ChangedFiles, path)
		default:
			plan.UnchangedFiles = append(plan.UnchangedFiles, path)
		}
	}
	for path := range in.PriorState.FileHashes {
		if _, stillPresent := current[path]; !stillPresent {
			plan.DeletedFiles = append(plan.DeletedFiles, path)
		}
	}
	return plan
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
