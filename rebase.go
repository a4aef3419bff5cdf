// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains sequential rebase replay with all-or-nothing abort
// semantics.
package gitx

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RebaseStepStatus tracks the fate of one commit in a rebase plan.
type RebaseStepStatus int8

const (
	// StepPending means the commit has not been replayed yet.
	StepPending RebaseStepStatus = iota

	// StepApplied means the commit was replayed onto the evolving tip.
	StepApplied

	// StepSkipped means the commit's effect was already present upstream;
	// no new commit was created for it.
	StepSkipped

	// StepConflicted means replaying the commit produced conflicts and the
	// rebase was aborted.
	StepConflicted
)

// String returns a human-readable string representation of the RebaseStepStatus.
func (s RebaseStepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepApplied:
		return "applied"
	case StepSkipped:
		return "skipped"
	case StepConflicted:
		return "conflicted"
	default:
		return "unknown"
	}
}

// RebaseStep is one commit scheduled for replay.
type RebaseStep struct {
	// Commit is the original commit to replay.
	Commit plumbing.Hash

	// Status records the replay outcome.
	Status RebaseStepStatus
}

// RebasePlan is the ordered sequence of the branch's private commits to
// replay onto the new base, oldest first. The order matches the commits'
// original relative order on the branch.
type RebasePlan struct {
	Steps []RebaseStep
}

// rebaseState drives the replay loop. Modeling the transitions explicitly
// keeps the rollback path (restore the pre-rebase tip) in exactly one place.
type rebaseState int8

const (
	stateReplaying rebaseState = iota
	stateConflicted
	stateFinished
	stateAborted
)

// Rebase replays the current branch's private commits onto the commit the
// given revision resolves to. Replayed commits keep their original author
// and message; the committer comes from the identity provider. Commits whose
// effect is already present upstream are skipped.
//
// The operation is atomic from the caller's perspective: on conflict (or any
// mechanical failure) the branch, index, and worktree are restored to the
// pre-rebase tip and ErrRebaseConflict (or the underlying error) is
// returned. The returned plan reflects per-commit outcomes either way.
func (r *Repo) Rebase(ctx context.Context, onto string) (*RebasePlan, error) {
	if r.worktree == nil {
		return nil, WrapError(ErrInvalidRef, "cannot rebase in bare repository")
	}

	candidate, err := r.resolveMergeCandidate(onto)
	if err != nil {
		return nil, err
	}

	head, err := r.repo.Head()
	if err != nil {
		return nil, WrapError(err, "failed to get HEAD reference")
	}
	origTip := head.Hash()

	analysis, err := r.analyzeCommits(origTip, candidate.hash)
	if err != nil {
		return nil, err
	}

	switch {
	case analysis.Has(CapUpToDate):
		return &RebasePlan{}, nil
	case analysis.Has(CapFastForward):
		// No private commits; the rebased branch is the base itself.
		return &RebasePlan{}, r.fastForward(candidate.hash)
	case analysis.Has(CapUnrelated):
		return nil, WrapErrorf(ErrUnrelatedHistories, "refusing to rebase onto %q", onto)
	}

	status, err := r.worktree.Status()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree status")
	}
	if !status.IsClean() {
		return nil, WrapError(ErrLocalChanges, "rebase requires a clean working tree")
	}

	identity, err := r.resolveIdentity(ctx)
	if err != nil {
		return nil, err
	}

	ontoCommit, err := r.repo.CommitObject(candidate.hash)
	if err != nil {
		return nil, WrapError(err, "failed to read base commit")
	}

	plan, err := r.planRebase(origTip, ontoCommit, analysis.Base())
	if err != nil {
		return nil, err
	}

	// Park the branch at the new base; replay advances it commit by commit.
	if err := r.worktree.Reset(&git.ResetOptions{Commit: candidate.hash, Mode: git.HardReset}); err != nil {
		return nil, WrapError(err, "failed to move branch to new base")
	}

	state := stateReplaying
	var failure error

	for i := 0; state == stateReplaying; i++ {
		if i >= len(plan.Steps) {
			state = stateFinished
			break
		}

		step := &plan.Steps[i]
		stepStatus, replayErr := r.replayCommit(step.Commit, identity)
		step.Status = stepStatus

		switch {
		case stepStatus == StepConflicted:
			state = stateConflicted
		case replayErr != nil:
			state = stateAborted
			failure = replayErr
		}
	}

	switch state {
	case stateFinished:
		return plan, nil
	case stateConflicted:
		return plan, errors.Join(WrapError(ErrRebaseConflict, "replay stopped"), r.resetHard(origTip))
	default:
		return plan, errors.Join(failure, r.resetHard(origTip))
	}
}

// planRebase collects the commits reachable from tip but not from the new
// base, walking first parents, oldest first. The walk never descends past
// the merge base, so a merge commit inside the private history cannot drag
// shared ancestry into the plan.
func (r *Repo) planRebase(tip plumbing.Hash, onto, base *object.Commit) (*RebasePlan, error) {
	var private []plumbing.Hash

	current, err := r.repo.CommitObject(tip)
	if err != nil {
		return nil, WrapError(err, "failed to read tip commit")
	}

	for {
		if base != nil && current.Hash == base.Hash {
			break
		}

		reachable, err := current.IsAncestor(onto)
		if err != nil {
			return nil, WrapError(err, "ancestry walk failed")
		}
		if reachable {
			break
		}

		private = append(private, current.Hash)

		if current.NumParents() == 0 {
			break
		}
		current, err = current.Parent(0)
		if err != nil {
			return nil, WrapError(err, "failed to read parent commit")
		}
	}

	plan := &RebasePlan{Steps: make([]RebaseStep, len(private))}
	for i, hash := range private {
		// Reverse: the walk saw newest first, the plan replays oldest first.
		plan.Steps[len(private)-1-i] = RebaseStep{Commit: hash, Status: StepPending}
	}
	return plan, nil
}

// replayCommit applies one original commit's changes onto the evolving tip
// (the current HEAD) and commits the result. The returned status is Skipped
// when the commit's effect is already present, Conflicted when competing
// changes are found (the caller rolls back), or Applied.
func (r *Repo) replayCommit(hash plumbing.Hash, identity Signature) (RebaseStepStatus, error) {
	original, err := r.repo.CommitObject(hash)
	if err != nil {
		return StepPending, WrapError(err, "failed to read commit to replay")
	}

	var parentTree *object.Tree
	if original.NumParents() > 0 {
		parent, err := original.Parent(0)
		if err != nil {
			return StepPending, WrapError(err, "failed to read parent commit")
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return StepPending, WrapError(err, "failed to read parent tree")
		}
	}

	commitTree, err := original.Tree()
	if err != nil {
		return StepPending, WrapError(err, "failed to read commit tree")
	}

	head, err := r.repo.Head()
	if err != nil {
		return StepPending, WrapError(err, "failed to get HEAD reference")
	}
	tipTree, err := r.treeOf(head.Hash())
	if err != nil {
		return StepPending, err
	}

	sa, err := threeWay(parentTree, tipTree, commitTree)
	if err != nil {
		return StepPending, err
	}

	if sa.hasConflicts() {
		return StepConflicted, nil
	}

	if sa.empty() {
		return StepSkipped, nil
	}

	if err := r.applyStaged(sa); err != nil {
		return StepPending, err
	}

	author := original.Author
	committer := identity.toObject()

	_, err = r.worktree.Commit(original.Message, &git.CommitOptions{
		Author:    &author,
		Committer: &committer,
	})
	if err != nil {
		return StepPending, WrapError(err, "failed to commit replayed changes")
	}

	return StepApplied, nil
}
