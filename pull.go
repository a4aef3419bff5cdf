// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains the pull orchestration: fetch, merge analysis, and
// policy dispatch to fast-forward, merge, or rebase.
package gitx

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
)

// PullPolicy selects how fetched upstream changes are integrated into the
// current branch.
type PullPolicy int8

const (
	// PullAuto fast-forwards when possible and otherwise performs a normal
	// three-way merge.
	PullAuto PullPolicy = iota

	// PullFastForwardOnly integrates only when the branch can fast-forward;
	// divergent histories fail with ErrNotFastForward.
	PullFastForwardOnly

	// PullNoFastForward always records a merge commit, even when the branch
	// could fast-forward.
	PullNoFastForward

	// PullRebase replays the branch's private commits onto the fetched
	// upstream tip.
	PullRebase
)

// String returns a human-readable string representation of the PullPolicy.
func (p PullPolicy) String() string {
	switch p {
	case PullAuto:
		return "auto"
	case PullFastForwardOnly:
		return "fast-forward-only"
	case PullNoFastForward:
		return "no-fast-forward"
	case PullRebase:
		return "rebase"
	default:
		return "unknown"
	}
}

// Pull fetches from the resolved remote and integrates the upstream changes
// into the current branch according to the policy. The remote argument takes
// precedence over the branch's configured remote, which takes precedence
// over "origin". An already up-to-date branch is a no-op success under every
// policy.
//
// Preconditions are checked before any network work: HEAD must be on a
// branch, the branch must have an upstream configured, and the remote must
// exist. The fetch is the only step that suspends; context
// timeout/cancellation is honored there.
func (r *Repo) Pull(ctx context.Context, remote string, policy PullPolicy) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot pull in bare repository")
	}

	headRef, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return WrapError(err, "pull: failed to read HEAD")
	}
	if !headRef.Target().IsBranch() {
		return WrapError(ErrInvalidRef, "pull: HEAD is detached")
	}
	branchName := headRef.Target().Short()

	branchCfg, err := r.repo.Branch(branchName)
	if err != nil || branchCfg.Merge == "" {
		return WrapErrorf(ErrUpstreamMissing, "branch %q", branchName)
	}

	if remote == "" {
		remote = branchCfg.Remote
	}
	if remote == "" {
		remote = DefaultRemoteName
	}
	if _, err := r.repo.Remote(remote); err != nil {
		return WrapErrorf(ErrRemoteMissing, "remote %q", remote)
	}

	if err := r.Fetch(ctx, remote, false, r.options.ShallowDepth); err != nil &&
		!errors.Is(err, ErrAlreadyUpToDate) {
		return WrapError(err, "pull: fetch failed")
	}

	upstream := branchCfg.Merge.Short()
	trackingName := remote + "/" + upstream
	trackingRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, upstream), true)
	if err != nil {
		return WrapErrorf(ErrUpstreamMissing, "remote-tracking branch %q not found after fetch", trackingName)
	}
	target := trackingRef.Hash()

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch: any upstream tip is a trivial fast-forward.
			return r.fastForwardUnborn(target)
		}
		return WrapError(err, "pull: failed to resolve branch tip")
	}

	analysis, err := r.analyzeCommits(head.Hash(), target)
	if err != nil {
		return WrapError(err, "pull")
	}

	if analysis.Has(CapUpToDate) {
		return nil
	}

	candidate := mergeCandidate{name: trackingName, hash: target}

	switch policy {
	case PullAuto:
		switch {
		case analysis.Has(CapFastForward):
			return r.fastForward(target)
		case analysis.Has(CapNormal):
			return r.mergeCommits(ctx, analysis, candidate)
		default:
			return WrapErrorf(ErrUnrelatedHistories, "pull: cannot merge %q", trackingName)
		}

	case PullFastForwardOnly:
		if analysis.Has(CapFastForward) {
			return r.fastForward(target)
		}
		return WrapErrorf(ErrNotFastForward, "pull: %q requires a merge", trackingName)

	case PullNoFastForward:
		if !analysis.Has(CapFastForward) && !analysis.Has(CapNormal) {
			return WrapErrorf(ErrUnrelatedHistories, "pull: cannot merge %q", trackingName)
		}
		forced, err := r.forcedMergeAnalysis(analysis)
		if err != nil {
			return WrapError(err, "pull")
		}
		return r.mergeCommits(ctx, forced, candidate)

	case PullRebase:
		_, err := r.Rebase(ctx, trackingName)
		return WrapError(err, "pull")

	default:
		return WrapError(ErrInvalidRef, "unknown pull policy")
	}
}

// forcedMergeAnalysis adapts a fast-forwardable analysis for a forced merge
// commit: the current tip is itself the merge base.
func (r *Repo) forcedMergeAnalysis(analysis *MergeAnalysis) (*MergeAnalysis, error) {
	if analysis.Has(CapNormal) {
		return analysis, nil
	}

	base, err := r.repo.CommitObject(analysis.Ours)
	if err != nil {
		return nil, WrapError(err, "failed to read current tip commit")
	}

	forced := newAnalysis(analysis.Ours, analysis.Theirs, CapNormal)
	forced.base = base
	return forced, nil
}
