// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains merge analysis: classifying the relationship between two
// commit histories before any merge, rebase, or pull strategy is executed.
package gitx

import (
	"context"
	"errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// MergeCapability classifies what a merge between two commits can do.
type MergeCapability int8

const (
	// CapUpToDate means the candidate is already reachable from the current
	// tip; merging is a no-op.
	CapUpToDate MergeCapability = iota

	// CapFastForward means the current tip is an ancestor of the candidate;
	// the branch can be repointed without creating a commit.
	CapFastForward

	// CapNormal means the histories diverged but share a common ancestor;
	// a three-way merge is required.
	CapNormal

	// CapUnborn means the current branch has no commits yet; any candidate
	// is a trivial fast-forward.
	CapUnborn

	// CapUnrelated means the histories share no common ancestor.
	CapUnrelated
)

// String returns a human-readable string representation of the MergeCapability.
func (c MergeCapability) String() string {
	switch c {
	case CapUpToDate:
		return "up-to-date"
	case CapFastForward:
		return "fast-forward"
	case CapNormal:
		return "normal"
	case CapUnborn:
		return "unborn"
	case CapUnrelated:
		return "unrelated"
	default:
		return "unknown"
	}
}

// MergeAnalysis is the result of classifying two commit histories. It carries
// the capability set plus the endpoints and merge base so executors do not
// have to walk the graph again. It is a pure value with no side effects.
type MergeAnalysis struct {
	caps map[MergeCapability]struct{}

	// Ours is the current branch tip; zero when the branch is unborn.
	Ours plumbing.Hash

	// Theirs is the merge candidate commit.
	Theirs plumbing.Hash

	base *object.Commit
}

// Has reports whether the analysis found the given capability.
func (a *MergeAnalysis) Has(c MergeCapability) bool {
	_, ok := a.caps[c]
	return ok
}

// Base returns the merge base commit, or nil when no common ancestor exists
// (unborn or unrelated histories).
func (a *MergeAnalysis) Base() *object.Commit {
	return a.base
}

func newAnalysis(ours, theirs plumbing.Hash, caps ...MergeCapability) *MergeAnalysis {
	a := &MergeAnalysis{
		caps:   make(map[MergeCapability]struct{}, len(caps)),
		Ours:   ours,
		Theirs: theirs,
	}
	for _, c := range caps {
		a.caps[c] = struct{}{}
	}
	return a
}

// AnalyzeMerge classifies the relationship between the current branch tip and
// the commit the given revision resolves to. The result determines whether a
// merge would be a no-op, a fast-forward, a normal three-way merge, or is not
// possible without joining unrelated histories.
//
// The analysis only reads the object graph; it never mutates repository state.
func (r *Repo) AnalyzeMerge(ctx context.Context, rev string) (*MergeAnalysis, error) {
	candidate, err := r.resolveMergeCandidate(rev)
	if err != nil {
		return nil, err
	}

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commits on the current branch yet.
			return newAnalysis(plumbing.ZeroHash, candidate.hash, CapUnborn, CapFastForward), nil
		}
		return nil, WrapError(err, "failed to get HEAD reference")
	}

	return r.analyzeCommits(head.Hash(), candidate.hash)
}

// analyzeCommits classifies the relationship between two resolved commits.
func (r *Repo) analyzeCommits(ours, theirs plumbing.Hash) (*MergeAnalysis, error) {
	if ours == theirs {
		return newAnalysis(ours, theirs, CapUpToDate), nil
	}

	oursCommit, err := r.repo.CommitObject(ours)
	if err != nil {
		return nil, WrapError(err, "failed to read current tip commit")
	}

	theirsCommit, err := r.repo.CommitObject(theirs)
	if err != nil {
		return nil, WrapError(err, "failed to read candidate commit")
	}

	behind, err := theirsCommit.IsAncestor(oursCommit)
	if err != nil {
		return nil, WrapError(err, "ancestry walk failed")
	}
	if behind {
		return newAnalysis(ours, theirs, CapUpToDate), nil
	}

	ahead, err := oursCommit.IsAncestor(theirsCommit)
	if err != nil {
		return nil, WrapError(err, "ancestry walk failed")
	}
	if ahead {
		return newAnalysis(ours, theirs, CapFastForward), nil
	}

	bases, err := oursCommit.MergeBase(theirsCommit)
	if err != nil {
		return nil, WrapError(err, "failed to compute merge base")
	}
	if len(bases) == 0 {
		return newAnalysis(ours, theirs, CapUnrelated), nil
	}

	a := newAnalysis(ours, theirs, CapNormal)
	a.base = bases[0]
	return a, nil
}

// mergeCandidate is a resolved reference presented as a merge input. It lives
// for the duration of a single operation.
type mergeCandidate struct {
	// name is the revision as given by the caller (e.g. "feature", "origin/main").
	name string

	hash plumbing.Hash
}

// displayName returns the candidate name with a leading remote prefix
// stripped, e.g. "origin/main" becomes "main". It is used when synthesizing
// merge commit messages.
func (c mergeCandidate) displayName(remotes []string) string {
	for _, remote := range remotes {
		if rest, ok := strings.CutPrefix(c.name, remote+"/"); ok && rest != "" {
			return rest
		}
	}
	return c.name
}

// resolveMergeCandidate resolves a revision to a commit intended as merge input.
func (r *Repo) resolveMergeCandidate(rev string) (*mergeCandidate, error) {
	if rev == "" {
		return nil, WrapError(ErrInvalidRef, "revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve merge candidate %q", rev)
	}

	return &mergeCandidate{name: rev, hash: *hash}, nil
}

// remoteNames lists the configured remote names, used to strip remote
// prefixes from candidate display names.
func (r *Repo) remoteNames() []string {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return []string{DefaultRemoteName}
	}

	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
	}
	return names
}
