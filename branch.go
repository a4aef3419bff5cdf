// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains branch management: creation, checkout, deletion, and
// upstream tracking configuration.
package gitx

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Upstream describes the remote-tracking configuration of a local branch.
type Upstream struct {
	// Remote is the name of the remote the branch integrates with.
	Remote string

	// Merge is the upstream branch ref on that remote (refs/heads/<name>).
	Merge plumbing.ReferenceName
}

// CurrentBranch returns the name of the currently checked out branch.
// It returns an error if HEAD is in a detached state.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", WrapError(ErrResolveFailed, "HEAD is detached")
	}

	return head.Name().Short(), nil
}

// CreateBranch creates a new branch from the specified revision. The start
// revision can be any valid revision (commit hash, branch name, tag, etc.).
// When upstream is non-nil the branch is configured to track it. If force is
// true an existing branch with the same name is overwritten.
func (r *Repo) CreateBranch(ctx context.Context, name, startRev string, upstream *Upstream, force bool) error {
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	if startRev == "" {
		return WrapError(ErrInvalidRef, "start revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(startRev))
	if err != nil {
		return WrapError(ErrResolveFailed, "failed to resolve start revision")
	}

	branchRefName := plumbing.NewBranchReferenceName(name)
	_, err = r.repo.Reference(branchRefName, true)
	if err == nil && !force {
		return WrapErrorf(ErrBranchExists, "branch %q", name)
	}

	newRef := plumbing.NewHashReference(branchRefName, *hash)
	if err := r.repo.Storer.SetReference(newRef); err != nil {
		return WrapError(err, "failed to create branch reference")
	}

	if upstream != nil {
		if err := r.SetUpstream(ctx, name, upstream.Remote, upstream.Merge.Short()); err != nil {
			return err
		}
	}

	return nil
}

// SetUpstream configures the branch to integrate with the given remote
// branch. The merge argument is the short branch name on the remote (e.g.
// "main"). If it is empty, the local branch name is used.
func (r *Repo) SetUpstream(ctx context.Context, name, remote, merge string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}
	if remote == "" {
		remote = DefaultRemoteName
	}
	if merge == "" {
		merge = name
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return WrapError(err, "failed to read repository config")
	}

	if cfg.Branches == nil {
		cfg.Branches = make(map[string]*config.Branch)
	}
	cfg.Branches[name] = &config.Branch{
		Name:   name,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(merge),
	}

	if err := r.repo.Storer.SetConfig(cfg); err != nil {
		return WrapError(err, "failed to write repository config")
	}
	return nil
}

// Upstream returns the remote-tracking configuration of the named branch, or
// ErrUpstreamMissing when none is configured.
func (r *Repo) Upstream(ctx context.Context, name string) (*Upstream, error) {
	if name == "" {
		return nil, WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	branchCfg, err := r.repo.Branch(name)
	if err != nil || branchCfg.Merge == "" {
		return nil, WrapErrorf(ErrUpstreamMissing, "branch %q", name)
	}

	return &Upstream{Remote: branchCfg.Remote, Merge: branchCfg.Merge}, nil
}

// CheckoutBranch switches to the specified branch.
// If createIfMissing is true, it creates the branch from HEAD if it doesn't exist.
// If force is true, it discards any uncommitted changes in the working tree.
func (r *Repo) CheckoutBranch(ctx context.Context, name string, createIfMissing, force bool) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	branchRefName := plumbing.NewBranchReferenceName(name)

	_, err := r.repo.Reference(branchRefName, true)
	if err != nil {
		if !createIfMissing {
			return WrapErrorf(ErrBranchMissing, "branch %q", name)
		}

		head, headErr := r.repo.Head()
		if headErr != nil {
			return WrapError(headErr, "failed to get HEAD reference")
		}

		newRef := plumbing.NewHashReference(branchRefName, head.Hash())
		if setErr := r.repo.Storer.SetReference(newRef); setErr != nil {
			return WrapError(setErr, "failed to create branch reference")
		}
	}

	checkoutOpts := &git.CheckoutOptions{
		Branch: branchRefName,
		Force:  force,
	}

	if err := r.worktree.Checkout(checkoutOpts); err != nil {
		return WrapError(err, "failed to checkout branch")
	}

	return nil
}

// DeleteBranch deletes the specified local branch.
// It prevents deletion of the currently checked out branch.
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	branchRefName := plumbing.NewBranchReferenceName(name)

	_, err := r.repo.Reference(branchRefName, true)
	if err != nil {
		return WrapErrorf(ErrBranchMissing, "branch %q", name)
	}

	// This might fail in an empty repository, which is okay.
	currentBranch, err := r.CurrentBranch(ctx)
	if err == nil && currentBranch == name {
		return WrapError(ErrInvalidRef, "cannot delete the currently checked out branch")
	}

	if err := r.repo.Storer.RemoveReference(branchRefName); err != nil {
		return WrapError(err, "failed to delete branch")
	}

	// Drop any tracking configuration left behind.
	if cfg, cfgErr := r.repo.Config(); cfgErr == nil {
		if _, tracked := cfg.Branches[name]; tracked {
			delete(cfg.Branches, name)
			_ = r.repo.Storer.SetConfig(cfg)
		}
	}

	return nil
}

// CheckoutRemoteBranch creates a local branch from a remote branch, sets up
// tracking, and checks it out. If localName is empty, the remote branch name
// is used.
func (r *Repo) CheckoutRemoteBranch(ctx context.Context, remote, remoteBranch, localName string) error {
	if remote == "" {
		return WrapError(ErrInvalidRef, "remote name cannot be empty")
	}

	if remoteBranch == "" {
		return WrapError(ErrInvalidRef, "remote branch name cannot be empty")
	}

	if localName == "" {
		localName = remoteBranch
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, remoteBranch), true)
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "remote branch %s/%s does not exist", remote, remoteBranch)
	}

	localBranchRef := plumbing.NewBranchReferenceName(localName)
	newRef := plumbing.NewHashReference(localBranchRef, remoteRef.Hash())
	if err := r.repo.Storer.SetReference(newRef); err != nil {
		return WrapError(err, "failed to create local branch")
	}

	if err := r.SetUpstream(ctx, localName, remote, remoteBranch); err != nil {
		return err
	}

	if err := r.worktree.Checkout(&git.CheckoutOptions{Branch: localBranchRef}); err != nil {
		return WrapError(err, "failed to checkout local branch")
	}

	return nil
}
