package gitx

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// Add stages the given paths. A path may be a file, a directory (staged
// recursively), or a glob pattern. Context timeout/cancellation is honored.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	if len(paths) == 0 {
		return WrapError(ErrInvalidRef, "no paths to stage")
	}

	for _, path := range paths {
		if path == "" {
			return WrapError(ErrInvalidRef, "path cannot be empty")
		}

		var err error
		if strings.ContainsAny(path, "*?[") {
			err = r.worktree.AddGlob(path)
		} else {
			_, err = r.worktree.Add(path)
		}
		if err != nil {
			return WrapErrorf(err, "failed to stage %q", path)
		}
	}

	return nil
}

// Remove removes the given paths from the worktree and the index.
func (r *Repo) Remove(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	if len(paths) == 0 {
		return WrapError(ErrInvalidRef, "no paths to remove")
	}

	for _, path := range paths {
		if path == "" {
			return WrapError(ErrInvalidRef, "path cannot be empty")
		}
		if _, err := r.worktree.Remove(path); err != nil {
			return WrapErrorf(err, "failed to remove %q", path)
		}
	}

	return nil
}

// Commit records the staged changes as a new commit and returns its hash.
//
// Unless opts.AllowEmpty is set, committing with nothing staged returns
// ErrEmptyCommit. When opts.Conventional is set, the message must parse as a
// conventional commit. The author identity comes from opts.Author when set,
// otherwise from the configured identity chain.
func (r *Repo) Commit(ctx context.Context, message string, opts CommitOpts) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, WrapError(err, "context cancelled")
	}

	if message == "" {
		return plumbing.ZeroHash, WrapError(ErrEmptyCommit, "commit message cannot be empty")
	}

	if opts.Conventional {
		if err := validateConventional(message); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	if opts.All {
		if err := r.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return plumbing.ZeroHash, WrapError(err, "failed to stage modified files")
		}
	}

	if !opts.AllowEmpty {
		staged, err := r.stagedCount()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if staged == 0 {
			return plumbing.ZeroHash, WrapError(ErrEmptyCommit, "nothing staged to commit")
		}
	}

	identity := opts.Author
	if identity == nil {
		resolved, err := r.resolveIdentity(ctx)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		identity = &resolved
	}

	author := identity.toObject()
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author:            &author,
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to create commit")
	}

	return hash, nil
}

// stagedCount returns the number of index entries that differ from HEAD.
func (r *Repo) stagedCount() (int, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return 0, WrapError(err, "failed to get worktree status")
	}

	count := 0
	for _, entry := range status {
		if entry.Staging != git.Unmodified && entry.Staging != git.Untracked {
			count++
		}
	}
	return count, nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}
	return status.IsClean(), nil
}

func validateConventional(message string) error {
	machine := parser.NewMachine(
		conventionalcommits.WithTypes(conventionalcommits.TypesConventional),
		conventionalcommits.WithBestEffort(),
	)
	if _, err := machine.Parse([]byte(message)); err != nil {
		return WrapError(err, "commit message is not a conventional commit")
	}
	return nil
}
