// Package gitx provides sentinel errors for common git operations.
// All errors can be checked using errors.Is() for programmatic handling.
package gitx

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrAlreadyUpToDate is returned when fetch or push operations result in no
// changes because the local and remote states are already synchronized.
var ErrAlreadyUpToDate = errors.New("already up to date")

// ErrAuthRequired is returned when an operation requires authentication
// but no credentials were provided or available.
var ErrAuthRequired = errors.New("authentication required")

// ErrBranchExists is returned when attempting to create a branch that already exists
// and force creation was not requested.
var ErrBranchExists = errors.New("branch already exists")

// ErrBranchMissing is returned when attempting to operate on a branch that does not exist.
var ErrBranchMissing = errors.New("branch does not exist")

// ErrRemoteMissing is returned when a named remote is not configured for the repository.
var ErrRemoteMissing = errors.New("remote does not exist")

// ErrUpstreamMissing is returned when the current branch has no upstream
// configured and an operation requires one (for example Pull).
var ErrUpstreamMissing = errors.New("no upstream configured")

// ErrTagExists is returned when attempting to create a tag that already exists
// and force creation was not requested.
var ErrTagExists = errors.New("tag already exists")

// ErrTagMissing is returned when attempting to operate on a tag that does not exist.
var ErrTagMissing = errors.New("tag does not exist")

// ErrNotFastForward is returned when a push cannot be applied to the remote
// without merging, or when a fast-forward-only pull finds divergent histories.
var ErrNotFastForward = errors.New("not a fast-forward")

// ErrMergeConflict is returned when a three-way merge produced path-level
// conflicts that require manual resolution. The working tree retains conflict
// markers for the affected paths; no commit is created.
var ErrMergeConflict = errors.New("merge conflict")

// ErrRebaseConflict is returned when replaying a commit during rebase produced
// conflicts. The branch is restored to its pre-rebase tip before this error
// surfaces; no partial rebase state is retained.
var ErrRebaseConflict = errors.New("rebase conflict")

// ErrUnrelatedHistories is returned when two commits share no common ancestor
// and the requested operation refuses to join them.
var ErrUnrelatedHistories = errors.New("unrelated histories")

// ErrLocalChanges is returned when an operation would overwrite uncommitted
// changes in the working tree. The operation is refused rather than applied.
var ErrLocalChanges = errors.New("local changes would be overwritten")

// ErrNoIdentity is returned when a commit must be synthesized but no
// author/committer identity could be resolved from any configured source.
var ErrNoIdentity = errors.New("no identity configured")

// ErrEmptyCommit is returned when a commit is requested with no staged changes
// and empty commits were not explicitly allowed.
var ErrEmptyCommit = errors.New("no changes staged for commit")

// ErrInvalidRef is returned when a reference name or revision specification
// is malformed or invalid according to git's reference naming rules.
var ErrInvalidRef = errors.New("invalid reference")

// ErrResolveFailed is returned when a revision specification cannot be resolved
// to a valid commit hash (e.g., branch/tag doesn't exist, invalid SHA).
var ErrResolveFailed = errors.New("cannot resolve revision")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
