// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains reference-related operations for listing and resolving refs.
package gitx

import (
	"context"
	"path"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// RefKind represents the type of git reference.
// This is used to classify references when listing or resolving them.
type RefKind int

const (
	// RefBranch indicates a local branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefRemoteBranch indicates a remote branch reference (refs/remotes/*/*).
	RefRemoteBranch

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag

	// RefCommit indicates a commit hash (not a symbolic reference).
	RefCommit

	// RefOther indicates any other type of reference.
	RefOther
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefRemoteBranch:
		return "remote-branch"
	case RefTag:
		return "tag"
	case RefCommit:
		return "commit"
	case RefOther:
		return "other"
	default:
		return "unknown"
	}
}

// ResolvedRef represents a resolved reference with its kind and hash.
// This is returned when resolving revision specifiers like branch names, tags, or commit SHAs.
type ResolvedRef struct {
	// Kind indicates the type of reference (branch, tag, commit, etc.).
	Kind RefKind

	// Hash is the resolved commit hash in full SHA-1 format.
	Hash string

	// CanonicalName is the canonical reference name (e.g., "refs/heads/main").
	// For commit hashes, this is the hash itself.
	CanonicalName string
}

// Refs returns a list of references that match the specified kind and pattern.
// The pattern supports glob-style matching with * and ? wildcards; an empty
// pattern matches everything. Results are sorted alphabetically.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Refs(ctx context.Context, kind RefKind, pattern string) ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var matching []string

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !matchesRefKind(ref, kind) {
			return nil
		}

		shortName := ref.Name().Short()
		if pattern != "" {
			matched, matchErr := path.Match(pattern, shortName)
			if matchErr != nil {
				return WrapErrorf(matchErr, "invalid pattern %q", pattern)
			}
			if !matched {
				return nil
			}
		}

		matching = append(matching, shortName)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(matching)

	return matching, nil
}

// matchesRefKind checks if a reference matches the specified RefKind.
func matchesRefKind(ref *plumbing.Reference, kind RefKind) bool {
	switch kind {
	case RefBranch:
		return ref.Name().IsBranch()
	case RefRemoteBranch:
		return ref.Name().IsRemote()
	case RefTag:
		return ref.Name().IsTag()
	case RefCommit:
		// Commit hashes are not stored as references.
		return false
	case RefOther:
		return !ref.Name().IsBranch() && !ref.Name().IsTag() && !ref.Name().IsRemote()
	default:
		return false
	}
}

// Resolve resolves a revision specification to a ResolvedRef containing the kind and hash.
// The revision can be any valid git revision syntax (commit hash, branch name, tag, HEAD, etc.).
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Resolve(ctx context.Context, rev string) (*ResolvedRef, error) {
	if rev == "" {
		return nil, WrapError(ErrInvalidRef, "revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapError(ErrResolveFailed, "failed to resolve revision")
	}

	kind, canonicalName := r.classifyResolvedRevision(rev, hash)

	return &ResolvedRef{
		Kind:          kind,
		Hash:          hash.String(),
		CanonicalName: canonicalName,
	}, nil
}

// classifyResolvedRevision determines the RefKind and canonical name for a resolved revision.
func (r *Repo) classifyResolvedRevision(rev string, hash *plumbing.Hash) (RefKind, string) {
	if plumbing.IsHash(rev) {
		return RefCommit, hash.String()
	}

	if rev == "HEAD" {
		return RefOther, "HEAD"
	}

	refs, err := r.repo.References()
	if err != nil {
		return RefCommit, hash.String()
	}

	var found *plumbing.Reference
	_ = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().Short() == rev || ref.Name().String() == rev {
			found = ref
		}
		return nil
	})

	if found == nil {
		// Partial hash or other revision syntax (e.g. HEAD~1).
		return RefCommit, hash.String()
	}

	name := found.Name()
	switch {
	case name.IsBranch():
		return RefBranch, name.String()
	case name.IsTag():
		return RefTag, name.String()
	case name.IsRemote():
		return RefRemoteBranch, name.String()
	default:
		return RefOther, name.String()
	}
}
