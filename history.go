// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains history-related operations including commit logging and iteration.
package gitx

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LogFilter configures which commits to include in log operations.
// Use this to filter commits by time range, author, paths, or limit the result count.
type LogFilter struct {
	// From is the revision to start walking from. Defaults to HEAD.
	From string

	// Since limits the log to commits after the specified time.
	Since *time.Time

	// Until limits the log to commits before the specified time.
	Until *time.Time

	// Author filters commits whose author or committer name/email contains
	// the given substring.
	Author string

	// Path filters commits that modified the specified path(s).
	Path []string

	// MaxCount limits the number of commits returned.
	// If 0, all matching commits are returned.
	MaxCount int
}

// CommitIter iterates over commits returned by Log. It applies the
// author and count filters lazily, without loading all commits into memory.
// Close it when no longer needed to free resources.
type CommitIter struct {
	iter     object.CommitIter
	author   string
	maxCount int
	seen     int
}

// Next returns the next matching commit, or nil when iteration is complete.
func (ci *CommitIter) Next() (*object.Commit, error) {
	for {
		if ci.maxCount > 0 && ci.seen >= ci.maxCount {
			return nil, nil
		}

		commit, err := ci.iter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, WrapError(err, "failed to get next commit")
		}

		if ci.author != "" && !signatureMatches(commit, ci.author) {
			continue
		}

		ci.seen++
		return commit, nil
	}
}

// ForEach executes the provided function for each matching commit.
// Iteration stops if the function returns an error.
func (ci *CommitIter) ForEach(fn func(*object.Commit) error) error {
	for {
		commit, err := ci.Next()
		if err != nil {
			return err
		}
		if commit == nil {
			return nil
		}
		if err := fn(commit); err != nil {
			return WrapError(err, "failed to iterate commits")
		}
	}
}

// Close closes the iterator and releases any associated resources.
func (ci *CommitIter) Close() {
	ci.iter.Close()
}

// Log returns a commit iterator for the repository with the specified filters applied.
// The returned CommitIter should be closed when no longer needed.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Log(ctx context.Context, f LogFilter) (*CommitIter, error) {
	logOpts := &git.LogOptions{
		Since: f.Since,
		Until: f.Until,
		Order: git.LogOrderCommitterTime,
	}

	if f.From != "" {
		hash, err := r.repo.ResolveRevision(plumbing.Revision(f.From))
		if err != nil {
			return nil, WrapError(ErrResolveFailed, "failed to resolve log start revision")
		}
		logOpts.From = *hash
	}

	// go-git has no author filter in LogOptions, so that one is applied by
	// the iterator instead.
	if len(f.Path) > 0 {
		paths := f.Path
		logOpts.PathFilter = func(path string) bool {
			for _, filterPath := range paths {
				if path == filterPath || strings.HasPrefix(path, filterPath+"/") {
					return true
				}
			}
			return false
		}
	}

	iter, err := r.repo.Log(logOpts)
	if err != nil {
		return nil, WrapError(err, "failed to create commit iterator")
	}

	return &CommitIter{
		iter:     iter,
		author:   f.Author,
		maxCount: f.MaxCount,
	}, nil
}

// signatureMatches reports whether the commit's author or committer
// name/email contains the given substring.
func signatureMatches(commit *object.Commit, author string) bool {
	return strings.Contains(commit.Author.Name, author) ||
		strings.Contains(commit.Author.Email, author) ||
		strings.Contains(commit.Committer.Name, author) ||
		strings.Contains(commit.Committer.Email, author)
}
