// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains diff-related operations for comparing revisions.
package gitx

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// PatchText represents unified diff text between two revisions.
type PatchText struct {
	// Text contains the unified diff in string format.
	Text string

	// IsBinary indicates whether the diff touches binary files.
	IsBinary bool

	// FileCount indicates the number of files that have changes.
	FileCount int
}

// ChangeFilter is a predicate function for filtering changes in diffs.
// A change must pass ALL filters to be included in the diff output.
type ChangeFilter func(*object.Change) bool

// Diff computes the diff between two revisions and returns unified diff text.
// The revisions 'a' and 'b' can be any valid git revision specifiers (commit
// hashes, branch names, tags, etc.). If no filters are provided, all changes
// are included.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Diff(ctx context.Context, a, b string, filters ...ChangeFilter) (*PatchText, error) {
	if a == "" {
		return nil, WrapError(ErrInvalidRef, "revision 'a' cannot be empty")
	}
	if b == "" {
		return nil, WrapError(ErrInvalidRef, "revision 'b' cannot be empty")
	}

	treeA, err := r.treeForRevision(a)
	if err != nil {
		return nil, WrapErrorf(err, "failed to get tree for revision %q", a)
	}

	treeB, err := r.treeForRevision(b)
	if err != nil {
		return nil, WrapErrorf(err, "failed to get tree for revision %q", b)
	}

	changes, err := object.DiffTreeWithOptions(ctx, treeA, treeB, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, WrapError(err, "failed to compute changes")
	}

	var filtered object.Changes
	for _, change := range changes {
		if includeChange(change, filters) {
			filtered = append(filtered, change)
		}
	}

	patch, err := filtered.PatchContext(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to generate patch")
	}

	isBinary := false
	for _, filePatch := range patch.FilePatches() {
		if filePatch.IsBinary() {
			isBinary = true
			break
		}
	}

	return &PatchText{
		Text:      patch.String(),
		IsBinary:  isBinary,
		FileCount: len(filtered),
	}, nil
}

// treeForRevision resolves a revision and returns its tree.
func (r *Repo) treeForRevision(rev string) (*object.Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapError(ErrResolveFailed, "failed to resolve revision")
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, WrapError(err, "failed to get commit object")
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, WrapError(err, "failed to get tree")
	}

	return tree, nil
}

func includeChange(change *object.Change, filters []ChangeFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(change) {
			return false
		}
	}
	return true
}

// ChangePathFilter returns a filter that includes changes affecting the given
// path. The path can be a file or directory; for directories, all files
// within are matched.
func ChangePathFilter(path string) ChangeFilter {
	return func(change *object.Change) bool {
		return pathTouches(change.From.Name, path) || pathTouches(change.To.Name, path)
	}
}

// ChangeExtensionFilter returns a filter that includes changes to files with
// the specified extension. The extension should include the dot (e.g., ".go").
func ChangeExtensionFilter(ext string) ChangeFilter {
	return func(change *object.Change) bool {
		return filepath.Ext(change.From.Name) == ext || filepath.Ext(change.To.Name) == ext
	}
}

func pathTouches(name, path string) bool {
	return name == path || strings.HasPrefix(name, path+"/")
}
