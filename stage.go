// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains the three-way tree computation that backs merge and
// rebase: diffing base→ours and base→theirs and folding both into a staging
// area of per-path resolutions and conflicts.
package gitx

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// stagedEntry is a single path resolution produced by a three-way merge:
// either a blob to place at the path or a removal of the path.
type stagedEntry struct {
	path   string
	remove bool
	hash   plumbing.Hash
	mode   filemode.FileMode
}

// pathConflict records competing changes to one path. A zero hash means that
// side deleted the path.
type pathConflict struct {
	path   string
	ours   plumbing.Hash
	theirs plumbing.Hash
}

// stagingArea holds the working result of a three-way merge before it is
// applied to the worktree and committed. It is owned by a single in-progress
// operation and discarded when that operation ends.
type stagingArea struct {
	entries   []stagedEntry
	conflicts []pathConflict
}

func (s *stagingArea) hasConflicts() bool {
	return len(s.conflicts) > 0
}

// empty reports whether the merge introduces no change relative to ours.
func (s *stagingArea) empty() bool {
	return len(s.entries) == 0 && len(s.conflicts) == 0
}

// touchedPaths returns every path the staging area would write or remove,
// conflicts included.
func (s *stagingArea) touchedPaths() []string {
	paths := make([]string, 0, len(s.entries)+len(s.conflicts))
	for _, e := range s.entries {
		paths = append(paths, e.path)
	}
	for _, c := range s.conflicts {
		paths = append(paths, c.path)
	}
	return paths
}

// changeResult is the post-change state of a path on one side of the merge.
type changeResult struct {
	removed bool
	hash    plumbing.Hash
	mode    filemode.FileMode
}

func (a changeResult) equal(b changeResult) bool {
	if a.removed || b.removed {
		return a.removed == b.removed
	}
	return a.hash == b.hash && a.mode == b.mode
}

// threeWay computes the staging area for merging theirs into ours using base
// as the common ancestor. Trees may be nil to represent an empty history
// side. The computation is pure: nothing is written until the caller applies
// the result.
//
// Per-path rules: a path changed on only one side takes that side's result;
// identical changes on both sides collapse; differing changes (including
// modify/delete) become conflicts.
func threeWay(base, ours, theirs *object.Tree) (*stagingArea, error) {
	ourChanges, err := object.DiffTree(base, ours)
	if err != nil {
		return nil, WrapError(err, "failed to diff base against ours")
	}

	theirChanges, err := object.DiffTree(base, theirs)
	if err != nil {
		return nil, WrapError(err, "failed to diff base against theirs")
	}

	oursByPath, err := indexChanges(ourChanges)
	if err != nil {
		return nil, err
	}

	theirsByPath, err := indexChanges(theirChanges)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(theirsByPath))
	for path := range theirsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	sa := &stagingArea{}
	for _, path := range paths {
		theirResult := theirsByPath[path]
		ourResult, both := oursByPath[path]
		if !both {
			sa.entries = append(sa.entries, stagedEntry{
				path:   path,
				remove: theirResult.removed,
				hash:   theirResult.hash,
				mode:   theirResult.mode,
			})
			continue
		}

		if ourResult.equal(theirResult) {
			// Both sides made the same change; ours already has it.
			continue
		}

		sa.conflicts = append(sa.conflicts, pathConflict{
			path:   path,
			ours:   ourResult.hash,
			theirs: theirResult.hash,
		})
	}

	return sa, nil
}

// indexChanges maps a change list by path to its post-change result.
func indexChanges(changes object.Changes) (map[string]changeResult, error) {
	byPath := make(map[string]changeResult, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, WrapError(err, "failed to classify change")
		}

		switch action {
		case merkletrie.Delete:
			byPath[change.From.Name] = changeResult{removed: true}
		case merkletrie.Insert, merkletrie.Modify:
			byPath[change.To.Name] = changeResult{
				hash: change.To.TreeEntry.Hash,
				mode: change.To.TreeEntry.Mode,
			}
			// A rename shows up as delete+insert of distinct paths; when the
			// names differ within one change, record the removal too.
			if change.From.Name != "" && change.From.Name != change.To.Name {
				byPath[change.From.Name] = changeResult{removed: true}
			}
		}
	}
	return byPath, nil
}

// applyStaged writes the staging area's resolutions into the worktree and
// index. Callers must have verified the affected paths are safe to touch.
func (r *Repo) applyStaged(sa *stagingArea) error {
	for _, entry := range sa.entries {
		if entry.remove {
			if _, err := r.worktree.Remove(entry.path); err != nil {
				return WrapErrorf(err, "failed to remove %q", entry.path)
			}
			continue
		}

		content, err := r.blobContent(entry.hash)
		if err != nil {
			return err
		}

		if err := r.writeWorktreeFile(entry.path, content, entry.mode); err != nil {
			return err
		}

		if _, err := r.worktree.Add(entry.path); err != nil {
			return WrapErrorf(err, "failed to stage %q", entry.path)
		}
	}
	return nil
}

// writeWorktreeFile writes content to a path inside the worktree, creating
// parent directories as needed.
func (r *Repo) writeWorktreeFile(path string, content []byte, mode filemode.FileMode) error {
	target := path
	if r.options.Workdir != DefaultWorkdir {
		target = filepath.Join(r.options.Workdir, path)
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return WrapErrorf(err, "failed to create directory %q", dir)
		}
	}

	osMode, err := mode.ToOSFileMode()
	if err != nil {
		osMode = 0o644
	}

	if err := r.fs.WriteFile(target, content, osMode); err != nil {
		return WrapErrorf(err, "failed to write %q", target)
	}
	return nil
}

// blobContent reads the full content of a blob object.
func (r *Repo) blobContent(hash plumbing.Hash) ([]byte, error) {
	if hash.IsZero() {
		return nil, nil
	}

	blob, err := object.GetBlob(r.repo.Storer, hash)
	if err != nil {
		return nil, WrapError(err, "failed to read blob")
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, WrapError(err, "failed to open blob")
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, WrapError(err, "failed to read blob content")
	}
	return content, nil
}

// checkWorktreeSafe refuses to proceed when any of the given paths carries
// uncommitted local changes. Violations are reported, never overwritten.
func (r *Repo) checkWorktreeSafe(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	status, err := r.worktree.Status()
	if err != nil {
		return WrapError(err, "failed to get worktree status")
	}

	for _, path := range paths {
		entry, found := status[path]
		if !found {
			continue
		}
		if entry.Worktree != git.Unmodified || entry.Staging != git.Unmodified {
			return WrapErrorf(ErrLocalChanges, "path %q has local modifications", path)
		}
	}
	return nil
}
