// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains three-way merge execution: conflict detection, safe
// worktree application, and merge-commit synthesis.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Merge merges the commit the given revision resolves to into the current
// branch. Depending on how the histories relate this is a no-op (already up
// to date), a fast-forward (branch repointed, no commit created), or a
// three-way merge producing a commit with parents [current tip, candidate].
//
// On conflicts no commit is created and ErrMergeConflict is returned; the
// conflicting paths are left in the working tree with conflict markers for
// manual resolution, and no merge-in-progress state survives the call.
func (r *Repo) Merge(ctx context.Context, rev string) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot merge in bare repository")
	}

	analysis, err := r.AnalyzeMerge(ctx, rev)
	if err != nil {
		return err
	}

	candidate := mergeCandidate{name: rev, hash: analysis.Theirs}

	switch {
	case analysis.Has(CapUpToDate):
		return nil
	case analysis.Has(CapUnborn):
		return r.fastForwardUnborn(candidate.hash)
	case analysis.Has(CapFastForward):
		return r.fastForward(candidate.hash)
	case analysis.Has(CapUnrelated):
		return WrapErrorf(ErrUnrelatedHistories, "refusing to merge %q", rev)
	}

	return r.mergeCommits(ctx, analysis, candidate)
}

// fastForward advances the current branch to target without creating a
// commit. Only the paths that differ between the tip and the target are
// touched: local uncommitted changes on any of those paths cause the
// operation to be refused, dirty files elsewhere are left alone.
func (r *Repo) fastForward(target plumbing.Hash) error {
	head, err := r.repo.Head()
	if err != nil {
		return WrapError(err, "failed to get HEAD reference")
	}

	tipTree, err := r.treeOf(head.Hash())
	if err != nil {
		return err
	}
	targetTree, err := r.treeOf(target)
	if err != nil {
		return err
	}

	// With the tip as its own base every difference is one-sided, so the
	// staging area holds exactly the paths the fast-forward rewrites.
	sa, err := threeWay(tipTree, tipTree, targetTree)
	if err != nil {
		return err
	}

	if err := r.checkWorktreeSafe(sa.touchedPaths()); err != nil {
		return WrapError(err, "fast-forward aborted")
	}

	if err := r.applyStaged(sa); err != nil {
		return errors.Join(err, r.resetHard(head.Hash()))
	}

	branchRef := plumbing.NewHashReference(head.Name(), target)
	if err := r.repo.Storer.SetReference(branchRef); err != nil {
		return errors.Join(WrapError(err, "failed to advance branch"), r.resetHard(head.Hash()))
	}
	return nil
}

// fastForwardUnborn points an unborn branch at target and materializes the
// worktree. This is the trivial fast-forward for repositories without
// commits.
func (r *Repo) fastForwardUnborn(target plumbing.Hash) error {
	headRef, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return WrapError(err, "failed to read HEAD")
	}

	branchRef := plumbing.NewHashReference(headRef.Target(), target)
	if err := r.repo.Storer.SetReference(branchRef); err != nil {
		return WrapError(err, "failed to set branch reference")
	}

	err = r.worktree.Reset(&git.ResetOptions{
		Commit: target,
		Mode:   git.HardReset,
	})
	if err != nil {
		return WrapError(err, "failed to materialize worktree")
	}
	return nil
}

// mergeCommits performs the three-way merge of a diverged candidate and
// synthesizes the merge commit. The staging area is transient: it is either
// committed or fully unwound before this method returns.
func (r *Repo) mergeCommits(ctx context.Context, analysis *MergeAnalysis, candidate mergeCandidate) error {
	baseTree, oursTree, theirsTree, err := r.mergeTrees(analysis)
	if err != nil {
		return err
	}

	sa, err := threeWay(baseTree, oursTree, theirsTree)
	if err != nil {
		return err
	}

	if err := r.checkWorktreeSafe(sa.touchedPaths()); err != nil {
		return err
	}

	if sa.hasConflicts() {
		// Leave markers in the working tree for manual resolution; index and
		// branch stay untouched so no in-progress state survives.
		if err := r.writeConflictMarkers(sa.conflicts, candidate.name); err != nil {
			return err
		}
		return WrapErrorf(ErrMergeConflict, "%d conflicting path(s)", len(sa.conflicts))
	}

	if err := r.applyStaged(sa); err != nil {
		return errors.Join(err, r.resetHard(analysis.Ours))
	}

	identity, err := r.resolveIdentity(ctx)
	if err != nil {
		return errors.Join(err, r.resetHard(analysis.Ours))
	}

	msg := fmt.Sprintf("Merge branch '%s'", candidate.displayName(r.remoteNames()))
	who := identity.toObject()

	_, err = r.worktree.Commit(msg, &git.CommitOptions{
		Author:    &who,
		Committer: &who,
		Parents:   []plumbing.Hash{analysis.Ours, analysis.Theirs},
		// The merged tree can equal the current tree; the commit still has
		// to exist to record the joined histories.
		AllowEmptyCommits: true,
	})
	if err != nil {
		return errors.Join(WrapError(err, "failed to create merge commit"), r.resetHard(analysis.Ours))
	}

	return nil
}

// mergeTrees loads the base, ours, and theirs trees for a normal merge.
func (r *Repo) mergeTrees(analysis *MergeAnalysis) (base, ours, theirs *object.Tree, err error) {
	if analysis.Base() != nil {
		base, err = analysis.Base().Tree()
		if err != nil {
			return nil, nil, nil, WrapError(err, "failed to read base tree")
		}
	}

	ours, err = r.treeOf(analysis.Ours)
	if err != nil {
		return nil, nil, nil, err
	}

	theirs, err = r.treeOf(analysis.Theirs)
	if err != nil {
		return nil, nil, nil, err
	}

	return base, ours, theirs, nil
}

// treeOf returns the tree of the commit at hash.
func (r *Repo) treeOf(hash plumbing.Hash) (*object.Tree, error) {
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, WrapError(err, "failed to read commit")
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, WrapError(err, "failed to read tree")
	}
	return tree, nil
}

// writeConflictMarkers renders each conflicted path into the worktree with
// standard conflict markers, ours side labeled HEAD and theirs side labeled
// with the candidate name.
func (r *Repo) writeConflictMarkers(conflicts []pathConflict, theirsLabel string) error {
	for _, conflict := range conflicts {
		content, err := r.conflictContent(conflict, theirsLabel)
		if err != nil {
			return err
		}
		if err := r.writeWorktreeFile(conflict.path, content, filemode.Regular); err != nil {
			return err
		}
	}
	return nil
}

// conflictContent builds the marker-annotated content for one conflicted
// path. A deleted side contributes empty content between its markers.
func (r *Repo) conflictContent(conflict pathConflict, theirsLabel string) ([]byte, error) {
	ours, err := r.blobContent(conflict.ours)
	if err != nil {
		return nil, err
	}

	theirs, err := r.blobContent(conflict.theirs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	writeSide(&buf, ours)
	buf.WriteString("=======\n")
	writeSide(&buf, theirs)
	fmt.Fprintf(&buf, ">>>>>>> %s\n", theirsLabel)
	return buf.Bytes(), nil
}

// writeSide appends one side's content, ensuring it ends with a newline so
// the following marker starts on its own line.
func writeSide(buf *bytes.Buffer, content []byte) {
	if len(content) == 0 {
		return
	}
	buf.Write(content)
	if content[len(content)-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// resetHard restores the branch, index, and worktree to the given commit.
// It is the unconditional cleanup for failed merge and rebase operations; a
// cleanup failure is reported so callers know the repository may not be
// fully restored.
func (r *Repo) resetHard(target plumbing.Hash) error {
	err := r.worktree.Reset(&git.ResetOptions{
		Commit: target,
		Mode:   git.HardReset,
	})
	if err != nil {
		return WrapError(err, "failed to restore previous state")
	}
	return nil
}
