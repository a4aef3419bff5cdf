// Package gitx provides a high-level, idiomatic Go wrapper for git operations,
// centered on merge, rebase, and pull workflows.
//
// This package offers a clean facade over go-git, exposing task-oriented
// operations for common git workflows while enforcing the use of the project's
// native filesystem abstraction. All operations work with both on-disk and
// in-memory repositories.
//
// # Design Principles
//
// The package follows these core principles:
//   - Minimal surface area - easy to learn and extend
//   - Testability by construction - in-memory FS, controlled side effects
//   - Security & performance - context timeouts, auth integration, object caching
//   - Go idioms - accepts interfaces, returns concrete types
//
// # Basic Usage
//
// Initialize or open a repository:
//
//	import (
//	    "context"
//	    billyfs "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
//	    "github.com/dunkbing/gitx"
//	)
//
//	// Create filesystem (can be OS-backed or in-memory)
//	fs := billyfs.NewOSFS("/path/to/repo")
//
//	// Open existing repository
//	repo, err := gitx.Open(context.Background(), &gitx.Options{
//	    FS:      fs,
//	    Workdir: ".",
//	})
//
// # Merging
//
// Analysis and execution are separate steps. AnalyzeMerge classifies what
// merging a revision would take without touching the repository; Merge acts
// on that classification:
//
//	analysis, err := repo.AnalyzeMerge(ctx, "feature/new")
//	if analysis.Has(gitx.CapFastForward) {
//	    // merging will not create a commit
//	}
//
//	err = repo.Merge(ctx, "feature/new")
//	if errors.Is(err, gitx.ErrMergeConflict) {
//	    // conflict markers were written to the working tree;
//	    // no commit was created and HEAD is unchanged
//	}
//
// # Rebasing
//
// Rebase replays local commits onto another branch. It is atomic: on
// conflict the branch is returned to its original tip and the returned plan
// reports which step conflicted:
//
//	plan, err := repo.Rebase(ctx, "main")
//	if errors.Is(err, gitx.ErrRebaseConflict) {
//	    for _, step := range plan.Steps {
//	        fmt.Println(step.Commit, step.Status)
//	    }
//	}
//
// # Pulling
//
// Pull fetches the current branch's upstream and integrates it according to
// a policy:
//
//	err = repo.Pull(ctx, "", gitx.PullAuto)            // ff when possible, else merge
//	err = repo.Pull(ctx, "", gitx.PullFastForwardOnly) // fail instead of merging
//	err = repo.Pull(ctx, "", gitx.PullRebase)          // rebase local commits on top
//
// # Making Commits
//
// Stage files and create commits:
//
//	err = repo.Add(ctx, "file1.go", "file2.go")
//	sha, err := repo.Commit(ctx, "feat: add new feature", gitx.CommitOpts{
//	    Conventional: true,
//	})
//
// The author identity comes from CommitOpts.Author, the repository or global
// git configuration, or the Options.Identity provider, in that order.
//
// # Authentication
//
// The package supports authentication through the AuthProvider interface.
// Implementations for HTTPS (token/password) and SSH (key file, agent) are
// available in the internal/auth package. Users can implement their own
// AuthProvider for custom authentication needs.
//
// # In-Memory Operations
//
// All operations can run entirely in memory for testing:
//
//	memFS := billyfs.NewInMemoryFS()
//	repo, err := gitx.Init(ctx, &gitx.Options{FS: memFS, Workdir: "."})
//
// # Error Handling
//
// The package provides sentinel errors for common conditions:
//
//	err := repo.Pull(ctx, "origin", gitx.PullFastForwardOnly)
//	if errors.Is(err, gitx.ErrNotFastForward) {
//	    // local commits exist; a merge or rebase is required
//	}
//	if errors.Is(err, gitx.ErrLocalChanges) {
//	    // uncommitted changes would be overwritten
//	}
//
// # Context Support
//
// All operations accept a context for timeout and cancellation.
//
// # Thread Safety
//
// A Repo instance is NOT safe for concurrent writes. Read operations
// (AnalyzeMerge, Log, Diff, Refs, CurrentBranch, etc.) can be called
// concurrently. Write operations (Merge, Rebase, Pull, Commit, etc.) must be
// serialized.
//
// # Limitations
//
// This package intentionally does not support:
//   - Octopus merges (more than two parents)
//   - Interactive operations (rebase -i, add -i)
//   - Rename detection during merges
//   - Direct git CLI invocation
package gitx
