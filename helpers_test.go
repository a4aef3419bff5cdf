package gitx

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/require"
)

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo *Repo
	fs   fs.Filesystem
	ctx  context.Context

	// clock makes commit timestamps strictly increasing within a test.
	clock time.Time
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T, bare bool) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	opts := Options{
		FS:       memFS,
		Bare:     bare,
		Workdir:  ".",
		Identity: StaticIdentity{Name: "Test User", Email: "test@example.com"},
	}

	repo, err := Init(ctx, &opts)
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{
		repo:  repo,
		fs:    memFS,
		ctx:   ctx,
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// setupTestRepoWithCommit creates a test repository with an initial commit
func setupTestRepoWithCommit(t *testing.T) *testRepo {
	t.Helper()

	tr := setupTestRepo(t, false)
	tr.commitFile(t, "test.txt", "initial content", "Initial commit")

	return tr
}

// nextSignature returns a deterministic signature with a strictly
// increasing timestamp.
func (tr *testRepo) nextSignature() *object.Signature {
	tr.clock = tr.clock.Add(time.Minute)
	return &object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  tr.clock,
	}
}

// writeFile writes content to a file in the test filesystem
func (tr *testRepo) writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := tr.fs.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err, "failed to write file: %s", path)
}

// commitFile writes a file, stages it, and commits it, returning the new hash
func (tr *testRepo) commitFile(t *testing.T, path, content, message string) plumbing.Hash {
	t.Helper()

	tr.writeFile(t, path, content)

	_, err := tr.repo.worktree.Add(path)
	require.NoError(t, err, "failed to stage file: %s", path)

	sig := tr.nextSignature()
	hash, err := tr.repo.worktree.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	require.NoError(t, err, "failed to commit file: %s", path)

	return hash
}

// removeAndCommit removes a file and commits the removal
func (tr *testRepo) removeAndCommit(t *testing.T, path, message string) plumbing.Hash {
	t.Helper()

	_, err := tr.repo.worktree.Remove(path)
	require.NoError(t, err, "failed to remove file: %s", path)

	sig := tr.nextSignature()
	hash, err := tr.repo.worktree.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	require.NoError(t, err, "failed to commit removal: %s", path)

	return hash
}

// createTestBranch creates a branch at the current HEAD
func (tr *testRepo) createTestBranch(t *testing.T, branchName string) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	branchRef := plumbing.NewBranchReferenceName(branchName)
	newRef := plumbing.NewHashReference(branchRef, head.Hash())
	err = tr.repo.repo.Storer.SetReference(newRef)
	require.NoError(t, err, "failed to create branch reference")
}

// createRemoteBranchAt creates a remote-tracking reference at the given hash
func (tr *testRepo) createRemoteBranchAt(t *testing.T, remoteName, branchName string, hash plumbing.Hash) {
	t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remoteName, branchName), hash)
	err := tr.repo.repo.Storer.SetReference(ref)
	require.NoError(t, err, "failed to create remote branch reference")
}

// checkout switches to the named branch
func (tr *testRepo) checkout(t *testing.T, branchName string) {
	t.Helper()

	err := tr.repo.worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
	})
	require.NoError(t, err, "failed to checkout branch: %s", branchName)
}

// headHash returns the current HEAD commit hash
func (tr *testRepo) headHash(t *testing.T) plumbing.Hash {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	return head.Hash()
}

// headCommit returns the current HEAD commit object
func (tr *testRepo) headCommit(t *testing.T) *object.Commit {
	t.Helper()

	commit, err := tr.repo.repo.CommitObject(tr.headHash(t))
	require.NoError(t, err, "failed to read HEAD commit")

	return commit
}

// readFile reads a file's content from the test filesystem
func (tr *testRepo) readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := tr.fs.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)

	return string(content)
}

// buildOrphanCommit writes a rootless commit directly into the object store,
// creating a second history unrelated to the repository's existing commits.
func buildOrphanCommit(t *testing.T, tr *testRepo, path, content string) plumbing.Hash {
	t.Helper()

	storer := tr.repo.repo.Storer

	blobObj := storer.NewEncodedObject()
	blobObj.SetType(plumbing.BlobObject)
	writer, err := blobObj.Writer()
	require.NoError(t, err, "failed to open blob writer")
	_, err = writer.Write([]byte(content))
	require.NoError(t, err, "failed to write blob content")
	require.NoError(t, writer.Close(), "failed to close blob writer")
	blobHash, err := storer.SetEncodedObject(blobObj)
	require.NoError(t, err, "failed to store blob")

	tree := &object.Tree{Entries: []object.TreeEntry{
		{Name: path, Mode: filemode.Regular, Hash: blobHash},
	}}
	treeObj := storer.NewEncodedObject()
	require.NoError(t, tree.Encode(treeObj), "failed to encode tree")
	treeHash, err := storer.SetEncodedObject(treeObj)
	require.NoError(t, err, "failed to store tree")

	sig := tr.nextSignature()
	commit := &object.Commit{
		Author:    *sig,
		Committer: *sig,
		Message:   "Orphan commit",
		TreeHash:  treeHash,
	}
	commitObj := storer.NewEncodedObject()
	require.NoError(t, commit.Encode(commitObj), "failed to encode commit")
	commitHash, err := storer.SetEncodedObject(commitObj)
	require.NoError(t, err, "failed to store commit")

	return commitHash
}

// memoryFetcher is a Fetcher that syncs remote-tracking refs from another
// in-memory repository, standing in for network transport in tests.
type memoryFetcher struct {
	local  *Repo
	remote *Repo
}

// Fetch copies all objects reachable from the remote's branches and tags into
// the local repository and updates refs/remotes/<remote>/*.
func (f *memoryFetcher) Fetch(ctx context.Context, remote string, prune bool, depth int) error {
	remoteRefs, err := f.remote.repo.References()
	if err != nil {
		return err
	}

	return remoteRefs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsBranch() && !ref.Name().IsTag() {
			return nil
		}

		commit, err := f.remote.repo.CommitObject(ref.Hash())
		if err == nil {
			if err := copyObjectsFromCommit(f.remote, f.local, commit); err != nil {
				return err
			}
		}

		trackingName := plumbing.NewRemoteReferenceName(remote, ref.Name().Short())
		return f.local.repo.Storer.SetReference(plumbing.NewHashReference(trackingName, ref.Hash()))
	})
}

// copyObjectsFromCommit copies a commit, its tree, and its ancestry from one
// repository's storer into another's.
func copyObjectsFromCommit(from, to *Repo, commit *object.Commit) error {
	obj := from.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return err
	}
	if _, err := to.repo.Storer.SetEncodedObject(obj); err != nil {
		return err
	}

	tree, err := commit.Tree()
	if err != nil {
		return err
	}
	if err := copyTree(from, to, tree); err != nil {
		return err
	}

	return commit.Parents().ForEach(func(parent *object.Commit) error {
		if _, err := to.repo.CommitObject(parent.Hash); err == nil {
			return nil // already present
		}
		return copyObjectsFromCommit(from, to, parent)
	})
}

// copyTree recursively copies a tree and all its contents
func copyTree(from, to *Repo, tree *object.Tree) error {
	obj := from.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return err
	}
	if _, err := to.repo.Storer.SetEncodedObject(obj); err != nil {
		return err
	}

	for _, entry := range tree.Entries {
		if entry.Mode.IsFile() {
			if err := copyBlob(from, to, entry.Hash); err != nil {
				return err
			}
			continue
		}

		subtree, err := from.repo.TreeObject(entry.Hash)
		if err != nil {
			return err
		}
		if err := copyTree(from, to, subtree); err != nil {
			return err
		}
	}
	return nil
}

// copyBlob copies a single blob object between repositories
func copyBlob(from, to *Repo, hash plumbing.Hash) error {
	blob, err := object.GetBlob(from.repo.Storer, hash)
	if err != nil {
		return err
	}

	obj := from.repo.Storer.NewEncodedObject()
	if err := blob.Encode(obj); err != nil {
		return err
	}
	_, err = to.repo.Storer.SetEncodedObject(obj)
	return err
}

// setupPullPair creates a local/remote repository pair wired through a
// memoryFetcher. The remote carries one initial commit; the local repo has it
// checked out on a tracking branch.
func setupPullPair(t *testing.T) (local, remote *testRepo) {
	t.Helper()

	remote = setupTestRepoWithCommit(t)

	remoteBranch, err := remote.repo.CurrentBranch(remote.ctx)
	require.NoError(t, err, "failed to get remote branch name")

	local = setupTestRepo(t, false)
	local.repo.options.Fetcher = &memoryFetcher{local: local.repo, remote: remote.repo}

	_, err = local.repo.repo.CreateRemote(&config.RemoteConfig{
		Name: DefaultRemoteName,
		URLs: []string{"file://."},
	})
	require.NoError(t, err, "failed to create remote")

	err = local.repo.Fetch(local.ctx, DefaultRemoteName, false, 0)
	require.NoError(t, err, "failed to fetch from in-memory remote")

	err = local.repo.CheckoutRemoteBranch(local.ctx, DefaultRemoteName, remoteBranch, "")
	require.NoError(t, err, "failed to checkout tracking branch")

	return local, remote
}
