package gitx

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeMergeUpToDate(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	head := tr.headHash(t)

	analysis, err := tr.repo.AnalyzeMerge(tr.ctx, "HEAD")
	require.NoError(t, err)

	assert.True(t, analysis.Has(CapUpToDate))
	assert.False(t, analysis.Has(CapFastForward))
	assert.False(t, analysis.Has(CapNormal))
	assert.Equal(t, head, analysis.Ours)
	assert.Equal(t, head, analysis.Theirs)
}

func TestAnalyzeMergeCandidateBehind(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.createTestBranch(t, "old")
	tr.commitFile(t, "test.txt", "updated content", "Second commit")

	analysis, err := tr.repo.AnalyzeMerge(tr.ctx, "old")
	require.NoError(t, err)

	// A candidate already reachable from the tip is a no-op merge.
	assert.True(t, analysis.Has(CapUpToDate))
	assert.False(t, analysis.Has(CapFastForward))
}

func TestAnalyzeMergeFastForward(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.createTestBranch(t, "feature")
	tr.checkout(t, "feature")
	featureTip := tr.commitFile(t, "feature.txt", "feature content", "Add feature file")

	// Back on the original branch, which is now strictly behind feature.
	tr.checkout(t, "master")

	analysis, err := tr.repo.AnalyzeMerge(tr.ctx, "feature")
	require.NoError(t, err)

	assert.True(t, analysis.Has(CapFastForward))
	assert.False(t, analysis.Has(CapUpToDate))
	assert.False(t, analysis.Has(CapNormal))
	assert.Equal(t, featureTip, analysis.Theirs)
	assert.Nil(t, analysis.Base())
}

func TestAnalyzeMergeDiverged(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	base := tr.headHash(t)

	tr.createTestBranch(t, "feature")
	tr.checkout(t, "feature")
	tr.commitFile(t, "feature.txt", "feature content", "Add feature file")

	tr.checkout(t, "master")
	tr.commitFile(t, "main.txt", "main content", "Add main file")

	analysis, err := tr.repo.AnalyzeMerge(tr.ctx, "feature")
	require.NoError(t, err)

	assert.True(t, analysis.Has(CapNormal))
	assert.False(t, analysis.Has(CapFastForward))
	assert.False(t, analysis.Has(CapUpToDate))
	require.NotNil(t, analysis.Base())
	assert.Equal(t, base, analysis.Base().Hash)
}

func TestAnalyzeMergeUnbornHead(t *testing.T) {
	tr := setupTestRepo(t, false)

	// Create a commit on a side branch while the default branch stays unborn.
	tr.writeFile(t, "seed.txt", "seed")
	_, err := tr.repo.worktree.Add("seed.txt")
	require.NoError(t, err)
	sig := tr.nextSignature()
	hash, err := tr.repo.worktree.Commit("Seed commit", &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	require.NoError(t, err)

	// Park the commit on a named branch and reset HEAD to an unborn branch.
	err = tr.repo.repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("seed"), hash),
	)
	require.NoError(t, err)
	err = tr.repo.repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("unborn")),
	)
	require.NoError(t, err)

	analysis, err := tr.repo.AnalyzeMerge(tr.ctx, "seed")
	require.NoError(t, err)

	assert.True(t, analysis.Has(CapUnborn))
	assert.True(t, analysis.Has(CapFastForward))
	assert.Equal(t, plumbing.ZeroHash, analysis.Ours)
	assert.Equal(t, hash, analysis.Theirs)
}

func TestAnalyzeMergeUnrelatedHistories(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	// Build a rootless second history in the same repository.
	orphan := buildOrphanCommit(t, tr, "orphan.txt", "orphan content")

	analysis, err := tr.repo.analyzeCommits(tr.headHash(t), orphan)
	require.NoError(t, err)

	assert.True(t, analysis.Has(CapUnrelated))
	assert.False(t, analysis.Has(CapNormal))
	assert.Nil(t, analysis.Base())
}

func TestAnalyzeMergeResolveFailure(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	_, err := tr.repo.AnalyzeMerge(tr.ctx, "no-such-branch")
	assert.ErrorIs(t, err, ErrResolveFailed)

	_, err = tr.repo.AnalyzeMerge(tr.ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestMergeCapabilityString(t *testing.T) {
	tests := []struct {
		cap  MergeCapability
		want string
	}{
		{CapUpToDate, "up-to-date"},
		{CapFastForward, "fast-forward"},
		{CapNormal, "normal"},
		{CapUnborn, "unborn"},
		{CapUnrelated, "unrelated"},
		{MergeCapability(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cap.String())
	}
}

func TestMergeCandidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		remotes []string
		want    string
	}{
		{"feature", []string{"origin"}, "feature"},
		{"origin/main", []string{"origin"}, "main"},
		{"upstream/dev", []string{"origin", "upstream"}, "dev"},
		{"origin/nested/branch", []string{"origin"}, "nested/branch"},
		{"unknown/main", []string{"origin"}, "unknown/main"},
	}

	for _, tt := range tests {
		c := mergeCandidate{name: tt.name}
		assert.Equal(t, tt.want, c.displayName(tt.remotes), "candidate %q", tt.name)
	}
}
