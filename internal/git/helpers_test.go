package git_test

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"stackit.dev/uprebase/internal/git"
)

func openRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()
	repo, err := git.OpenRepository(dir)
	require.NoError(t, err)
	return repo
}

func branchCommit(t *testing.T, repo *git.Repository, name string) git.AnnotatedCommit {
	t.Helper()
	c, err := repo.AnnotatedCommitFromBranch(name)
	require.NoError(t, err)
	return c
}

func hashOf(t *testing.T, sha string) plumbing.Hash {
	t.Helper()
	h := plumbing.NewHash(sha)
	require.False(t, h.IsZero(), "invalid sha %q", sha)
	return h
}
