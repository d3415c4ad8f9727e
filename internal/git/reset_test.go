package git_test

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/testhelpers"
)

// movedBranchScene builds main at a and a "next" branch that edits a.txt,
// adds b.txt and removes 1_test.txt. main stays checked out.
func movedBranchScene(t *testing.T) (*testhelpers.Scene, plumbing.Hash, plumbing.Hash) {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.Repo.CommitFile("a.txt", "one\n", "add a"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("next"))
	require.NoError(t, scene.Repo.CommitFile("a.txt", "two\n", "edit a"))
	require.NoError(t, scene.Repo.CommitFile("b.txt", "bee\n", "add b"))
	require.NoError(t, scene.Repo.RunGitCommand("rm", "-q", "1_test.txt"))
	require.NoError(t, scene.Repo.RunGitCommand("commit", "-m", "drop test file"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))

	from := hashOf(t, testhelpers.Must(scene.Repo.GetRevision("main")))
	to := hashOf(t, testhelpers.Must(scene.Repo.GetRevision("next")))
	return scene, from, to
}

func TestUpdateWorktree(t *testing.T) {
	t.Run("rewrites only the changed paths", func(t *testing.T) {
		scene, from, to := movedBranchScene(t)
		require.NoError(t, scene.Repo.WriteFile("scratch.txt", "keep me\n"))
		repo := openRepo(t, scene.Dir)
		require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), to)))

		require.NoError(t, repo.UpdateWorktree(from, to))

		require.Equal(t, "two\n", testhelpers.Must(scene.Repo.ReadFile("a.txt")))
		require.Equal(t, "bee\n", testhelpers.Must(scene.Repo.ReadFile("b.txt")))
		_, err := scene.Repo.ReadFile("1_test.txt")
		require.Error(t, err)
		require.Equal(t, "keep me\n", testhelpers.Must(scene.Repo.ReadFile("scratch.txt")))

		entries, err := repo.Status()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "scratch.txt", entries[0].Path)
		require.True(t, entries[0].Untracked())
	})

	t.Run("local changes on a changed path block the update", func(t *testing.T) {
		scene, from, to := movedBranchScene(t)
		require.NoError(t, scene.Repo.WriteFile("a.txt", "mine\n"))
		require.NoError(t, scene.Repo.WriteFile("b.txt", "also mine\n"))
		repo := openRepo(t, scene.Dir)

		err := repo.UpdateWorktree(from, to)
		require.True(t, errors.Is(err, uperrors.ErrDirtyWorktree))
		var dirty *uperrors.DirtyWorktreeError
		require.True(t, errors.As(err, &dirty))
		require.Equal(t, []string{"a.txt", "b.txt"}, dirty.Paths)

		require.Equal(t, "mine\n", testhelpers.Must(scene.Repo.ReadFile("a.txt")))
		require.Equal(t, "1", testhelpers.Must(scene.Repo.ReadFile("1_test.txt")))
	})

	t.Run("staged change on a changed path blocks after the ref moved", func(t *testing.T) {
		scene, from, to := movedBranchScene(t)
		require.NoError(t, scene.Repo.WriteFile("a.txt", "staged\n"))
		require.NoError(t, scene.Repo.RunGitCommand("add", "a.txt"))
		require.NoError(t, scene.Repo.WriteFile("a.txt", "one\n"))
		repo := openRepo(t, scene.Dir)
		require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), to)))

		var dirty *uperrors.DirtyWorktreeError
		require.True(t, errors.As(repo.UpdateWorktree(from, to), &dirty))
		require.Equal(t, []string{"a.txt"}, dirty.Paths)
	})

	t.Run("same commit is a no-op", func(t *testing.T) {
		scene, from, _ := movedBranchScene(t)
		require.NoError(t, scene.Repo.WriteFile("a.txt", "mine\n"))

		require.NoError(t, openRepo(t, scene.Dir).UpdateWorktree(from, from))
		require.Equal(t, "mine\n", testhelpers.Must(scene.Repo.ReadFile("a.txt")))
	})
}
