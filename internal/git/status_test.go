package git_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/testhelpers"
)

func TestStatus(t *testing.T) {
	t.Run("clean tree has no entries", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		entries, err := openRepo(t, scene.Dir).Status()
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("reports modified, staged and untracked paths sorted", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.WriteFile("1_test.txt", "changed"))
		require.NoError(t, scene.Repo.CreateChange("staged", "b", false))
		require.NoError(t, scene.Repo.WriteFile("a/untracked.txt", "new"))

		entries, err := openRepo(t, scene.Dir).Status()
		require.NoError(t, err)

		var paths []string
		for _, e := range entries {
			paths = append(paths, e.Path)
		}
		require.Equal(t, []string{"1_test.txt", "a/untracked.txt", "b_test.txt"}, paths)
		require.True(t, entries[1].Untracked())
		require.False(t, entries[2].Untracked())
		require.False(t, entries[0].Conflicted())
	})

	t.Run("pathspecs filter by directory prefix", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.WriteFile("src/main.go", "package main"))
		require.NoError(t, scene.Repo.WriteFile("srcs/other.go", "package other"))
		require.NoError(t, scene.Repo.WriteFile("docs/readme.md", "hi"))
		repo := openRepo(t, scene.Dir)

		entries, err := repo.Status("src/")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "src/main.go", entries[0].Path)

		entries, err = repo.Status("docs/readme.md", "srcs")
		require.NoError(t, err)
		require.Len(t, entries, 2)

		entries, err = repo.Status("lib")
		require.NoError(t, err)
		require.Empty(t, entries)

		entries, err = repo.Status(".")
		require.NoError(t, err)
		require.Len(t, entries, 3)
	})
}

func TestStatusExcludes(t *testing.T) {
	t.Run("core.excludesFile from the global config", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", "")
		require.NoError(t, os.WriteFile(filepath.Join(home, ".gitconfig"), []byte("[core]\n\texcludesfile = ~/global-ignore\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(home, "global-ignore"), []byte("# editor junk\n.DS_Store\n*.swp\n"), 0o644))

		require.NoError(t, scene.Repo.WriteFile(".DS_Store", "x"))
		require.NoError(t, scene.Repo.WriteFile("docs/notes.swp", "x"))
		require.NoError(t, scene.Repo.WriteFile("real.txt", "x"))

		entries, err := openRepo(t, scene.Dir).Status()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "real.txt", entries[0].Path)
	})

	t.Run("default ignore file under XDG_CONFIG_HOME", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		home := t.TempDir()
		xdg := filepath.Join(home, "xdg")
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", xdg)
		require.NoError(t, os.MkdirAll(filepath.Join(xdg, "git"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(xdg, "git", "ignore"), []byte(".DS_Store\n"), 0o644))

		require.NoError(t, scene.Repo.WriteFile(".DS_Store", "x"))

		entries, err := openRepo(t, scene.Dir).Status()
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestCurrentBranch(t *testing.T) {
	t.Run("on a branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		repo := openRepo(t, scene.Dir)

		name, err := repo.CurrentBranch()
		require.NoError(t, err)
		require.Equal(t, "feature", name)

		label, err := repo.CurrentBranchLabel()
		require.NoError(t, err)
		require.Equal(t, "feature", label)
	})

	t.Run("detached HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CheckoutDetached("main"))
		repo := openRepo(t, scene.Dir)

		_, err := repo.CurrentBranch()
		require.True(t, errors.Is(err, uperrors.ErrNotOnBranch))

		label, err := repo.CurrentBranchLabel()
		require.NoError(t, err)
		require.Equal(t, git.NoBranchLabel, label)
	})

	t.Run("unborn HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		_, err := openRepo(t, scene.Dir).CurrentBranch()
		require.True(t, errors.Is(err, uperrors.ErrNotOnBranch))
	})

	t.Run("missing branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		_, err := openRepo(t, scene.Dir).BranchHash("nope")
		require.True(t, errors.Is(err, uperrors.ErrBranchNotFound))
		var notFound *uperrors.BranchNotFoundError
		require.True(t, errors.As(err, &notFound))
		require.Equal(t, "nope", notFound.BranchName)
	})
}

func TestIsBare(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	bareDir, err := scene.Repo.CreateBareRemote("origin")
	require.NoError(t, err)

	bare, err := openRepo(t, bareDir).IsBare()
	require.NoError(t, err)
	require.True(t, bare)

	bare, err = openRepo(t, scene.Dir).IsBare()
	require.NoError(t, err)
	require.False(t, bare)
}
