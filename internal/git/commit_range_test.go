package git_test

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/testhelpers"
)

func TestLog(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)
	require.NoError(t, scene.Repo.CreateChangeAndCommit("first", "1"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("second", "2"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("third", "3"))
	repo := openRepo(t, scene.Dir)
	main := plumbing.NewBranchReferenceName("main")

	commits, err := repo.Log(main, 0)
	require.NoError(t, err)
	var subjects []string
	for _, c := range commits {
		s, err := git.FormatCommit(c, git.FormatSubject)
		require.NoError(t, err)
		subjects = append(subjects, s)
	}
	require.ElementsMatch(t, []string{"second", "third"}, subjects)

	commits, err = repo.Log(main, 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)

	_, err = repo.Log(plumbing.NewBranchReferenceName("nope"), 0)
	require.Error(t, err)
}

func TestExpandRef(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	require.NoError(t, scene.Repo.CreateTag("v1.0", ""))
	require.NoError(t, scene.Repo.RunGitCommand("fetch", "origin"))
	repo := openRepo(t, scene.Dir)

	tests := []struct {
		name string
		want plumbing.ReferenceName
	}{
		{"HEAD", plumbing.HEAD},
		{"main", "refs/heads/main"},
		{"v1.0", "refs/tags/v1.0"},
		{"origin/main", "refs/remotes/origin/main"},
		{"refs/heads/main", "refs/heads/main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExpandRef(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := repo.ExpandRef("nope")
	require.True(t, errors.Is(err, plumbing.ErrReferenceNotFound))
}

func TestFormatCommit(t *testing.T) {
	commit := &object.Commit{
		Hash:    plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"),
		Message: "Fix the widget\n\nIt was broken.\n",
	}

	tests := []struct {
		format git.CommitFormat
		want   string
	}{
		{git.FormatSHA, "0123456789abcdef0123456789abcdef01234567"},
		{git.FormatReadable, "0123456 - Fix the widget"},
		{git.FormatMessage, "Fix the widget\n\nIt was broken."},
		{git.FormatSubject, "Fix the widget"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := git.FormatCommit(commit, tt.format)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := git.FormatCommit(commit, "FANCY")
	require.ErrorContains(t, err, "unknown commit format")
}
