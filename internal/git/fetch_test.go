package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/testhelpers"
)

// upstreamScene returns a repository whose origin has one commit more on
// main than the local copy, plus the sha of that commit
func upstreamScene(t *testing.T) (*testhelpers.Scene, *testhelpers.GitRepo, string) {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	url := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("remote", "get-url", "origin"))

	other := scene.Clone(t, url, "other")
	require.NoError(t, other.CommitFile("b.txt", "upstream\n", "upstream change"))
	require.NoError(t, other.PushBranch("origin", "main"))
	return scene, other, testhelpers.Must(other.GetRevision("main"))
}

func TestFetch(t *testing.T) {
	t.Run("moves the tracking ref and FETCH_HEAD only", func(t *testing.T) {
		scene, _, upstreamTip := upstreamScene(t)
		localTip := testhelpers.Must(scene.Repo.GetRevision("main"))
		repo := openRepo(t, scene.Dir)

		var updates []git.TransferStats
		result, err := repo.Fetch(context.Background(), git.FetchOptions{
			Remote:   "origin",
			Branch:   "main",
			Progress: func(s git.TransferStats) { updates = append(updates, s) },
		})
		require.NoError(t, err)
		require.False(t, result.UpToDate)
		require.Equal(t, upstreamTip, result.Commit.Hash.String())
		require.Equal(t, plumbing.NewRemoteReferenceName("origin", "main"), result.Commit.Ref)

		require.Equal(t, upstreamTip, testhelpers.Must(scene.Repo.GetRevision("origin/main")))
		require.Equal(t, upstreamTip, testhelpers.Must(scene.Repo.GetRevision("FETCH_HEAD")))
		require.Equal(t, localTip, testhelpers.Must(scene.Repo.GetRevision("main")))

		require.NotEmpty(t, updates)
		require.Equal(t, git.PhaseDone, updates[len(updates)-1].Phase)
		require.Equal(t, git.PhaseDone, result.Stats.Phase)

		fetchHead, err := repo.ResolveFetchHead()
		require.NoError(t, err)
		require.Equal(t, upstreamTip, fetchHead.Hash.String())
		require.Equal(t, git.FetchHead, fetchHead.Ref)
	})

	t.Run("second fetch is up to date", func(t *testing.T) {
		scene, _, upstreamTip := upstreamScene(t)
		repo := openRepo(t, scene.Dir)
		opts := git.FetchOptions{Remote: "origin", Branch: "main"}

		_, err := repo.Fetch(context.Background(), opts)
		require.NoError(t, err)

		result, err := repo.Fetch(context.Background(), opts)
		require.NoError(t, err)
		require.True(t, result.UpToDate)
		require.Equal(t, upstreamTip, result.Commit.Hash.String())
	})

	t.Run("brings tags along", func(t *testing.T) {
		scene, other, upstreamTip := upstreamScene(t)
		require.NoError(t, other.CreateTag("v1.0", "first release"))
		require.NoError(t, other.CreateTag("nightly", ""))
		require.NoError(t, other.PushTags("origin"))
		repo := openRepo(t, scene.Dir)

		_, err := repo.Fetch(context.Background(), git.FetchOptions{Remote: "origin", Branch: "main"})
		require.NoError(t, err)

		for _, tag := range []string{"v1.0", "nightly"} {
			c, err := repo.AnnotatedCommitFromRef(plumbing.NewTagReferenceName(tag))
			require.NoError(t, err, tag)
			require.Equal(t, upstreamTip, c.Hash.String(), tag)
		}
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		_, err := openRepo(t, scene.Dir).Fetch(context.Background(), git.FetchOptions{Remote: "upstream", Branch: "main"})
		require.True(t, errors.Is(err, uperrors.ErrRemoteNotFound))
	})

	t.Run("branch missing on the remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		repo := openRepo(t, scene.Dir)

		_, err := repo.Fetch(context.Background(), git.FetchOptions{Remote: "origin", Branch: "develop"})
		require.True(t, errors.Is(err, uperrors.ErrBranchNotFound))

		_, err = repo.Reference(git.FetchHead, false)
		require.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
	})

	t.Run("unreachable remote surfaces the transport error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.RunGitCommand("remote", "add", "gone", scene.Dir+"-missing.git"))

		_, err := openRepo(t, scene.Dir).Fetch(context.Background(), git.FetchOptions{Remote: "gone", Branch: "main"})
		require.Error(t, err)
		var transportErr *uperrors.TransportError
		require.True(t, errors.As(err, &transportErr))
		require.Equal(t, "gone", transportErr.Remote)
	})
}
