package sync

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/runtime"
	"stackit.dev/uprebase/internal/tui"
)

// syncBase fetches the base branch and rebases the local copy onto it
func syncBase(ctx *runtime.Context, opts *Options, summary *Summary) (plumbing.Hash, error) {
	repo := ctx.Repo
	splog := ctx.Splog
	base := summary.BaseBranch

	splog.Info("Fetching %s from %s...", tui.ColorBranchName(base, false), summary.Remote)
	fetched, err := repo.Fetch(ctx.Context, git.FetchOptions{
		Remote:      summary.Remote,
		Branch:      base,
		Credentials: opts.Credentials,
		Progress:    opts.Progress,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to fetch %s: %w", base, err)
	}
	if fetched.UpToDate {
		splog.Debug("%s/%s already up to date", summary.Remote, base)
	}

	local, err := repo.AnnotatedCommitFromBranch(base)
	var notFound *uperrors.BranchNotFoundError
	if errors.As(err, &notFound) {
		// No local copy yet: start it at the fetched tip
		ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(base), fetched.Commit.Hash)
		if err := repo.Storer.SetReference(ref); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to create %s: %w", base, err)
		}
		splog.Info("Created %s at %s.", tui.ColorBranchName(base, false), tui.ColorDim(shortHash(fetched.Commit.Hash)))
		return fetched.Commit.Hash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}

	result, err := repo.Rebase(local, fetched.Commit, git.RebaseOptions{})
	if err != nil {
		return plumbing.ZeroHash, err
	}

	isCurrent := summary.CurrentBranch == base
	if result.Head == local.Hash {
		splog.Info("%s is up to date.", tui.ColorBranchName(base, isCurrent))
		return result.Head, nil
	}

	if isCurrent {
		if err := checkoutRebased(ctx, base, local.Hash, result.Head); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	splog.Info("%s rebased onto %s/%s at %s.",
		tui.ColorBranchName(base, isCurrent),
		summary.Remote, base,
		tui.ColorDim(shortHash(result.Head)))

	return result.Head, nil
}
