package sync

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/runtime"
)

// rebaseCurrent replays the checked-out branch onto base and moves the
// worktree to the new tip
func rebaseCurrent(ctx *runtime.Context, current, base string) (*git.RebaseResult, error) {
	repo := ctx.Repo

	branch, err := repo.AnnotatedCommitFromBranch(current)
	if err != nil {
		return nil, err
	}
	upstream, err := repo.AnnotatedCommitFromBranch(base)
	if err != nil {
		return nil, err
	}

	ctx.Splog.Debug("Rebasing %s (%s) onto %s (%s)", current, branch.Hash, base, upstream.Hash)
	result, err := repo.Rebase(branch, upstream, git.RebaseOptions{})
	if err != nil {
		return nil, err
	}

	if err := checkoutRebased(ctx, current, branch.Hash, result.Head); err != nil {
		return nil, err
	}
	return result, nil
}

// checkoutRebased moves the worktree of the checked-out branch from oldTip to
// newTip. If local changes outside the checked pathspecs are in the way, the
// branch is put back on oldTip and the worktree is left alone.
func checkoutRebased(ctx *runtime.Context, branch string, oldTip, newTip plumbing.Hash) error {
	repo := ctx.Repo

	err := repo.UpdateWorktree(oldTip, newTip)
	if err == nil || !errors.Is(err, uperrors.ErrDirtyWorktree) {
		return err
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), oldTip)
	if rerr := repo.Storer.SetReference(ref); rerr != nil {
		return fmt.Errorf("%w (failed to restore %s: %v)", err, branch, rerr)
	}
	ctx.Splog.Warn("Local changes block the rebased %s; left it at %s.", branch, shortHash(oldTip))
	return err
}
