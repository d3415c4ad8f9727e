package sync

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/runtime"
	"stackit.dev/uprebase/internal/tui"
	"stackit.dev/uprebase/internal/utils"
)

// Options contains options for the sync command
type Options struct {
	// Base is the branch to update from the remote. Resolved from the
	// repository when empty.
	Base string
	// Remote defaults to the configured remote, then "origin"
	Remote      string
	Credentials git.CredentialProvider
	// Pathspecs limit the clean-worktree check. Empty checks the whole tree.
	Pathspecs []string
	Progress  git.ProgressFunc
}

// Summary describes a completed sync
type Summary struct {
	Remote        string
	BaseBranch    string
	CurrentBranch string
	BaseTip       plumbing.Hash
	BranchTip     plumbing.Hash
	// Replayed counts commits rewritten on the current branch
	Replayed int
}

func (s *Summary) String() string {
	if s.CurrentBranch == s.BaseBranch {
		return fmt.Sprintf("Rebased %s onto %s/%s (now at %s).",
			s.BaseBranch, s.Remote, s.BaseBranch, shortHash(s.BaseTip))
	}
	return fmt.Sprintf("Rebased %s onto %s/%s, then %s onto %s (now at %s).",
		s.BaseBranch, s.Remote, s.BaseBranch, s.CurrentBranch, s.BaseBranch, shortHash(s.BranchTip))
}

// Action brings the base branch up to date with its remote counterpart and
// replays the current branch on top of it. Nothing is written before the
// bare, detached and dirty checks pass. A failure while rebasing the current
// branch leaves the already updated base in place; the partial summary is
// returned alongside the error so callers can report it.
func Action(ctx *runtime.Context, opts Options) (*Summary, error) {
	repo := ctx.Repo
	splog := ctx.Splog

	if opts.Base != "" {
		if err := utils.ValidateBranchName(opts.Base); err != nil {
			return nil, fmt.Errorf("invalid base branch: %w", err)
		}
	}

	bare, err := repo.IsBare()
	if err != nil {
		return nil, err
	}
	if bare {
		return nil, uperrors.ErrBareRepository
	}

	current, err := repo.CurrentBranch()
	if err != nil {
		return nil, err
	}

	dirty, err := repo.Status(opts.Pathspecs...)
	if err != nil {
		return nil, err
	}
	if len(dirty) > 0 {
		paths := make([]string, len(dirty))
		for i, e := range dirty {
			paths[i] = e.Path
		}
		return nil, uperrors.NewDirtyWorktreeError(paths)
	}

	base := opts.Base
	if base == "" {
		base, err = repo.ResolveBaseBranch()
		if err != nil {
			return nil, err
		}
		splog.Debug("Resolved base branch %s", base)
	}

	remote := opts.Remote
	if remote == "" {
		remote = ctx.Settings.Remote
	}
	if remote == "" {
		remote = "origin"
	}

	summary := &Summary{Remote: remote, BaseBranch: base, CurrentBranch: current}

	baseTip, err := syncBase(ctx, &opts, summary)
	if err != nil {
		return nil, err
	}
	summary.BaseTip = baseTip
	summary.BranchTip = baseTip

	if current == base {
		return summary, nil
	}

	result, err := rebaseCurrent(ctx, current, base)
	if err != nil {
		return summary, err
	}
	summary.BranchTip = result.Head
	summary.Replayed = len(result.Replayed)

	splog.Info("%s rebased onto %s (%d replayed, %d skipped).",
		tui.ColorBranchName(current, true),
		tui.ColorBranchName(base, false),
		len(result.Replayed), len(result.Skipped))

	return summary, nil
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:7]
}
