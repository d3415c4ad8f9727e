package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stackit.dev/uprebase/internal/actions/sync"
	"stackit.dev/uprebase/internal/config"
	uperrors "stackit.dev/uprebase/internal/errors"
	"stackit.dev/uprebase/internal/runtime"
	"stackit.dev/uprebase/internal/tui"
)

// newSyncCmd creates the sync command
func newSyncCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [pathspec...]",
		Short: "Update the base branch from its remote and rebase the current branch onto it",
		Long: `Fetch the base branch from the remote, rebase the local base branch onto it,
then rebase the current branch onto the updated base.
Nothing is changed when the working tree (limited to the pathspecs, if any) is dirty.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, v, opts)
		},
	}
}

func runSync(cmd *cobra.Command, pathspecs []string, v *viper.Viper, opts *rootOptions) error {
	settings := config.FromViper(v)

	splog, err := tui.NewSplogWithConfig(cmd.OutOrStdout(), settings.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = splog.Close() }()

	ctx, err := runtime.GetContext(cmd.Context(), opts.gitDir, splog, settings)
	if err != nil {
		return err
	}

	label, err := ctx.Repo.CurrentBranchLabel()
	if err != nil {
		return err
	}
	splog.Info("Current branch: %s", tui.ColorBranchName(label, true))

	progress := tui.NewFetchProgress(cmd.ErrOrStderr())
	summary, err := sync.Action(ctx, sync.Options{
		Base:        settings.Base,
		Remote:      settings.Remote,
		Credentials: settings.Credentials(),
		Pathspecs:   pathspecs,
		Progress:    progress.Update,
	})
	if err != nil {
		splog.Debug("sync failed: %v", err)
		printTip(splog, summary, err)
		return err
	}

	splog.Info("%s", summary.String())
	return nil
}

// printTip suggests a next step for the errors a user can act on. summary is
// set when the base branch was already updated before err.
func printTip(splog *tui.Splog, summary *sync.Summary, err error) {
	switch {
	case errors.Is(err, uperrors.ErrDirtyWorktree):
		splog.Tip("Commit or stash your changes, or pass pathspecs to limit the check.")
	case errors.Is(err, uperrors.ErrRebaseConflict) && summary != nil:
		splog.Tip("%s was updated from %s/%s but %s was left as it was. Rebase it onto %s by hand to resolve the conflict.",
			summary.BaseBranch, summary.Remote, summary.BaseBranch, summary.CurrentBranch, summary.BaseBranch)
	case errors.Is(err, uperrors.ErrRebaseConflict):
		splog.Tip("Nothing was rewritten. Rebase by hand to resolve the conflict.")
	case errors.Is(err, uperrors.ErrBaseBranchUndeterminable):
		splog.Tip("Set it once with `base:` in $HOME/.uprebase.yaml or UPREBASE_BASE.")
	case errors.Is(err, uperrors.ErrNoIdentity):
		splog.Tip("git config --global user.name \"Your Name\" && git config --global user.email you@example.com")
	}
}
