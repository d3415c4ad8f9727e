package cli

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stackit.dev/uprebase/internal/config"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/runtime"
)

// newLogCmd creates the log command
func newLogCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:     "log [ref]",
		Short:   "List the non-root commits reachable from a ref, newest first",
		Aliases: []string{"l"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := runtime.GetContext(cmd.Context(), opts.gitDir, nil, config.FromViper(v))
			if err != nil {
				return err
			}

			ref := plumbing.HEAD
			if len(args) == 1 && args[0] != "HEAD" {
				ref, err = ctx.Repo.ExpandRef(args[0])
				if err != nil {
					return err
				}
			}

			commits, err := ctx.Repo.Log(ref, limit)
			if err != nil {
				return err
			}

			commitFormat := git.CommitFormat(strings.ToUpper(format))
			for _, c := range commits {
				line, err := git.FormatCommit(c, commitFormat)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only show this many commits")
	cmd.Flags().StringVar(&format, "format", string(git.FormatReadable), "One of SHA, READABLE, MESSAGE, SUBJECT")

	return cmd
}
