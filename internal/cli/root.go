package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stackit.dev/uprebase/internal/config"
	"stackit.dev/uprebase/internal/tui"
)

// rootOptions holds flags shared by every command
type rootOptions struct {
	cfgFile string
	gitDir  string
}

// NewRootCmd creates the root cobra command. Running it without a
// subcommand performs a sync.
func NewRootCmd(version, commit, date string) *cobra.Command {
	v := config.New()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "uprebase [pathspec...]",
		Short: "Update the base branch from its remote and rebase the current branch onto it",
		Long: `uprebase fetches the base branch (main, master or dev unless told otherwise)
from a remote, rebases the local base branch onto what was fetched, then
rebases the current branch onto the updated base.

The working tree must be clean. Pathspecs limit that check to the given paths.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.Load(v, opts.cfgFile); err != nil {
				return err
			}
			if v.GetBool(config.KeyNoColor) {
				tui.DisableColor()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, v, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.uprebase.yaml)")
	flags.StringVar(&opts.gitDir, "git-dir", ".", "path inside the repository to operate on")
	flags.String("base", "", "base branch to update (default: main, master, dev or init.defaultBranch)")
	flags.String("remote", config.DefaultRemote, "remote to fetch the base branch from")
	flags.String("key", "", "ssh private key (default $HOME/.ssh/id_rsa)")
	flags.String("passphrase", "", "passphrase for the ssh private key")
	flags.Bool("insecure-ignore-host-key", false, "skip ssh host key verification")
	flags.Bool("no-color", false, "disable colored output")

	bindFlags(v, rootCmd, map[string]string{
		config.KeyBase:                  "base",
		config.KeyRemote:                "remote",
		config.KeySSHKey:                "key",
		config.KeySSHPassphrase:         "passphrase",
		config.KeyInsecureIgnoreHostKey: "insecure-ignore-host-key",
		config.KeyNoColor:               "no-color",
	})

	rootCmd.AddCommand(newSyncCmd(v, opts))
	rootCmd.AddCommand(newLogCmd(v, opts))

	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		// Lookup cannot fail for flags registered above
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}
