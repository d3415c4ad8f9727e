package main

import (
	"context"
	"os"
	"os/signal"

	"stackit.dev/uprebase/internal/cli"
	"stackit.dev/uprebase/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		tui.NewSplog().Error("%v", err)
		stop()
		os.Exit(1)
	}
}
