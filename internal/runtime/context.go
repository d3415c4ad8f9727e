package runtime

import (
	"context"
	"fmt"

	"stackit.dev/uprebase/internal/config"
	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/tui"
)

// Context provides access to the repository and output for commands
type Context struct {
	Context  context.Context
	Repo     *git.Repository
	Splog    *tui.Splog
	Settings config.Settings
}

// NewContext creates a context around an already opened repository
func NewContext(ctx context.Context, repo *git.Repository, splog *tui.Splog, settings config.Settings) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if splog == nil {
		splog = tui.NewSplog()
	}
	return &Context{
		Context:  ctx,
		Repo:     repo,
		Splog:    splog,
		Settings: settings,
	}
}

// GetContext opens the repository at path and builds a context for it
func GetContext(ctx context.Context, path string, splog *tui.Splog, settings config.Settings) (*Context, error) {
	repo, err := git.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return NewContext(ctx, repo, splog, settings), nil
}
