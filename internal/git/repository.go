package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	path string
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		// No .git above absPath; it may be a bare repository itself.
		repo, err = gogit.PlainOpen(absPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       absPath,
	}, nil
}

// NewRepository wraps an already opened go-git repository
func NewRepository(repo *gogit.Repository, path string) *Repository {
	return &Repository{Repository: repo, path: path}
}

// Path returns the path the repository was opened from
func (r *Repository) Path() string {
	return r.path
}

// IsBare reports whether the repository has no working tree
func (r *Repository) IsBare() (bool, error) {
	_, err := r.Worktree()
	if errors.Is(err, gogit.ErrIsBareRepository) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	return false, nil
}

// DefaultSignature builds a signature from user.name and user.email, looking at
// the repository config first and then the user's global config.
func (r *Repository) DefaultSignature() (object.Signature, error) {
	cfg, err := r.ConfigScoped(config.GlobalScope)
	if err != nil {
		return object.Signature{}, fmt.Errorf("failed to read config: %w", err)
	}
	if cfg.User.Name == "" || cfg.User.Email == "" {
		return object.Signature{}, uperrors.ErrNoIdentity
	}
	return object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  time.Now(),
	}, nil
}
