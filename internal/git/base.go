package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// BaseBranchCandidates are the local branch names tried, in order, when no
// base branch is given.
var BaseBranchCandidates = []string{"main", "master", "dev"}

// ResolveBaseBranch picks the integration branch. The first existing branch
// from BaseBranchCandidates wins; otherwise init.defaultBranch from the
// repository config is used.
//
// A candidate that exists but is not a usable branch (symbolic, or not
// pointing at a commit) is reported as an error rather than skipped.
func (r *Repository) ResolveBaseBranch() (string, error) {
	for _, name := range BaseBranchCandidates {
		ref, err := r.Reference(plumbing.NewBranchReferenceName(name), false)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read branch %s: %w", name, err)
		}
		if ref.Type() != plumbing.HashReference {
			return "", fmt.Errorf("branch %s is not a direct reference", name)
		}
		if _, err := r.CommitObject(ref.Hash()); err != nil {
			return "", fmt.Errorf("branch %s does not point at a commit: %w", name, err)
		}
		return name, nil
	}

	cfg, err := r.Config()
	if err != nil {
		return "", fmt.Errorf("failed to read repository config: %w", err)
	}
	if cfg.Init.DefaultBranch != "" {
		return cfg.Init.DefaultBranch, nil
	}

	return "", uperrors.ErrBaseBranchUndeterminable
}
