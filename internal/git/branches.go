package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// NoBranchLabel is shown in place of a branch name when HEAD is detached or unborn
const NoBranchLabel = "HEAD (no branch)"

// CurrentBranch returns the short name of the checked out branch.
// A detached or unborn HEAD yields ErrNotOnBranch.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("%w: HEAD is unborn", uperrors.ErrNotOnBranch)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("%w: HEAD is detached at %s", uperrors.ErrNotOnBranch, head.Hash())
	}

	return head.Name().Short(), nil
}

// CurrentBranchLabel returns the current branch name, or NoBranchLabel when
// HEAD does not point at a branch.
func (r *Repository) CurrentBranchLabel() (string, error) {
	name, err := r.CurrentBranch()
	if errors.Is(err, uperrors.ErrNotOnBranch) {
		return NoBranchLabel, nil
	}
	return name, err
}

// BranchHash returns the commit a local branch points at
func (r *Repository) BranchHash(name string) (plumbing.Hash, error) {
	ref, err := r.Reference(plumbing.NewBranchReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, uperrors.NewBranchNotFoundError(name)
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read branch %s: %w", name, err)
	}
	if ref.Type() != plumbing.HashReference {
		return plumbing.ZeroHash, fmt.Errorf("branch %s is a symbolic reference", name)
	}
	return ref.Hash(), nil
}

