package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// AnnotatedCommit is a commit paired with the reference it was resolved from.
// Ref is empty when the commit was looked up by hash.
type AnnotatedCommit struct {
	Hash plumbing.Hash
	Ref  plumbing.ReferenceName
}

// String returns the reference's short name when present, otherwise the hash
func (c AnnotatedCommit) String() string {
	if c.Ref != "" {
		return c.Ref.Short()
	}
	return c.Hash.String()
}

// AnnotatedCommitFromRef resolves a reference (following symbolic refs) to the
// commit it points at. Annotated tags are peeled.
func (r *Repository) AnnotatedCommitFromRef(name plumbing.ReferenceName) (AnnotatedCommit, error) {
	ref, err := r.Reference(name, true)
	if err != nil {
		return AnnotatedCommit{}, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	hash, err := r.peelToCommit(ref.Hash())
	if err != nil {
		return AnnotatedCommit{}, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	return AnnotatedCommit{Hash: hash, Ref: name}, nil
}

// AnnotatedCommitFromBranch resolves a local branch by short name
func (r *Repository) AnnotatedCommitFromBranch(branch string) (AnnotatedCommit, error) {
	hash, err := r.BranchHash(branch)
	if err != nil {
		return AnnotatedCommit{}, err
	}
	return AnnotatedCommit{Hash: hash, Ref: plumbing.NewBranchReferenceName(branch)}, nil
}

func (r *Repository) peelToCommit(hash plumbing.Hash) (plumbing.Hash, error) {
	// Lightweight tags and branches point directly at a commit; annotated tags point at a tag object.
	cur := hash
	for range 8 {
		if _, err := r.CommitObject(cur); err == nil {
			return cur, nil
		}
		tag, err := r.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("%s is not a commit", hash)
		}
		if tag.TargetType != plumbing.CommitObject && tag.TargetType != plumbing.TagObject {
			return plumbing.ZeroHash, fmt.Errorf("%s does not point at a commit", hash)
		}
		cur = tag.Target
	}
	return plumbing.ZeroHash, errors.New("tag chain too deep")
}
