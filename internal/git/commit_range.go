package git

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitFormat selects how Log renders each commit
type CommitFormat string

const (
	FormatSHA      CommitFormat = "SHA"
	FormatReadable CommitFormat = "READABLE"
	FormatMessage  CommitFormat = "MESSAGE"
	FormatSubject  CommitFormat = "SUBJECT"
)

// Log returns the commits reachable from ref, newest first by committer time.
// Root commits are left out. A limit of zero means no limit.
func (r *Repository) Log(ref plumbing.ReferenceName, limit int) ([]*object.Commit, error) {
	start, err := r.AnnotatedCommitFromRef(ref)
	if err != nil {
		return nil, err
	}

	iter, err := r.Repository.Log(&gogit.LogOptions{
		From:  start.Hash,
		Order: gogit.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", ref.Short(), err)
	}
	defer iter.Close()

	var commits []*object.Commit
	for limit == 0 || len(commits) < limit {
		commit, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", ref.Short(), err)
		}
		if commit.NumParents() == 0 {
			continue
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// ExpandRef resolves a short name such as "main", "origin/main" or "v1.0"
// to a full reference name using git's rev-parse rules.
func (r *Repository) ExpandRef(name string) (plumbing.ReferenceName, error) {
	for _, rule := range plumbing.RefRevParseRules {
		candidate := plumbing.ReferenceName(fmt.Sprintf(rule, name))
		if _, err := r.Reference(candidate, false); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", plumbing.ErrReferenceNotFound, name)
}

// FormatCommit renders a commit in the given format
func FormatCommit(commit *object.Commit, format CommitFormat) (string, error) {
	subject := strings.TrimSpace(strings.Split(strings.TrimSpace(commit.Message), "\n")[0])
	switch format {
	case FormatSHA:
		return commit.Hash.String(), nil
	case FormatReadable:
		// Oneline format: short SHA + subject
		return fmt.Sprintf("%s - %s", commit.Hash.String()[:7], subject), nil
	case FormatMessage:
		return strings.TrimSpace(commit.Message), nil
	case FormatSubject:
		return subject, nil
	default:
		return "", fmt.Errorf("unknown commit format: %s", format)
	}
}
