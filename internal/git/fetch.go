package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// FetchHead is the reference a fetch leaves pointing at the fetched tip
const FetchHead plumbing.ReferenceName = "FETCH_HEAD"

// FetchOptions configures a single-branch fetch
type FetchOptions struct {
	// Remote is the configured remote name, e.g. "origin"
	Remote string
	// Branch is the short name of the remote branch to fetch
	Branch string
	// Credentials may be nil for remotes that need no authentication
	Credentials CredentialProvider
	// Progress may be nil
	Progress ProgressFunc
}

// FetchResult is the outcome of a fetch
type FetchResult struct {
	Remote   string
	Branch   string
	Commit   AnnotatedCommit
	Stats    TransferStats
	UpToDate bool
}

// Fetch downloads one branch (and all tags) from a remote, then resolves
// FETCH_HEAD into the fetched commit. Only the remote-tracking ref and
// FETCH_HEAD move; local branches are left alone.
func (r *Repository) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	remote, err := r.Remote(opts.Remote)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return nil, fmt.Errorf("%w: %s", uperrors.ErrRemoteNotFound, opts.Remote)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get remote %s: %w", opts.Remote, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s has no URL", uperrors.ErrRemoteNotFound, opts.Remote)
	}

	var auth transport.AuthMethod
	if opts.Credentials != nil {
		endpoint, err := transport.NewEndpoint(urls[0])
		if err != nil {
			return nil, fmt.Errorf("invalid URL for remote %s: %w", opts.Remote, err)
		}
		auth, err = opts.Credentials.AuthMethod(endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to set up credentials: %w", err)
		}
	}

	tracking := plumbing.NewRemoteReferenceName(opts.Remote, opts.Branch)
	refSpec := config.RefSpec(fmt.Sprintf("+%s:%s", plumbing.NewBranchReferenceName(opts.Branch), tracking))

	progress := newProgressWriter(opts.Progress)
	err = remote.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: opts.Remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
		Progress:   progress,
		Tags:       gogit.AllTags,
	})
	upToDate := errors.Is(err, gogit.NoErrAlreadyUpToDate)
	if err != nil && !upToDate {
		if errors.Is(err, gogit.NoMatchingRefSpecError{}) {
			return nil, fmt.Errorf("%w: %s/%s", uperrors.ErrBranchNotFound, opts.Remote, opts.Branch)
		}
		return nil, uperrors.NewTransportError(opts.Remote, err)
	}
	stats := progress.complete()

	tip, err := r.Reference(tracking, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is missing after fetch: %v", uperrors.ErrFetchHeadNotFound, tracking, err)
	}
	if err := r.Storer.SetReference(plumbing.NewHashReference(FetchHead, tip.Hash())); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", FetchHead, err)
	}

	commit, err := r.ResolveFetchHead()
	if err != nil {
		return nil, err
	}
	commit.Ref = tracking

	return &FetchResult{
		Remote:   opts.Remote,
		Branch:   opts.Branch,
		Commit:   commit,
		Stats:    stats,
		UpToDate: upToDate,
	}, nil
}

// ResolveFetchHead reads FETCH_HEAD and resolves it to a commit
func (r *Repository) ResolveFetchHead() (AnnotatedCommit, error) {
	ref, err := r.Reference(FetchHead, true)
	if err != nil {
		return AnnotatedCommit{}, fmt.Errorf("%w: %v", uperrors.ErrFetchHeadNotFound, err)
	}
	hash, err := r.peelToCommit(ref.Hash())
	if err != nil {
		return AnnotatedCommit{}, fmt.Errorf("%w: %v", uperrors.ErrFetchHeadNotFound, err)
	}
	return AnnotatedCommit{Hash: hash, Ref: FetchHead}, nil
}
