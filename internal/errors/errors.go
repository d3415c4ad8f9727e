// Package errors provides sentinel errors and custom error types for the uprebase application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotOnBranch indicates that HEAD is detached or unborn
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBareRepository indicates that the repository has no working tree
	ErrBareRepository = errors.New("bare repositories are not allowed")

	// ErrDirtyWorktree indicates that the working tree has uncommitted or untracked changes
	ErrDirtyWorktree = errors.New("working tree is not clean")

	// ErrBaseBranchUndeterminable indicates that no base branch could be guessed
	ErrBaseBranchUndeterminable = errors.New("could not determine the base branch, pass it explicitly with --base")

	// ErrRemoteNotFound indicates that the named remote is not configured
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrFetchHeadNotFound indicates that FETCH_HEAD could not be resolved after a fetch
	ErrFetchHeadNotFound = errors.New("FETCH_HEAD not found")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrUnexpectedRebaseState indicates a rebase operation with no determinable type
	ErrUnexpectedRebaseState = errors.New("unexpected rebase state")

	// ErrRebaseSessionClosed indicates use of a rebase session after it finished or aborted
	ErrRebaseSessionClosed = errors.New("rebase session is closed")

	// ErrPatchAlreadyApplied indicates that replaying a commit would produce no changes
	ErrPatchAlreadyApplied = errors.New("patch already applied")

	// ErrNoIdentity indicates that user.name or user.email is not configured
	ErrNoIdentity = errors.New("no committer identity configured (set user.name and user.email)")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// RebaseConflictError represents an error when a rebase encounters a conflict
type RebaseConflictError struct {
	BranchName string
	Commit     string
	Paths      []string
}

func (e *RebaseConflictError) Error() string {
	msg := fmt.Sprintf("rebase conflict on branch %s", e.BranchName)
	if e.Commit != "" {
		msg += fmt.Sprintf(" while applying %s", shortHash(e.Commit))
	}
	if len(e.Paths) > 0 {
		msg += ": " + strings.Join(e.Paths, ", ")
	}
	return msg
}

// Is returns true if the target error is ErrRebaseConflict
func (e *RebaseConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewRebaseConflictError creates a new RebaseConflictError
func NewRebaseConflictError(branchName, commit string, paths []string) *RebaseConflictError {
	return &RebaseConflictError{
		BranchName: branchName,
		Commit:     commit,
		Paths:      paths,
	}
}

// DirtyWorktreeError lists the paths that keep the working tree from being clean
type DirtyWorktreeError struct {
	Paths []string
}

func (e *DirtyWorktreeError) Error() string {
	const maxListed = 5
	paths := e.Paths
	suffix := ""
	if len(paths) > maxListed {
		suffix = fmt.Sprintf(" and %d more", len(paths)-maxListed)
		paths = paths[:maxListed]
	}
	return fmt.Sprintf("%s: %s%s", ErrDirtyWorktree.Error(), strings.Join(paths, ", "), suffix)
}

// Is returns true if the target error is ErrDirtyWorktree
func (e *DirtyWorktreeError) Is(target error) bool {
	return target == ErrDirtyWorktree
}

// NewDirtyWorktreeError creates a new DirtyWorktreeError
func NewDirtyWorktreeError(paths []string) *DirtyWorktreeError {
	return &DirtyWorktreeError{Paths: paths}
}

// TransportError wraps a failure reported by the remote transport.
// The wrapped error is surfaced verbatim.
type TransportError struct {
	Remote string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Remote, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(remote string, err error) *TransportError {
	return &TransportError{Remote: remote, Err: err}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
