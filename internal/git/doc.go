// Package git provides the repository operations behind uprebase.
//
// It wraps go-git and provides a Go-friendly interface for:
//   - Repository state queries (bare check, current branch, status)
//   - Base branch resolution
//   - Authenticated fetches with progress reporting
//   - An in-memory rebase engine that replays commits on object storage
//   - Commit log listing
//
// Nothing in this package shells out to a git binary or prints to a terminal.
package git
