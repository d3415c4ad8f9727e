// Package testhelpers provides testing utilities for uprebase,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("for-each-ref", "refs/heads/", "--format=%(refname:short)")
	require.NoError(t, err, "Failed to list branches")

	branches := splitLines(output)
	sort.Strings(branches)
	sorted := append([]string(nil), expected...)
	sort.Strings(sorted)

	require.Equal(t, sorted, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest commits on branch have the expected
// subjects, newest first. Older commits beyond len(expected) are ignored.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	messages, err := repo.ListCommitMessages(branch)
	require.NoError(t, err, "Failed to list commits")
	require.GreaterOrEqual(t, len(messages), len(expected), "Not enough commits on %s", branch)
	require.Equal(t, expected, messages[:len(expected)], "Commits do not match")
}

// ExpectLinear asserts that every commit in from..to has exactly one parent.
func ExpectLinear(t *testing.T, repo *GitRepo, from, to string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("rev-list", from+".."+to)
	require.NoError(t, err)
	for _, sha := range splitLines(output) {
		parents, err := repo.GetParents(sha)
		require.NoError(t, err)
		require.Len(t, parents, 1, "commit %s is not linear", sha)
	}
}

// ExpectClean asserts that git reports no changes in the working tree or index.
func ExpectClean(t *testing.T, repo *GitRepo) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("status", "--porcelain")
	require.NoError(t, err)
	require.Empty(t, output, "working tree is not clean")
}
