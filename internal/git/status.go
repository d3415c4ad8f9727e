package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// StatusEntry describes one path that differs from HEAD
type StatusEntry struct {
	Path     string
	Staging  gogit.StatusCode
	Worktree gogit.StatusCode
}

// Untracked reports whether the path is not tracked at all
func (e StatusEntry) Untracked() bool {
	return e.Staging == gogit.Untracked && e.Worktree == gogit.Untracked
}

// Conflicted reports whether the path is unmerged
func (e StatusEntry) Conflicted() bool {
	return e.Staging == gogit.UpdatedButUnmerged || e.Worktree == gogit.UpdatedButUnmerged
}

// Status lists modified, untracked, and conflicted paths. An empty pathspec list
// scans the whole tree; otherwise only paths under one of the given prefixes are
// reported. Paths ignored by the user's or the system's excludes file are
// skipped like git does. Entries are sorted by path.
func (r *Repository) Status(pathspecs ...string) ([]StatusEntry, error) {
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	excludes, err := excludePatterns()
	if err != nil {
		return nil, err
	}
	wt.Excludes = append(wt.Excludes, excludes...)

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var entries []StatusEntry
	for file, st := range status {
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		if !matchesPathspec(file, pathspecs) {
			continue
		}
		entries = append(entries, StatusEntry{
			Path:     file,
			Staging:  st.Staging,
			Worktree: st.Worktree,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func matchesPathspec(file string, pathspecs []string) bool {
	if len(pathspecs) == 0 {
		return true
	}
	for _, spec := range pathspecs {
		spec = strings.TrimSuffix(path.Clean(spec), "/")
		if spec == "." || file == spec || strings.HasPrefix(file, spec+"/") {
			return true
		}
	}
	return false
}

// excludePatterns loads core.excludesFile from /etc/gitconfig and
// ~/.gitconfig. Without a user setting, $XDG_CONFIG_HOME/git/ignore (or
// ~/.config/git/ignore) is read, which is git's default.
func excludePatterns() ([]gitignore.Pattern, error) {
	root := osfs.New("/")
	system, err := gitignore.LoadSystemPatterns(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load system excludes: %w", err)
	}
	global, err := gitignore.LoadGlobalPatterns(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load global excludes: %w", err)
	}
	if global == nil {
		if global, err = defaultIgnorePatterns(); err != nil {
			return nil, err
		}
	}
	return append(system, global...), nil
}

func defaultIgnorePatterns() ([]gitignore.Pattern, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		dir = filepath.Join(home, ".config")
	}
	data, err := os.ReadFile(filepath.Join(dir, "git", "ignore"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read excludes file: %w", err)
	}

	var ps []gitignore.Pattern
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}
	return ps, nil
}
