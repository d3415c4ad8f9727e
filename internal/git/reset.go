package git

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"syscall"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// UpdateWorktree moves the index and working tree from commit from to commit
// to, touching only paths that differ between the two trees. If any of those
// paths no longer matches from, in the index or on disk, nothing is written
// and a *DirtyWorktreeError naming them is returned. The branch ref may
// already point at to.
func (r *Repository) UpdateWorktree(from, to plumbing.Hash) error {
	changed, err := r.changedPaths(from, to)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}

	files := make([]string, 0, len(changed))
	for p := range changed {
		files = append(files, p)
	}
	sort.Strings(files)

	blocked, err := r.pathsDifferingFrom(from, files)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		return uperrors.NewDirtyWorktreeError(blocked)
	}

	wt, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: to, Mode: gogit.HardReset, Files: files}); err != nil {
		return fmt.Errorf("failed to reset worktree to %s: %w", to, err)
	}
	return nil
}

// pathsDifferingFrom returns the paths whose staged or on-disk content is not
// what commit from records. HEAD is not consulted.
func (r *Repository) pathsDifferingFrom(from plumbing.Hash, paths []string) ([]string, error) {
	tree, err := r.commitTree(from)
	if err != nil {
		return nil, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	idx, err := r.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var dirty []string
	for _, p := range paths {
		want, wantDir, err := blobAt(tree, p)
		if err != nil {
			return nil, err
		}

		staged := plumbing.ZeroHash
		e, err := idx.Entry(p)
		switch {
		case errors.Is(err, index.ErrEntryNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to read index entry %s: %w", p, err)
		default:
			staged = e.Hash
		}
		if staged != want {
			dirty = append(dirty, p)
			continue
		}

		onDisk, isDir, err := worktreeBlob(wt.Filesystem, p)
		if err != nil {
			return nil, err
		}
		if isDir != wantDir || onDisk != want {
			dirty = append(dirty, p)
		}
	}
	return dirty, nil
}

// blobAt returns the blob hash recorded at p, or the zero hash when p is
// absent. isDir is set when p names a directory or submodule.
func blobAt(tree *object.Tree, p string) (plumbing.Hash, bool, error) {
	entry, err := tree.FindEntry(p)
	switch {
	case errors.Is(err, object.ErrEntryNotFound),
		errors.Is(err, object.ErrDirectoryNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, object.ErrUnsupportedObject):
		return plumbing.ZeroHash, false, nil
	case err != nil:
		return plumbing.ZeroHash, false, fmt.Errorf("failed to look up %s: %w", p, err)
	}
	if entry.Mode == filemode.Dir || entry.Mode == filemode.Submodule {
		return plumbing.ZeroHash, true, nil
	}
	return entry.Hash, false, nil
}

// worktreeBlob hashes the file at p the way git would store it. Symlinks hash
// their target.
func worktreeBlob(fs billy.Filesystem, p string) (plumbing.Hash, bool, error) {
	fi, err := fs.Lstat(p)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if fi.IsDir() {
		return plumbing.ZeroHash, true, nil
	}

	var data []byte
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Readlink(p)
		if err != nil {
			return plumbing.ZeroHash, false, fmt.Errorf("failed to read link %s: %w", p, err)
		}
		data = []byte(target)
	} else {
		f, err := fs.Open(p)
		if err != nil {
			return plumbing.ZeroHash, false, fmt.Errorf("failed to open %s: %w", p, err)
		}
		data, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			return plumbing.ZeroHash, false, fmt.Errorf("failed to read %s: %w", p, err)
		}
	}
	return plumbing.ComputeHash(plumbing.BlobObject, data), false, nil
}

func (r *Repository) changedPaths(from, to plumbing.Hash) (map[string]bool, error) {
	if from == to {
		return nil, nil
	}
	fromTree, err := r.commitTree(from)
	if err != nil {
		return nil, err
	}
	toTree, err := r.commitTree(to)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s and %s: %w", from, to, err)
	}

	paths := make(map[string]bool, len(changes))
	for _, ch := range changes {
		if ch.From.Name != "" {
			paths[ch.From.Name] = true
		}
		if ch.To.Name != "" {
			paths[ch.To.Name] = true
		}
	}
	return paths, nil
}

func (r *Repository) commitTree(hash plumbing.Hash) (*object.Tree, error) {
	commit, err := r.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}
	return tree, nil
}
