package git

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Conflict is a path that could not be merged cleanly
type Conflict struct {
	Path   string
	Reason string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s (%s)", c.Path, c.Reason)
}

type treeEntry struct {
	Hash plumbing.Hash
	Mode filemode.FileMode
}

// flatTree maps slash-separated paths to non-directory entries
type flatTree map[string]treeEntry

// mergeIndex is the in-memory result of merging one commit. Blobs holds
// merged file contents that have not been written to storage yet.
type mergeIndex struct {
	entries   flatTree
	blobs     map[plumbing.Hash][]byte
	conflicts []Conflict
}

func (r *Repository) flattenTree(hash plumbing.Hash) (flatTree, error) {
	flat := flatTree{}
	if hash.IsZero() {
		return flat, nil
	}

	tree, err := r.TreeObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree %s: %w", hash, err)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to walk tree %s: %w", hash, err)
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		flat[name] = treeEntry{Hash: entry.Hash, Mode: entry.Mode}
	}
	return flat, nil
}

// mergeTrees applies the change base->theirs on top of ours
func (r *Repository) mergeTrees(base, ours, theirs flatTree) (*mergeIndex, error) {
	idx := &mergeIndex{
		entries: flatTree{},
		blobs:   map[plumbing.Hash][]byte{},
	}

	paths := map[string]struct{}{}
	for _, tree := range []flatTree{base, ours, theirs} {
		for p := range tree {
			paths[p] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	for _, p := range sorted {
		b, inBase := base[p]
		o, inOurs := ours[p]
		t, inTheirs := theirs[p]

		switch {
		case sameEntry(o, inOurs, t, inTheirs):
			if inOurs {
				idx.entries[p] = o
			}
			continue
		case sameEntry(b, inBase, t, inTheirs):
			if inOurs {
				idx.entries[p] = o
			}
			continue
		case sameEntry(b, inBase, o, inOurs):
			if inTheirs {
				idx.entries[p] = t
			}
			continue
		}

		switch {
		case !inOurs || !inTheirs:
			idx.addConflict(p, "modified and deleted")
			continue
		case !inBase:
			idx.addConflict(p, "added by both")
			continue
		}

		mode, ok := pickMode(b.Mode, o.Mode, t.Mode)
		if !ok {
			idx.addConflict(p, "mode changed by both")
			continue
		}

		switch {
		case o.Hash == t.Hash || t.Hash == b.Hash:
			idx.entries[p] = treeEntry{Hash: o.Hash, Mode: mode}
			continue
		case o.Hash == b.Hash:
			idx.entries[p] = treeEntry{Hash: t.Hash, Mode: mode}
			continue
		}

		if !isMergeableMode(b.Mode) || !isMergeableMode(o.Mode) || !isMergeableMode(t.Mode) {
			idx.addConflict(p, "changed by both")
			continue
		}

		merged, reason, err := r.mergeBlobs(b.Hash, o.Hash, t.Hash)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			idx.addConflict(p, reason)
			continue
		}
		hash := plumbing.ComputeHash(plumbing.BlobObject, merged)
		idx.blobs[hash] = merged
		idx.entries[p] = treeEntry{Hash: hash, Mode: mode}
	}

	// A path cannot be both a file and a directory.
	for p := range idx.entries {
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if _, clash := idx.entries[dir]; clash {
				idx.addConflict(dir, "file and directory")
			}
		}
	}

	return idx, nil
}

func (idx *mergeIndex) addConflict(p, reason string) {
	for _, c := range idx.conflicts {
		if c.Path == p {
			return
		}
	}
	idx.conflicts = append(idx.conflicts, Conflict{Path: p, Reason: reason})
}

func (idx *mergeIndex) conflictPaths() []string {
	paths := make([]string, len(idx.conflicts))
	for i, c := range idx.conflicts {
		paths[i] = c.Path
	}
	sort.Strings(paths)
	return paths
}

// mergeBlobs returns the merged content, or a non-empty reason when the
// contents conflict.
func (r *Repository) mergeBlobs(base, ours, theirs plumbing.Hash) ([]byte, string, error) {
	contents := make([][]byte, 3)
	for i, hash := range []plumbing.Hash{base, ours, theirs} {
		data, err := r.readBlob(hash)
		if err != nil {
			return nil, "", err
		}
		if isBinary(data) {
			return nil, "binary file changed by both", nil
		}
		contents[i] = data
	}

	merged, ok := mergeText(contents[0], contents[1], contents[2])
	if !ok {
		return nil, "content", nil
	}
	return merged, "", nil
}

func (r *Repository) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := r.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", hash, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", hash, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// writeIndex stores pending blobs and the tree hierarchy, returning the root tree
func (r *Repository) writeIndex(idx *mergeIndex) (plumbing.Hash, error) {
	for _, data := range idx.blobs {
		if err := r.writeBlob(data); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	root := newDirNode()
	for p, entry := range idx.entries {
		root.insert(strings.Split(p, "/"), entry)
	}
	return r.writeDir(root)
}

func (r *Repository) writeBlob(data []byte) error {
	obj := r.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if _, err := r.Storer.SetEncodedObject(obj); err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

type dirNode struct {
	files map[string]treeEntry
	dirs  map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{
		files: map[string]treeEntry{},
		dirs:  map[string]*dirNode{},
	}
}

func (d *dirNode) insert(parts []string, entry treeEntry) {
	if len(parts) == 1 {
		d.files[parts[0]] = entry
		return
	}
	child, ok := d.dirs[parts[0]]
	if !ok {
		child = newDirNode()
		d.dirs[parts[0]] = child
	}
	child.insert(parts[1:], entry)
}

func (r *Repository) writeDir(d *dirNode) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(d.files)+len(d.dirs))
	for name, entry := range d.files {
		entries = append(entries, object.TreeEntry{Name: name, Mode: entry.Mode, Hash: entry.Hash})
	}
	for name, child := range d.dirs {
		hash, err := r.writeDir(child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}

	// Git orders directories as if their names ended in a slash.
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	obj := r.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}
	hash, err := r.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

func treeSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

func sameEntry(a treeEntry, aOK bool, b treeEntry, bOK bool) bool {
	if aOK != bOK {
		return false
	}
	return !aOK || a == b
}

func pickMode(base, ours, theirs filemode.FileMode) (filemode.FileMode, bool) {
	switch {
	case ours == theirs || theirs == base:
		return ours, true
	case ours == base:
		return theirs, true
	default:
		return 0, false
	}
}

func isMergeableMode(mode filemode.FileMode) bool {
	return mode == filemode.Regular || mode == filemode.Executable || mode == filemode.Deprecated
}
