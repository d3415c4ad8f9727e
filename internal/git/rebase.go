package git

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"

	uperrors "stackit.dev/uprebase/internal/errors"
)

// RebaseOperationType is the kind of step in a rebase session
type RebaseOperationType int

const (
	// RebaseOperationUnknown is never produced by a healthy session
	RebaseOperationUnknown RebaseOperationType = iota
	// RebaseOperationPick replays a commit
	RebaseOperationPick
	// RebaseOperationExec names a command to run between picks; uprebase skips it
	RebaseOperationExec
)

func (t RebaseOperationType) String() string {
	switch t {
	case RebaseOperationPick:
		return "pick"
	case RebaseOperationExec:
		return "exec"
	default:
		return "unknown"
	}
}

// RebaseOperation is one step of a rebase session
type RebaseOperation struct {
	Type   RebaseOperationType
	Commit plumbing.Hash
	Exec   string
}

// RebaseOptions tweaks how a session is built and committed
type RebaseOptions struct {
	// Exec adds an exec operation after every pick
	Exec string
	// Committer overrides the repository's default signature
	Committer *object.Signature
}

type rebaseState int

const (
	rebaseOpen rebaseState = iota
	rebaseIterating
	rebaseFinished
	rebaseAborted
)

// RebaseSession replays the commits unique to a branch on top of an upstream
// commit, one operation at a time. All work happens on object storage: the
// working tree and index are never touched, and the branch reference only
// moves in Finish.
type RebaseSession struct {
	repo       *Repository
	branch     AnnotatedCommit
	upstream   AnnotatedCommit
	target     plumbing.ReferenceName
	operations []*RebaseOperation
	current    int
	head       *object.Commit
	index      *mergeIndex
	state      rebaseState
}

// OpenRebase starts a session that moves branch onto upstream. Operations are
// the non-merge commits reachable from branch but not from upstream, parents
// before children.
func (r *Repository) OpenRebase(branch, upstream AnnotatedCommit, opts RebaseOptions) (*RebaseSession, error) {
	onto, err := r.CommitObject(upstream.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to find upstream commit %s: %w", upstream.Hash, err)
	}

	target := branch.Ref
	if target != "" {
		ref, err := r.Reference(target, true)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", target, err)
		}
		target = ref.Name()
	}

	commits, err := r.commitsToReplay(branch.Hash, upstream.Hash)
	if err != nil {
		return nil, err
	}

	var operations []*RebaseOperation
	for _, c := range commits {
		operations = append(operations, &RebaseOperation{Type: RebaseOperationPick, Commit: c.Hash})
		if opts.Exec != "" {
			operations = append(operations, &RebaseOperation{Type: RebaseOperationExec, Exec: opts.Exec})
		}
	}

	return &RebaseSession{
		repo:       r,
		branch:     branch,
		upstream:   upstream,
		target:     target,
		operations: operations,
		current:    -1,
		head:       onto,
		state:      rebaseOpen,
	}, nil
}

// Len returns the number of operations in the session
func (s *RebaseSession) Len() int {
	return len(s.operations)
}

// Operations returns the session's operations in replay order
func (s *RebaseSession) Operations() []*RebaseOperation {
	return s.operations
}

// Head returns the tip of the replayed chain so far
func (s *RebaseSession) Head() plumbing.Hash {
	if s.head == nil {
		return plumbing.ZeroHash
	}
	return s.head.Hash
}

// Next advances to the next operation. For a pick it merges the commit's
// changes onto the session head in memory; check HasConflicts before calling
// Commit. io.EOF is returned once every operation has been consumed.
func (s *RebaseSession) Next() (*RebaseOperation, error) {
	if s.closed() {
		return nil, uperrors.ErrRebaseSessionClosed
	}
	s.state = rebaseIterating
	s.index = nil

	if s.current+1 >= len(s.operations) {
		s.current = len(s.operations)
		return nil, io.EOF
	}
	s.current++
	op := s.operations[s.current]

	if op.Type != RebaseOperationPick {
		return op, nil
	}

	idx, err := s.apply(op.Commit)
	if err != nil {
		return nil, err
	}
	s.index = idx
	return op, nil
}

func (s *RebaseSession) apply(hash plumbing.Hash) (*mergeIndex, error) {
	commit, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to find commit %s: %w", hash, err)
	}

	var baseTree plumbing.Hash
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to find parent of %s: %w", hash, err)
		}
		baseTree = parent.TreeHash
	}

	base, err := s.repo.flattenTree(baseTree)
	if err != nil {
		return nil, err
	}
	ours, err := s.repo.flattenTree(s.head.TreeHash)
	if err != nil {
		return nil, err
	}
	theirs, err := s.repo.flattenTree(commit.TreeHash)
	if err != nil {
		return nil, err
	}

	return s.repo.mergeTrees(base, ours, theirs)
}

// HasConflicts reports whether the current pick could not be merged cleanly
func (s *RebaseSession) HasConflicts() bool {
	return s.index != nil && len(s.index.conflicts) > 0
}

// Conflicts returns the conflicts of the current pick
func (s *RebaseSession) Conflicts() []Conflict {
	if s.index == nil {
		return nil
	}
	return s.index.conflicts
}

// Commit writes the current pick as a new commit on top of the session head.
// A nil author keeps the original commit's author. ErrPatchAlreadyApplied is
// returned when the pick would not change the tree.
func (s *RebaseSession) Commit(author *object.Signature, committer object.Signature) (plumbing.Hash, error) {
	if s.closed() {
		return plumbing.ZeroHash, uperrors.ErrRebaseSessionClosed
	}
	if s.index == nil || s.current < 0 || s.current >= len(s.operations) {
		return plumbing.ZeroHash, fmt.Errorf("%w: no pick to commit", uperrors.ErrUnexpectedRebaseState)
	}
	op := s.operations[s.current]
	if s.HasConflicts() {
		return plumbing.ZeroHash, uperrors.NewRebaseConflictError(s.branch.String(), op.Commit.String(), s.index.conflictPaths())
	}

	treeHash, err := s.repo.writeIndex(s.index)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	s.index = nil
	if treeHash == s.head.TreeHash {
		return plumbing.ZeroHash, uperrors.ErrPatchAlreadyApplied
	}

	original, err := s.repo.CommitObject(op.Commit)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to find commit %s: %w", op.Commit, err)
	}
	if author == nil {
		// Already sits on the session head: keep it as is
		if len(original.ParentHashes) == 1 && original.ParentHashes[0] == s.head.Hash && original.TreeHash == treeHash {
			s.head = original
			return original.Hash, nil
		}
		author = &original.Author
	}

	replayed := &object.Commit{
		Author:       *author,
		Committer:    committer,
		Message:      original.Message,
		TreeHash:     treeHash,
		ParentHashes: []plumbing.Hash{s.head.Hash},
		Encoding:     original.Encoding,
	}
	obj := s.repo.Storer.NewEncodedObject()
	if err := replayed.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode commit: %w", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store commit: %w", err)
	}

	head, err := s.repo.CommitObject(hash)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read back commit %s: %w", hash, err)
	}
	s.head = head
	return hash, nil
}

// Abort ends the session without touching any reference. Commits created so
// far stay in the object store but nothing points at them.
func (s *RebaseSession) Abort() error {
	if s.state == rebaseFinished {
		return uperrors.ErrRebaseSessionClosed
	}
	s.state = rebaseAborted
	s.index = nil
	s.head = nil
	return nil
}

// Finish ends the session and points the branch reference at the replayed
// tip. The update fails if the reference moved since the session started.
func (s *RebaseSession) Finish() (plumbing.Hash, error) {
	if s.closed() {
		return plumbing.ZeroHash, uperrors.ErrRebaseSessionClosed
	}
	tip := s.head.Hash
	s.state = rebaseFinished
	s.index = nil

	if s.target == "" || tip == s.branch.Hash {
		return tip, nil
	}

	// Packed refs have no loose file for CheckAndSetReference to compare
	// against, so the comparison is done here.
	current, err := s.repo.Reference(s.target, false)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read %s: %w", s.target.Short(), err)
	}
	if current.Hash() != s.branch.Hash {
		return plumbing.ZeroHash, fmt.Errorf("failed to update %s: %w", s.target.Short(), storage.ErrReferenceHasChanged)
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(s.target, tip)); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to update %s: %w", s.target.Short(), err)
	}
	return tip, nil
}

func (s *RebaseSession) closed() bool {
	return s.state == rebaseFinished || s.state == rebaseAborted
}

// commitsToReplay lists the non-merge commits reachable from tip but not from
// upstream, parents before children with parent order preserved.
func (r *Repository) commitsToReplay(tip, upstream plumbing.Hash) ([]*object.Commit, error) {
	excluded, err := r.ancestors(upstream)
	if err != nil {
		return nil, err
	}
	if excluded[tip] {
		return nil, nil
	}

	start, err := r.CommitObject(tip)
	if err != nil {
		return nil, fmt.Errorf("failed to find commit %s: %w", tip, err)
	}

	type frame struct {
		commit *object.Commit
		next   int
	}
	visited := map[plumbing.Hash]bool{tip: true}
	stack := []*frame{{commit: start}}
	var ordered []*object.Commit

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.commit.ParentHashes) {
			parent := top.commit.ParentHashes[top.next]
			top.next++
			if visited[parent] || excluded[parent] {
				continue
			}
			visited[parent] = true
			commit, err := r.CommitObject(parent)
			if err != nil {
				return nil, fmt.Errorf("failed to find commit %s: %w", parent, err)
			}
			stack = append(stack, &frame{commit: commit})
			continue
		}

		stack = stack[:len(stack)-1]
		if top.commit.NumParents() <= 1 {
			ordered = append(ordered, top.commit)
		}
	}

	return ordered, nil
}

func (r *Repository) ancestors(hash plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := map[plumbing.Hash]bool{hash: true}
	queue := []plumbing.Hash{hash}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		commit, err := r.CommitObject(cur)
		if err != nil {
			return nil, fmt.Errorf("failed to find commit %s: %w", cur, err)
		}
		for _, parent := range commit.ParentHashes {
			if !seen[parent] {
				seen[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return seen, nil
}

// RebaseResult describes a completed rebase
type RebaseResult struct {
	Branch   AnnotatedCommit
	Upstream AnnotatedCommit
	Head     plumbing.Hash
	Replayed []plumbing.Hash
	Skipped  []plumbing.Hash
}

// Rebase replays branch onto upstream and moves the branch reference to the
// result. The first conflicting pick aborts the session and returns a
// *RebaseConflictError; the branch reference is then left where it was.
func (r *Repository) Rebase(branch, upstream AnnotatedCommit, opts RebaseOptions) (*RebaseResult, error) {
	session, err := r.OpenRebase(branch, upstream, opts)
	if err != nil {
		return nil, err
	}

	var committer object.Signature
	if opts.Committer != nil {
		committer = *opts.Committer
	} else {
		committer, err = r.DefaultSignature()
		if err != nil {
			_ = session.Abort()
			return nil, err
		}
	}

	return session.Replay(committer)
}

// Replay drives the session to the end: exec operations are skipped, picks
// are committed (or skipped when already applied) and the session is
// finished. Any failure aborts the session.
func (s *RebaseSession) Replay(committer object.Signature) (*RebaseResult, error) {
	result := &RebaseResult{Branch: s.branch, Upstream: s.upstream}
	for {
		op, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = s.Abort()
			return nil, err
		}

		switch op.Type {
		case RebaseOperationExec:
			continue
		case RebaseOperationPick:
			if s.HasConflicts() {
				paths := s.index.conflictPaths()
				_ = s.Abort()
				return nil, uperrors.NewRebaseConflictError(s.branch.String(), op.Commit.String(), paths)
			}
			hash, err := s.Commit(nil, committer)
			if errors.Is(err, uperrors.ErrPatchAlreadyApplied) {
				result.Skipped = append(result.Skipped, op.Commit)
				continue
			}
			if err != nil {
				_ = s.Abort()
				return nil, err
			}
			result.Replayed = append(result.Replayed, hash)
		default:
			_ = s.Abort()
			return nil, fmt.Errorf("%w: operation %d has type %s", uperrors.ErrUnexpectedRebaseState, s.current, op.Type)
		}
	}

	head, err := s.Finish()
	if err != nil {
		return nil, err
	}
	result.Head = head
	return result, nil
}
