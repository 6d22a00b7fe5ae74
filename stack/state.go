package stack

import (
	"fmt"
	"iter"

	"github.com/gitstax/stax/vcsio"
)

// State is an immutable snapshot of a commit stack: its commits, the
// bottom-files baseline, and the derived file stacks + dual index. Every
// mutation in this package (FoldDown, Drop, Reorder, ...) returns a new
// *State; the receiver is never modified.
type State struct {
	commits []*CommitState
	bottom  BottomFiles

	fileStacks []FileStack
	idx        *dualIndex

	// original is the ExportStack this state (or its ancestry of edits)
	// was first constructed from; used by the exporter to diff against.
	original *vcsio.ExportStack

	// requestedOrder preserves the original hash order of commits that
	// were Requested. It is carried across edits but not read; the
	// exporter works from original instead.
	requestedOrder []string

	depCache *depMapCache
}

// New parses a vcsio.ExportStack into a CommitStackState: bottom-files +
// commit records, then derives file stacks and the dual index (spec.md
// §4.1, §4.3).
func New(export *vcsio.ExportStack) (*State, error) {
	if err := export.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStructural, err)
	}

	hashToRev := make(map[string]Rev, len(export.Commits))
	commits := make([]*CommitState, 0, len(export.Commits))
	requestedOrder := make([]string, 0, len(export.Commits))

	for i, ec := range export.Commits {
		rev := Rev(i)
		hashToRev[ec.Node] = rev

		var parents []Rev
		if len(ec.Parents) == 1 {
			pr, ok := hashToRev[ec.Parents[0]]
			if !ok {
				return nil, fmt.Errorf(
					"%w: commit %q parent %q not found earlier in stack",
					ErrStructural, ec.Node, ec.Parents[0],
				)
			}
			parents = []Rev{pr}
		}

		files := make(map[string]FileState, len(ec.Files))
		for path, ef := range ec.Files {
			files[path] = fileStateFromExport(ef)
		}

		cs := &CommitState{
			Rev:           rev,
			Key:           ec.Node,
			OriginalNodes: map[string]bool{ec.Node: true},
			Author:        ec.Author,
			Date:          ec.Date,
			Text:          ec.Text,
			ImmutableKind: effectiveImmutableKind(ec),
			Parents:       parents,
			Files:         files,
		}
		commits = append(commits, cs)

		if ec.Requested {
			requestedOrder = append(requestedOrder, ec.Node)
		}
	}

	// A hash-immutable commit freezes its ancestors as well.
	for i := len(commits) - 1; i >= 0; i-- {
		if c := commits[i]; c.ImmutableKind == ImmutableHash && len(c.Parents) == 1 {
			commits[c.Parents[0]].ImmutableKind = ImmutableHash
		}
	}

	st := &State{
		commits:        commits,
		bottom:         deriveBottomFiles(export),
		original:       export,
		requestedOrder: requestedOrder,
	}

	if err := st.rebuildFileStacks(); err != nil {
		return nil, err
	}

	return st, nil
}

// effectiveImmutableKind derives a commit's freeze level the way spec.md §6
// specifies: a commit outside the caller's requested range is always
// hash-immutable, regardless of the host's own Immutable hint.
func effectiveImmutableKind(ec vcsio.ExportCommit) ImmutableKind {
	if !ec.Requested || ec.Immutable {
		return ImmutableHash
	}

	return ImmutableNone
}

// Len returns the number of commits in the stack.
func (s *State) Len() int { return len(s.commits) }

// Commit returns the commit at rev, or an invariant error if out of range.
func (s *State) Commit(rev Rev) (*CommitState, error) {
	if rev < 0 || int(rev) >= len(s.commits) {
		return nil, fmt.Errorf("%w: rev %d out of range [0,%d)",
			ErrInvariant, rev, len(s.commits))
	}

	return s.commits[rev], nil
}

// Commits returns an iterator over all commits in stack order.
func (s *State) Commits() iter.Seq[*CommitState] {
	return func(yield func(*CommitState) bool) {
		for _, c := range s.commits {
			if !yield(c) {
				return
			}
		}
	}
}

// IsStackLinear reports whether every non-root commit's sole parent is
// exactly the preceding rev, the precondition canReorder requires.
func (s *State) IsStackLinear() bool {
	for i, c := range s.commits {
		if i == 0 {
			if len(c.Parents) != 0 {
				return false
			}

			continue
		}

		if len(c.Parents) != 1 || c.Parents[0] != Rev(i-1) {
			return false
		}
	}

	return true
}

// Log performs the depth-first ancestor walk of spec.md §4.5: start, then
// its parent, then its parent's parent, and so on to the root. Because
// merges are rejected (at most one parent), this is always a simple chain.
func (s *State) Log(start Rev) iter.Seq[Rev] {
	return func(yield func(Rev) bool) {
		rev := start
		for rev != RevBottom {
			c, err := s.Commit(rev)
			if err != nil {
				return
			}

			if !yield(rev) {
				return
			}

			if len(c.Parents) == 0 {
				return
			}

			rev = c.Parents[0]
		}
	}
}

// LogFile filters Log to revs that modify path. When followRenames is set,
// a visited file's CopyFrom switches the tracked path for earlier revs in
// the walk (spec.md §4.5).
func (s *State) LogFile(start Rev, path string, followRenames bool) iter.Seq[Rev] {
	return func(yield func(Rev) bool) {
		tracked := path

		for rev := range s.Log(start) {
			c, err := s.Commit(rev)
			if err != nil {
				return
			}

			fs, ok := c.Files[tracked]
			if !ok {
				continue
			}

			if !yield(rev) {
				return
			}

			if followRenames && fs.CopyFrom != "" {
				tracked = fs.CopyFrom
			}
		}
	}
}

// getFile implements spec.md §4.4: the first ancestor's modification of
// path, falling back to BottomFiles, distinct from stack[rev].Files[path]
// which only records this commit's own modification.
func (s *State) getFile(rev Rev, path string) (FileState, error) {
	for r := range s.Log(rev) {
		c, err := s.Commit(r)
		if err != nil {
			return FileState{}, err
		}

		if fs, ok := c.Files[path]; ok {
			return fs, nil
		}
	}

	if fs, ok := s.bottom[path]; ok {
		return fs, nil
	}

	return FileState{}, fmt.Errorf(
		"%w: path %q is not tracked by this stack", ErrInvariant, path,
	)
}

// GetFile returns the resolved content of path as seen at rev, decoding any
// lazy file-stack reference along the way.
func (s *State) GetFile(rev Rev, path string) (FileState, error) {
	fs, err := s.getFile(rev, path)
	if err != nil {
		return FileState{}, err
	}

	return s.resolveLazy(fs)
}

// locateParentFile implements spec.md §4.3 step 1 / §4.6's rename-following
// parent lookup: walk rev's ancestors for the first modification of
// lookupPath, falling back to BottomFiles with RevBottom.
func (s *State) locateParentFile(rev Rev, lookupPath string) (Rev, FileState, error) {
	c, err := s.Commit(rev)
	if err != nil {
		return RevBottom, FileState{}, err
	}

	if len(c.Parents) == 1 {
		for r := range s.Log(c.Parents[0]) {
			pc, err := s.Commit(r)
			if err != nil {
				return RevBottom, FileState{}, err
			}

			if fs, ok := pc.Files[lookupPath]; ok {
				return r, fs, nil
			}
		}
	}

	fs, ok := s.bottom[lookupPath]
	if !ok {
		return RevBottom, FileState{}, fmt.Errorf(
			"%w: path %q is not tracked in bottom files", ErrInvariant, lookupPath,
		)
	}

	return RevBottom, fs, nil
}

func (s *State) resolveLazy(fs FileState) (FileState, error) {
	if !fs.IsLazy() {
		return fs, nil
	}

	ref := fs.Data.Ref
	if ref.StackIdx < 0 || ref.StackIdx >= len(s.fileStacks) {
		return FileState{}, fmt.Errorf(
			"%w: lazy reference to unknown file stack %d", ErrInvariant, ref.StackIdx,
		)
	}

	text, err := s.fileStacks[ref.StackIdx].GetRev(ref.FileRev)
	if err != nil {
		return FileState{}, err
	}

	fs.Data = TextData(text)

	return fs, nil
}
