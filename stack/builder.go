package stack

import (
	"sort"

	"github.com/gitstax/stax/filestack"
)

// fileEntry is one (path, FileState) pair pending processing for one commit,
// tagged with the priority class spec.md §4.3 requires: renames first, then
// plain modifications, then copies, alphabetical by path within a class.
type fileEntry struct {
	path  string
	state FileState
	class int
}

const (
	classRename      = 0
	classModification = 1
	classCopy        = 2
)

// rebuildFileStacks re-derives fileStacks and the dual index from s.commits
// and s.bottom (spec.md §4.3), resolving any existing lazy file references
// against the current (about-to-be-replaced) file stacks first so content
// is never lost across a rebuild.
func (s *State) rebuildFileStacks() error {
	resolved, err := s.resolvedCommits()
	if err != nil {
		return err
	}

	// Ancestor lookups during the build need s.commits/s.Log to already
	// reflect the (possibly just-edited) sequence being rebuilt; the file
	// stacks and dual index themselves are filled in below, and nothing
	// during the build inspects them.
	s.commits = resolved

	b := &builder{state: s, idx: newDualIndex()}

	for _, c := range resolved {
		if err := b.processCommit(c); err != nil {
			return err
		}
	}

	fileStacks := make([]FileStack, len(b.pending))
	for i, revs := range b.pending {
		fileStacks[i] = filestack.New(revs)
	}

	s.fileStacks = fileStacks
	s.idx = b.idx
	s.depCache = newDepMapCache(len(fileStacks))

	return nil
}

// resolvedCommits returns a copy of s.commits with every FileState
// materialized to inline text/binary (never lazy), using s's *current*
// file stacks (which the caller is about to discard and rebuild).
func (s *State) resolvedCommits() ([]*CommitState, error) {
	out := make([]*CommitState, len(s.commits))

	for i, c := range s.commits {
		nc := c.clone()

		for path, fs := range nc.Files {
			resolved, err := s.resolveLazy(fs)
			if err != nil {
				return nil, err
			}

			nc.Files[path] = resolved
		}

		out[i] = nc
	}

	return out, nil
}

// builder holds the working state of one rebuildFileStacks pass.
type builder struct {
	state *State
	idx   *dualIndex

	// pending accumulates each file stack's revisions as it grows, indexed
	// by file-stack index.
	pending [][]string
}

// processCommit applies spec.md §4.3's per-commit algorithm: classify this
// commit's files into rename/modification/copy priority classes, sort each
// class alphabetically, then process in class order.
func (b *builder) processCommit(c *CommitState) error {
	entries := classifyEntries(c)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].class != entries[j].class {
			return entries[i].class < entries[j].class
		}

		return entries[i].path < entries[j].path
	})

	for _, e := range entries {
		if e.state.IsBinary() {
			continue
		}

		if err := b.processFile(c, e.path, e.state); err != nil {
			return err
		}
	}

	return nil
}

// classifyEntries partitions c's modified files into rename/modification/
// copy classes, skipping absent entries already consumed as a rename
// source.
func classifyEntries(c *CommitState) []fileEntry {
	renameSources := map[string]bool{}

	for path, fs := range c.Files {
		if fs.CopyFrom == "" {
			continue
		}

		if src, ok := c.Files[fs.CopyFrom]; ok && src.Absent() {
			renameSources[fs.CopyFrom] = true
		}

		_ = path
	}

	entries := make([]fileEntry, 0, len(c.Files))

	for path, fs := range c.Files {
		if fs.Absent() && renameSources[path] {
			continue
		}

		class := classModification
		if fs.CopyFrom != "" {
			if renameSources[fs.CopyFrom] {
				class = classRename
			} else {
				class = classCopy
			}
		}

		entries = append(entries, fileEntry{path: path, state: fs, class: class})
	}

	return entries
}

// processFile implements §4.3 steps 1-3 for a single (rev, path, file)
// tuple.
func (b *builder) processFile(c *CommitState, path string, fs FileState) error {
	lookupPath := path
	if fs.CopyFrom != "" {
		lookupPath = fs.CopyFrom
	}

	prevRev, prevFile, err := b.state.locateParentFile(c.Rev, lookupPath)
	if err != nil {
		return err
	}

	curText := textOf(fs)

	if prevRev >= 0 {
		if fi, ok := b.idx.commitToFile[CommitIdx{Rev: prevRev, Path: lookupPath}]; ok {
			if fi.FileRev == len(b.pending[fi.StackIdx])-1 {
				newRev := len(b.pending[fi.StackIdx])
				b.pending[fi.StackIdx] = append(b.pending[fi.StackIdx], curText)
				b.idx.set(CommitIdx{Rev: c.Rev, Path: path}, FileIdx{StackIdx: fi.StackIdx, FileRev: newRev})

				return nil
			}
		}
	}

	// Start a new file stack, seeded from the parent if it is UTF-8.
	stackIdx := len(b.pending)

	var revs []string
	if prevFile.IsBinary() {
		revs = []string{curText}
		b.idx.set(CommitIdx{Rev: c.Rev, Path: path}, FileIdx{StackIdx: stackIdx, FileRev: 0})
	} else {
		revs = []string{textOf(prevFile), curText}
		// Recorded even when prevRev is RevBottom: CommitIdx tolerates a
		// negative rev, and describeFileStacks uses this mapping to label a
		// stack's seed revision.
		b.idx.set(CommitIdx{Rev: prevRev, Path: lookupPath}, FileIdx{StackIdx: stackIdx, FileRev: 0})
		b.idx.set(CommitIdx{Rev: c.Rev, Path: path}, FileIdx{StackIdx: stackIdx, FileRev: 1})
	}

	b.pending = append(b.pending, revs)

	return nil
}

// textOf returns the UTF-8 content of fs, treating an absent file as an
// empty-string tombstone so its file stack can continue across a delete.
func textOf(fs FileState) string {
	if fs.Absent() {
		return ""
	}

	return fs.Data.Text
}
