// Package stack implements the commit-stack editing engine: an in-memory,
// persistent model of a linear sequence of commits and the per-file content
// histories ("file stacks") derived from them. See spec.md for the full
// design; this package implements §§3-9 verbatim.
package stack

import "github.com/gitstax/stax/vcsio"

// Rev is the 0-based position of a commit in the stack. RevBottom is the
// sentinel for "before any commit".
type Rev int

// RevBottom means "bottom of stack", i.e. below rev 0.
const RevBottom Rev = -1

// Hash is an opaque identifier for an original (pre-edit) commit.
type Hash = string

// ImmutableKind classifies how frozen a commit is against edits.
type ImmutableKind string

const (
	// ImmutableNone means the commit is fully editable.
	ImmutableNone ImmutableKind = "none"

	// ImmutableHash freezes the commit and its position entirely (I7).
	ImmutableHash ImmutableKind = "hash"

	// ImmutableContent freezes the commit's files.
	ImmutableContent ImmutableKind = "content"

	// ImmutableDiff freezes the commit's changes.
	ImmutableDiff ImmutableKind = "diff"
)

// foldable reports whether a commit with this ImmutableKind may be folded or
// dropped. Per spec.md's open question, any kind other than "none" is
// treated conservatively as non-foldable/non-droppable until the host
// clarifies partial-freeze semantics.
func (k ImmutableKind) foldable() bool {
	return k == ImmutableNone
}

// FileDataKind classifies how a FileState's content is represented.
type FileDataKind int

const (
	// FileDataText holds inline UTF-8 content.
	FileDataText FileDataKind = iota

	// FileDataBinary holds an opaque (base85) blob, compared by identity.
	FileDataBinary

	// FileDataLazy holds a reference into a file stack instead of inline
	// content ("lazy" view; see UseFileStack/UseFileContent).
	FileDataLazy
)

// FileIdx addresses one revision of one file stack.
type FileIdx struct {
	StackIdx int
	FileRev  int
}

// FileData is the content of a FileState, in one of three representations.
type FileData struct {
	Kind FileDataKind

	// Text holds the content when Kind == FileDataText.
	Text string

	// Blob holds the opaque binary payload when Kind == FileDataBinary.
	Blob string

	// Ref holds the file-stack reference when Kind == FileDataLazy.
	Ref FileIdx
}

// TextData builds a FileDataText value.
func TextData(s string) FileData { return FileData{Kind: FileDataText, Text: s} }

// BinaryData builds a FileDataBinary value.
func BinaryData(blob string) FileData {
	return FileData{Kind: FileDataBinary, Blob: blob}
}

// LazyData builds a FileDataLazy value.
func LazyData(idx FileIdx) FileData { return FileData{Kind: FileDataLazy, Ref: idx} }

// FileState is one file's attributes at one commit (or in BottomFiles).
type FileState struct {
	Data FileData

	// CopyFrom is the source path for a rename/copy marker, if any.
	CopyFrom string

	// Flags is normally empty; vcsio.FlagAbsent means "does not exist".
	Flags string
}

// AbsentFile is the canonical "file does not exist at this revision" value.
var AbsentFile = FileState{Flags: vcsio.FlagAbsent}

// Absent reports whether this file is marked absent.
func (f FileState) Absent() bool { return f.Flags == vcsio.FlagAbsent }

// IsBinary reports whether this file holds an opaque blob.
func (f FileState) IsBinary() bool { return f.Data.Kind == FileDataBinary }

// IsLazy reports whether this file holds a file-stack reference.
func (f FileState) IsLazy() bool { return f.Data.Kind == FileDataLazy }

// contentEqual reports whether two FileStates have the same observable
// content, ignoring whether that content is represented inline or lazily.
// Used by fold (change-cancels-out detection) and export (structural diff).
// It does NOT resolve lazy references; callers compare post-UseFileContent.
func (f FileState) contentEqual(o FileState) bool {
	if f.Absent() != o.Absent() {
		return false
	}
	if f.Absent() {
		return true
	}
	if f.CopyFrom != o.CopyFrom {
		return false
	}
	if f.Data.Kind != o.Data.Kind {
		return false
	}

	switch f.Data.Kind {
	case FileDataText:
		return f.Data.Text == o.Data.Text
	case FileDataBinary:
		return f.Data.Blob == o.Data.Blob
	default:
		return f.Data.Ref == o.Data.Ref
	}
}

// BottomFiles is an immutable snapshot of every path ever referenced in the
// stack, as seen just below rev 0.
type BottomFiles map[string]FileState

// CommitState is one commit's metadata plus the files it modifies.
type CommitState struct {
	Rev Rev

	// Key is a stable identifier preserved across rebuilds so external
	// observers (and fold/drop/reorder) can track a commit's identity even
	// as its Rev changes.
	Key string

	// OriginalNodes is the set of original hashes this commit descends
	// from (merged together when commits are folded).
	OriginalNodes map[string]bool

	Author string
	// Date is [unix_seconds, tz_minutes].
	Date [2]int64
	Text string

	ImmutableKind ImmutableKind

	// Parents lists parent revs; length <= 1 (merges rejected).
	Parents []Rev

	// Files maps path to FileState for paths this commit modifies.
	Files map[string]FileState
}

// clone returns a deep-enough copy of c so callers can mutate the result
// without aliasing the original's maps/slices (persistent-state discipline).
func (c *CommitState) clone() *CommitState {
	nc := *c

	nc.OriginalNodes = make(map[string]bool, len(c.OriginalNodes))
	for k, v := range c.OriginalNodes {
		nc.OriginalNodes[k] = v
	}

	nc.Parents = append([]Rev(nil), c.Parents...)

	nc.Files = make(map[string]FileState, len(c.Files))
	for k, v := range c.Files {
		nc.Files[k] = v
	}

	return &nc
}
