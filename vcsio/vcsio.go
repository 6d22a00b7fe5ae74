// Package vcsio defines the external interface of the commit-stack engine:
// the shape of the data a host version-control system hands in (ExportStack)
// and the shape of the actions the engine hands back (ImportStack). Package
// stack never speaks any wire protocol; it only ever sees these Go values.
package vcsio

import "fmt"

// ExportFile describes a file's content at some point in an ExportStack.
// Exactly one of Data or DataBase85 is set; a nil *ExportFile (in the Files
// map of an ExportCommit) means the file is deleted by that commit.
type ExportFile struct {
	// Data is the UTF-8 content of the file, if it is text.
	Data string

	// DataBase85 is the base85-encoded content of the file, if it is
	// binary. Package stack treats it as an opaque blob and never decodes
	// it; vcsadapter decodes it when writing files back.
	DataBase85 string

	// Binary is true if DataBase85 (not Data) carries the content.
	Binary bool

	// CopyFrom is the source path, if this file was copied/renamed from
	// another path in the same commit.
	CopyFrom string

	// Flags is a short status string; FlagAbsent means "does not exist".
	Flags string
}

// FlagAbsent marks a FileState/ExportFile as not existing at a revision.
const FlagAbsent = "a"

// IsAbsent reports whether this file is marked absent.
func (f *ExportFile) IsAbsent() bool {
	return f != nil && f.Flags == FlagAbsent
}

// ExportCommit is one commit as received from the host repository.
type ExportCommit struct {
	// Node is the original commit hash.
	Node string

	// Immutable marks a commit (and, transitively, its ancestors) as
	// frozen; callers derive this from Requested being false.
	Immutable bool

	// Requested marks a commit as part of the caller's requested edit
	// range.
	Requested bool

	Author string

	// Date is [unix_seconds, tz_minutes].
	Date [2]int64

	Text string

	// Parents lists parent hashes; length must be <= 1.
	Parents []string

	// RelevantFiles is the pre-stack snapshot of any file this commit
	// cares about (used to seed BottomFiles).
	RelevantFiles map[string]*ExportFile

	// Files is this commit's modifications. A nil value means deletion.
	Files map[string]*ExportFile
}

// ExportStack is the ordered list of commits a host repository exports for
// editing, root first.
type ExportStack struct {
	Commits []ExportCommit
}

// ActionKind identifies the kind of ImportStack action.
type ActionKind string

const (
	ActionCommit ActionKind = "commit"
	ActionGoto   ActionKind = "goto"
	ActionReset  ActionKind = "reset"
	ActionHide   ActionKind = "hide"
)

// ImportCommit is the body of a "commit" ImportStack action.
type ImportCommit struct {
	// Mark is either a synthetic ":r<rev>" identifier for a changed
	// commit or the original hash for an unchanged parent.
	Mark string

	Author string
	Date   [2]int64
	Text   string

	// Parents lists marks or hashes of this commit's parents.
	Parents []string

	// Predecessors lists the original hashes this commit descends from.
	Predecessors []string

	// Files maps path to new content; a nil value means deletion.
	Files map[string]*ExportFile
}

// ImportAction is one entry of an ImportStack: a (kind, payload) pair.
// Exactly one of Commit (commit), Mark (goto/reset) or Nodes (hide) is
// populated, matching Kind.
type ImportAction struct {
	Kind ActionKind

	Commit *ImportCommit

	// Goto/Reset carry a mark.
	Mark string

	// Hide carries the orphaned original hashes.
	Nodes []string
}

// ImportStack is the ordered list of actions the engine hands back to
// reconcile the host repository with the edited state.
type ImportStack struct {
	Actions []ImportAction
}

// Mark returns the synthetic mark for a 0-based stack position.
func Mark(rev int) string {
	return fmt.Sprintf(":r%d", rev)
}
