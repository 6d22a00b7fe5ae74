// Package stackiface holds the FileStack contract and the shared error
// taxonomy at the boundary between the stack package and its concrete
// filestack implementation, so the two can depend on it without depending
// on each other.
package stackiface

import "errors"

// FileStack is the external contract of spec.md §4.2: a linear sequence of
// UTF-8 text revisions for one path. The core treats it as a black box; it
// never inspects a FileStack's internals, only calls these methods.
//
// fileRev 0 is always the stack's pre-stack (or prior-commit) baseline;
// later revs are appended as commits modify the path.
//
// Implementations must be immutable: every mutating method returns a new
// FileStack value rather than modifying the receiver.
type FileStack interface {
	// RevLength returns the number of revisions held.
	RevLength() int

	// GetRev returns the content at rev r.
	GetRev(r int) (string, error)

	// EditText replaces rev r's content. If immutable is false, downstream
	// revisions are free to reflow around the edit on a later change;
	// if true, rev r is frozen against further edits.
	EditText(r int, text string, immutable bool) (FileStack, error)

	// RemapRevs relabels revisions according to old-rev -> new-rev. A rev
	// absent from the map (or mapped to a negative value) is dropped from
	// the result.
	RemapRevs(newRevs map[int]int) (FileStack, error)

	// Revs returns the current revision numbers, in order.
	Revs() []int

	// CalculateDepMap returns, for each rev, the minimal set of earlier
	// revs its content depends upon (line-provenance analysis).
	CalculateDepMap() (map[int]map[int]struct{}, error)
}

// Error kinds from spec.md §7. Callers use errors.Is to distinguish them;
// messages are wrapped with fmt.Errorf throughout, the way the teacher CLI
// wraps git/os errors.
var (
	// ErrStructural marks a rejection of the input shape itself (multi-root,
	// merge commit, duplicate hash, unknown parent). Surfaced by
	// vcsio.ExportStack.Validate and New.
	ErrStructural = errors.New("structural rejection")

	// ErrInvariant marks a violation of I1-I7 that would only happen from a
	// programmer error (e.g. a path not tracked by BottomFiles).
	ErrInvariant = errors.New("invariant violation")

	// ErrIllegalEdit marks a precondition violation: the caller invoked
	// FoldDown/Drop/Reorder when the matching Can* predicate is false.
	ErrIllegalEdit = errors.New("illegal edit")

	// ErrDecode marks a request to materialize UTF-8 content for a file
	// that is binary.
	ErrDecode = errors.New("decode error")
)
