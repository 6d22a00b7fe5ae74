package stack

import "github.com/gitstax/stax/stackiface"

// Error kinds from spec.md §7, re-exported from stackiface so both this
// package and filestack can raise and check them without depending on each
// other. Callers use errors.Is to distinguish them; messages are wrapped
// with fmt.Errorf throughout, the way the teacher CLI wraps git/os errors.
var (
	// ErrStructural marks a rejection of the input shape itself (multi-root,
	// merge commit, duplicate hash, unknown parent). Surfaced by
	// vcsio.ExportStack.Validate and New.
	ErrStructural = stackiface.ErrStructural

	// ErrInvariant marks a violation of I1-I7 that would only happen from a
	// programmer error (e.g. a path not tracked by BottomFiles).
	ErrInvariant = stackiface.ErrInvariant

	// ErrIllegalEdit marks a precondition violation: the caller invoked
	// FoldDown/Drop/Reorder when the matching Can* predicate is false.
	ErrIllegalEdit = stackiface.ErrIllegalEdit

	// ErrDecode marks a request to materialize UTF-8 content for a file
	// that is binary.
	ErrDecode = stackiface.ErrDecode
)
