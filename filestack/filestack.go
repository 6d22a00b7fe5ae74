// Package filestack implements the stackiface.FileStack contract: a linear,
// immutable sequence of UTF-8 text revisions for a single path, along with
// the per-line dependency analysis spec.md §4.2/§4.6 treats as a black box.
package filestack

import (
	"fmt"

	"github.com/gitstax/stax/stackiface"
)

// Stack is the concrete, persistent implementation of stackiface.FileStack.
// Every mutating method returns a new *Stack; the receiver is never
// modified, so a Stack can be freely shared across states.
type Stack struct {
	// revs holds content indexed by its current rev number 0..len-1.
	revs []string

	// frozen marks revs that may not be edited again (immutable=true was
	// passed to a prior EditText call).
	frozen map[int]bool
}

// New constructs a file stack from its revisions, fileRev 0 first.
func New(revisions []string) *Stack {
	return &Stack{
		revs:   append([]string(nil), revisions...),
		frozen: map[int]bool{},
	}
}

// RevLength returns the number of revisions held.
func (s *Stack) RevLength() int { return len(s.revs) }

// GetRev returns the content at rev r.
func (s *Stack) GetRev(r int) (string, error) {
	if r < 0 || r >= len(s.revs) {
		return "", fmt.Errorf("%w: file stack rev %d out of range [0,%d)",
			stackiface.ErrInvariant, r, len(s.revs))
	}

	return s.revs[r], nil
}

// EditText replaces rev r's content, returning a new Stack.
func (s *Stack) EditText(r int, text string, immutable bool) (stackiface.FileStack, error) {
	if r < 0 || r >= len(s.revs) {
		return nil, fmt.Errorf("%w: file stack rev %d out of range [0,%d)",
			stackiface.ErrInvariant, r, len(s.revs))
	}
	if s.frozen[r] {
		return nil, fmt.Errorf(
			"%w: file stack rev %d is immutable", stackiface.ErrIllegalEdit, r,
		)
	}

	next := s.cloneShallow()
	next.revs[r] = text
	if immutable {
		next.frozen[r] = true
	}

	return next, nil
}

// RemapRevs relabels revisions according to oldRev -> newRev, dropping any
// rev that is absent from the map or mapped to a negative value.
func (s *Stack) RemapRevs(newRevs map[int]int) (stackiface.FileStack, error) {
	maxNew := -1
	for old, nw := range newRevs {
		if old < 0 || old >= len(s.revs) {
			return nil, fmt.Errorf(
				"%w: remap references out-of-range rev %d", stackiface.ErrInvariant, old,
			)
		}
		if nw > maxNew {
			maxNew = nw
		}
	}

	out := make([]string, maxNew+1)
	outFrozen := map[int]bool{}
	filled := make([]bool, maxNew+1)

	for old, nw := range newRevs {
		if nw < 0 {
			continue
		}
		out[nw] = s.revs[old]
		filled[nw] = true
		if s.frozen[old] {
			outFrozen[nw] = true
		}
	}

	for i, ok := range filled {
		if !ok {
			return nil, fmt.Errorf(
				"%w: remap leaves rev %d unfilled", stackiface.ErrInvariant, i,
			)
		}
	}

	return &Stack{revs: out, frozen: outFrozen}, nil
}

// Revs returns the current revision numbers in order.
func (s *Stack) Revs() []int {
	out := make([]int, len(s.revs))
	for i := range out {
		out[i] = i
	}

	return out
}

func (s *Stack) cloneShallow() *Stack {
	next := &Stack{
		revs:   append([]string(nil), s.revs...),
		frozen: make(map[int]bool, len(s.frozen)),
	}
	for k, v := range s.frozen {
		next.frozen[k] = v
	}

	return next
}
