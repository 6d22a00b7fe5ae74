package stack

import (
	"fmt"
	"sort"
)

// CanReorder reports whether order (source revs in target positions) is a
// legal reordering of the stack (spec.md §4.7.3).
func (s *State) CanReorder(order []Rev) (bool, error) {
	if !s.IsStackLinear() {
		return false, nil
	}

	n := s.Len()
	if len(order) != n {
		return false, nil
	}

	seen := make([]bool, n)
	newPos := make([]Rev, n)

	for i, r := range order {
		if r < 0 || int(r) >= n || seen[r] {
			return false, nil
		}

		seen[r] = true
		newPos[r] = Rev(i)
	}

	for _, c := range s.commits {
		if c.ImmutableKind == ImmutableHash && newPos[c.Rev] != c.Rev {
			return false, nil
		}
	}

	dm, err := s.DepMap()
	if err != nil {
		return false, err
	}

	for rev, deps := range dm {
		for dep := range deps {
			if newPos[dep] > newPos[rev] {
				return false, nil
			}
		}
	}

	return true, nil
}

// Reorder rewrites the stack to the given commit permutation (spec.md
// §4.7.3), then rebuilds file stacks from scratch.
func (s *State) Reorder(order []Rev) (*State, error) {
	ok, err := s.CanReorder(order)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: reorder: precondition failed", ErrIllegalEdit)
	}

	working := s.UseFileStack()

	permuted := make([]*CommitState, len(order))

	for i, r := range order {
		c, err := working.Commit(r)
		if err != nil {
			return nil, err
		}

		nc := c.clone()
		nc.Rev = Rev(i)

		if i == 0 {
			nc.Parents = nil
		} else {
			nc.Parents = []Rev{Rev(i - 1)}
		}

		permuted[i] = nc
	}

	result := &State{
		commits:        permuted,
		bottom:         s.bottom,
		original:       s.original,
		requestedOrder: s.requestedOrder,
	}

	if err := result.rebuildFileStacks(); err != nil {
		return nil, err
	}

	return result, nil
}

// reorderedRevs returns the identity permutation with positions i and i+1
// swapped (spec.md §4.7.4).
func reorderedRevs(n int, i int) []Rev {
	order := make([]Rev, n)
	for j := range order {
		order[j] = Rev(j)
	}

	order[i], order[i+1] = order[i+1], order[i]

	return order
}

// CanMoveUp reports whether rev may move to the position immediately
// before it.
func (s *State) CanMoveUp(rev Rev) (bool, error) {
	if rev <= 0 || int(rev) >= s.Len() {
		return false, nil
	}

	return s.CanReorder(reorderedRevs(s.Len(), int(rev)-1))
}

// CanMoveDown reports whether rev may move to the position immediately
// after it.
func (s *State) CanMoveDown(rev Rev) (bool, error) {
	if rev < 0 || int(rev) >= s.Len()-1 {
		return false, nil
	}

	return s.CanReorder(reorderedRevs(s.Len(), int(rev)))
}

// MoveUp swaps rev with its predecessor.
func (s *State) MoveUp(rev Rev) (*State, error) {
	return s.Reorder(reorderedRevs(s.Len(), int(rev)-1))
}

// MoveDown swaps rev with its successor.
func (s *State) MoveDown(rev Rev) (*State, error) {
	return s.Reorder(reorderedRevs(s.Len(), int(rev)))
}

// CompactSequence maps a sequence of distinct integers onto 0..n-1,
// preserving relative order (e.g. [0,100,50] -> [0,2,1]). Named in
// spec.md §4.7.3 as the file-stack-reorder remap helper; this
// implementation rebuilds file stacks from scratch instead of remapping
// existing ones in place (see DESIGN.md), so the helper is exposed as a
// standalone, independently useful utility rather than called from
// Reorder itself.
func CompactSequence(list []int) []int {
	type entry struct {
		idx int
		val int
	}

	entries := make([]entry, len(list))
	for i, v := range list {
		entries[i] = entry{idx: i, val: v}
	}

	sort.Slice(entries, func(a, b int) bool { return entries[a].val < entries[b].val })

	rank := make([]int, len(list))
	for newRank, e := range entries {
		rank[e.idx] = newRank
	}

	return rank
}
