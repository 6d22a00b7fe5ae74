package stack

import "fmt"

// CanDrop reports whether rev may be dropped (spec.md §4.7.2): the commit
// is mutable, and no other commit's dependency set contains it.
func (s *State) CanDrop(rev Rev) (bool, error) {
	c, err := s.Commit(rev)
	if err != nil {
		return false, err
	}

	if !c.ImmutableKind.foldable() {
		return false, nil
	}

	dm, err := s.DepMap()
	if err != nil {
		return false, err
	}

	for r, deps := range dm {
		if r == rev {
			continue
		}

		if _, ok := deps[rev]; ok {
			return false, nil
		}
	}

	return true, nil
}

// Drop removes rev from the stack (spec.md §4.7.2), shifting later revs
// down and rebuilding file stacks from scratch.
func (s *State) Drop(rev Rev) (*State, error) {
	ok, err := s.CanDrop(rev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: drop(%d): precondition failed", ErrIllegalEdit, rev)
	}

	working := s.UseFileStack()

	dropped, err := working.Commit(rev)
	if err != nil {
		return nil, err
	}

	remap := make(map[Rev]Rev, len(working.commits))

	next := Rev(0)
	for _, c := range working.commits {
		if c.Rev == rev {
			continue
		}

		remap[c.Rev] = next
		next++
	}

	newCommits := make([]*CommitState, 0, len(working.commits)-1)

	for _, c := range working.commits {
		if c.Rev == rev {
			continue
		}

		nc := c.clone()
		nc.Rev = remap[c.Rev]

		if len(nc.Parents) == 1 {
			p := nc.Parents[0]
			if p == rev {
				if len(dropped.Parents) == 1 {
					nc.Parents = []Rev{remap[dropped.Parents[0]]}
				} else {
					nc.Parents = nil
				}
			} else {
				nc.Parents = []Rev{remap[p]}
			}
		}

		newCommits = append(newCommits, nc)
	}

	result := &State{
		commits:        newCommits,
		bottom:         s.bottom,
		original:       s.original,
		requestedOrder: s.requestedOrder,
	}

	if err := result.rebuildFileStacks(); err != nil {
		return nil, err
	}

	return result, nil
}
