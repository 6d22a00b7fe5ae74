package stack

import (
	"fmt"
	"strings"
)

// CanFoldDown reports whether rev may be folded into its parent (spec.md
// §4.7.1): rev must have a single mutable parent with no other child, and
// rev itself must be mutable.
func (s *State) CanFoldDown(rev Rev) (bool, error) {
	if rev <= 0 || int(rev) >= s.Len() {
		return false, nil
	}

	c, err := s.Commit(rev)
	if err != nil {
		return false, err
	}

	if len(c.Parents) != 1 || !c.ImmutableKind.foldable() {
		return false, nil
	}

	parentRev := c.Parents[0]

	parent, err := s.Commit(parentRev)
	if err != nil {
		return false, err
	}

	if !parent.ImmutableKind.foldable() {
		return false, nil
	}

	children := 0

	for _, cc := range s.commits {
		if len(cc.Parents) == 1 && cc.Parents[0] == parentRev {
			children++
		}
	}

	return children == 1, nil
}

// FoldDown merges rev into its sole parent (spec.md §4.7.1), then drops rev.
func (s *State) FoldDown(rev Rev) (*State, error) {
	ok, err := s.CanFoldDown(rev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: fold-down(%d): precondition failed", ErrIllegalEdit, rev)
	}

	child, err := s.Commit(rev)
	if err != nil {
		return nil, err
	}

	parentRev := child.Parents[0]

	parent, err := s.Commit(parentRev)
	if err != nil {
		return nil, err
	}

	grandparentRev := RevBottom
	if len(parent.Parents) == 1 {
		grandparentRev = parent.Parents[0]
	}

	merged := make(map[string]FileState, len(parent.Files)+len(child.Files))
	for path, fs := range parent.Files {
		merged[path] = fs
	}

	for path, cf := range child.Files {
		resolved := cf

		if cf.CopyFrom != "" {
			if pf, ok := parent.Files[cf.CopyFrom]; ok && pf.CopyFrom != "" {
				resolved.CopyFrom = pf.CopyFrom
			}

			if resolved.CopyFrom != "" {
				gf, err := s.getFile(grandparentRev, resolved.CopyFrom)
				if err == nil && gf.Absent() {
					resolved.CopyFrom = ""
				}
			}
		}

		final, err := s.resolveLazy(resolved)
		if err != nil {
			return nil, err
		}

		gpFile, err := s.getFile(grandparentRev, path)
		if err != nil {
			return nil, err
		}

		gpResolved, err := s.resolveLazy(gpFile)
		if err != nil {
			return nil, err
		}

		if final.contentEqual(gpResolved) {
			delete(merged, path)
			continue
		}

		merged[path] = final
	}

	mergedText := parent.Text
	if meaningfulMessage(child.Text) {
		mergedText = parent.Text + "\n\n" + child.Text
	}

	newParent := parent.clone()
	newParent.Files = merged
	newParent.Text = mergedText
	newParent.Date = child.Date

	for node := range child.OriginalNodes {
		newParent.OriginalNodes[node] = true
	}

	working := make([]*CommitState, len(s.commits))
	for i, c := range s.commits {
		switch c.Rev {
		case parentRev:
			working[i] = newParent
		case rev:
			nc := c.clone()
			nc.Files = map[string]FileState{}
			working[i] = nc
		default:
			working[i] = c
		}
	}

	intermediate := &State{
		commits:        working,
		bottom:         s.bottom,
		original:       s.original,
		requestedOrder: s.requestedOrder,
	}

	if err := intermediate.rebuildFileStacks(); err != nil {
		return nil, err
	}

	return intermediate.Drop(rev)
}

// meaningfulMessage reports whether a fold child's commit message is worth
// preserving (spec.md §4.7.1): contains whitespace, or is longer than 20
// characters.
func meaningfulMessage(text string) bool {
	return strings.ContainsAny(text, " \t\n") || len(text) > 20
}
