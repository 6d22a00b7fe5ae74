package vcsio

import "fmt"

// Validate checks the shape rules spec.md §6 requires at import time:
// a single root, no merge commits, no duplicate hashes, and every parent
// hash present earlier in the stack.
func (s *ExportStack) Validate() error {
	seen := make(map[string]bool, len(s.Commits))
	roots := 0

	for i, c := range s.Commits {
		if len(c.Parents) > 1 {
			return fmt.Errorf(
				"commit %d (%s): merge commits are not supported (%d parents)",
				i, c.Node, len(c.Parents),
			)
		}

		if seen[c.Node] {
			return fmt.Errorf("duplicate commit hash %q", c.Node)
		}
		seen[c.Node] = true

		if len(c.Parents) == 0 {
			roots++
			if i != 0 {
				return fmt.Errorf(
					"commit %d (%s): non-root commit has no parents", i, c.Node,
				)
			}

			continue
		}

		parent := c.Parents[0]
		if !seen[parent] {
			return fmt.Errorf(
				"commit %d (%s): parent %q not present earlier in the stack",
				i, c.Node, parent,
			)
		}
	}

	if roots == 0 && len(s.Commits) > 0 {
		return fmt.Errorf("stack has no root commit")
	}
	if roots > 1 {
		return fmt.Errorf("stack has %d root commits, expected exactly 1", roots)
	}

	return nil
}
