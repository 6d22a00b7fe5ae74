// Package stackgraph renders a stack.State's commit-dependency structure
// and per-file-stack revision chains as Graphviz dot output, for "stax
// stack graph".
package stackgraph

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/gitstax/stax/stack"
)

// CommitGraph builds a directed graph of s's commits: one node per
// commit (labelled with its rev and message), a solid edge for the parent
// chain, and a dashed edge for every extra structural/content dependency
// DepMap reports (spec.md §4.6).
func CommitGraph(s *stack.State) (*dot.Graph, error) {
	g := dot.NewGraph(dot.Directed)

	nodes := make(map[stack.Rev]dot.Node, s.Len())

	for rev := 0; rev < s.Len(); rev++ {
		c, err := s.Commit(stack.Rev(rev))
		if err != nil {
			return nil, err
		}

		label := fmt.Sprintf("r%d: %s", rev, firstLine(c.Text))
		n := g.Node(label)
		nodes[stack.Rev(rev)] = n
	}

	for rev := 0; rev < s.Len(); rev++ {
		c, err := s.Commit(stack.Rev(rev))
		if err != nil {
			return nil, err
		}

		for _, p := range c.Parents {
			g.Edge(nodes[p], nodes[stack.Rev(rev)])
		}
	}

	deps, err := s.DepMap()
	if err != nil {
		return nil, err
	}

	for rev, depSet := range deps {
		for dep := range depSet {
			if isParent(s, rev, dep) {
				continue
			}

			g.Edge(nodes[dep], nodes[rev], "dep").Attr("style", "dashed")
		}
	}

	return g, nil
}

// isParent reports whether parent is rev's direct parent, so CommitGraph
// doesn't draw a redundant dashed dependency edge over a solid parent one.
func isParent(s *stack.State, rev, parent stack.Rev) bool {
	c, err := s.Commit(rev)
	if err != nil {
		return false
	}

	for _, p := range c.Parents {
		if p == parent {
			return true
		}
	}

	return false
}

// firstLine returns text's first line, truncated to keep node labels
// readable.
func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}

	const maxLen = 60
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}

	return text
}

// FileStackGraph builds a small chain graph for one path: a node per commit
// that modifies path, labelled "<path> @ r<rev>", chained in stack order.
// The pre-stack baseline revision is not drawn, and renames are not
// followed.
func FileStackGraph(s *stack.State, path string) (*dot.Graph, error) {
	g := dot.NewGraph(dot.Directed)

	var prev *dot.Node

	for rev := 0; rev < s.Len(); rev++ {
		c, err := s.Commit(stack.Rev(rev))
		if err != nil {
			return nil, err
		}

		if _, ok := c.Files[path]; !ok {
			continue
		}

		label := fmt.Sprintf("%s @ r%d", path, rev)
		n := g.Node(label)

		if prev != nil {
			g.Edge(*prev, n)
		}

		cp := n
		prev = &cp
	}

	return g, nil
}
