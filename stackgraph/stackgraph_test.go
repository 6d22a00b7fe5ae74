package stackgraph_test

import (
	"testing"

	"github.com/gitstax/stax/stack"
	"github.com/gitstax/stax/stackgraph"
	"github.com/gitstax/stax/testutil"
	"github.com/stretchr/testify/require"
)

func TestCommitGraphOneNodePerCommit(t *testing.T) {
	export := testutil.Stack(
		testutil.Commit("A").File("x.txt", "1"),
		testutil.Commit("B").Parent("A").File("x.txt", "2"),
	)

	s, err := stack.New(export)
	require.NoError(t, err)

	g, err := stackgraph.CommitGraph(s)
	require.NoError(t, err)

	out := g.String()
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "r0:")
	require.Contains(t, out, "r1:")
}

func TestFileStackGraphSkipsUntouchedRevs(t *testing.T) {
	export := testutil.Stack(
		testutil.Commit("A").File("x.txt", "1"),
		testutil.Commit("B").Parent("A").File("y.txt", "unrelated"),
		testutil.Commit("C").Parent("B").File("x.txt", "2"),
	)

	s, err := stack.New(export)
	require.NoError(t, err)

	g, err := stackgraph.FileStackGraph(s, "x.txt")
	require.NoError(t, err)

	out := g.String()
	require.Contains(t, out, "x.txt @ r0")
	require.Contains(t, out, "x.txt @ r2")
	require.NotContains(t, out, "x.txt @ r1")
}
