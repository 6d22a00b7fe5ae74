package filestack_test

import (
	"testing"

	"github.com/gitstax/stax/filestack"
	"github.com/stretchr/testify/require"
)

func TestCalculateDepMapSingleRevHasNoDeps(t *testing.T) {
	s := filestack.New([]string{"line one\nline two\n"})

	dm, err := s.CalculateDepMap()
	require.NoError(t, err)

	require.Len(t, dm, 1)
	require.Empty(t, dm[0])
}

func TestCalculateDepMapUnchangedLinesKeepOrigin(t *testing.T) {
	s := filestack.New([]string{
		"alpha\nbeta\ngamma\n",
		"alpha\nbeta\ngamma\nextra\n",
		"alpha\nbeta\nextra\n",
	})

	dm, err := s.CalculateDepMap()
	require.NoError(t, err)

	require.Empty(t, dm[0])
	require.Contains(t, dm[1], 0)

	// rev 2 drops "gamma" but keeps "alpha", "beta" (from rev 0) and
	// "extra" (introduced at rev 1), so it depends on rev 0 and rev 1.
	require.Contains(t, dm[2], 0)
	require.Contains(t, dm[2], 1)
}

func TestCalculateDepMapFullReplacementHasNoDeps(t *testing.T) {
	s := filestack.New([]string{
		"foo\nbar\n",
		"baz\nqux\n",
	})

	dm, err := s.CalculateDepMap()
	require.NoError(t, err)

	require.Empty(t, dm[1])
}

func TestCalculateDepMapEmptyStack(t *testing.T) {
	s := filestack.New(nil)

	dm, err := s.CalculateDepMap()
	require.NoError(t, err)
	require.Empty(t, dm)
}
