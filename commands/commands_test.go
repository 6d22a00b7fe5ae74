package commands_test

import (
	"bytes"
	"testing"

	"github.com/gitstax/stax/commands"
	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	root := commands.NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	require.True(t, names["stack"])
	require.True(t, names["version"])
}

func TestStackCmdRegistersSubcommands(t *testing.T) {
	stackCmd := commands.NewStackCmd()

	names := map[string]bool{}
	for _, c := range stackCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"list", "describe", "fold", "drop", "reorder",
		"move-up", "move-down", "apply", "export", "graph",
	} {
		require.True(t, names[want], "missing stack subcommand %q", want)
	}
}

func TestVersionCmdPrintsVersion(t *testing.T) {
	root := commands.NewRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "stax")
}
