package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gitstax/stax/diff"
	"github.com/gitstax/stax/editspec"
	"github.com/gitstax/stax/output"
	"github.com/gitstax/stax/stack"
	"github.com/gitstax/stax/stackgraph"
	"github.com/gitstax/stax/vcsadapter"
	"github.com/spf13/cobra"
)

// NewStackCmd creates the "stack" command group.
func NewStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Inspect and edit the commit stack",
	}

	cmd.AddCommand(newStackListCmd())
	cmd.AddCommand(newStackDescribeCmd())
	cmd.AddCommand(newStackFoldCmd())
	cmd.AddCommand(newStackDropCmd())
	cmd.AddCommand(newStackReorderCmd())
	cmd.AddCommand(newStackMoveCmd(editspec.OpMoveUp))
	cmd.AddCommand(newStackMoveCmd(editspec.OpMoveDown))
	cmd.AddCommand(newStackApplyCmd())
	cmd.AddCommand(newStackExportCmd())
	cmd.AddCommand(newStackGraphCmd())

	return cmd
}

// openStack opens the repository at cfg.WorkDir and builds the in-memory
// stack.State spanning from cfg.Onto (exclusive) to HEAD (inclusive). When
// cfg.Onto resolves to HEAD itself, HEAD's whole ancestry is loaded.
func openStack(cfg Config) (*vcsadapter.Adapter, *stack.State, error) {
	dir := cfg.WorkDir
	if dir == "" {
		dir = "."
	}

	adapter, err := vcsadapter.Open(dir)
	if err != nil {
		return nil, nil, err
	}

	onto := cfg.Onto
	if onto == "" {
		onto = "HEAD"
	}

	ontoHash, err := adapter.ResolveRef(onto)
	if err != nil {
		return nil, nil, err
	}

	headHash, err := adapter.ResolveRef("HEAD")
	if err != nil {
		return nil, nil, err
	}

	fromHash := ontoHash
	if ontoHash == headHash {
		fromHash = ""
	}

	export, err := adapter.Export(fromHash, headHash)
	if err != nil {
		return nil, nil, err
	}

	s, err := stack.New(export)
	if err != nil {
		return nil, nil, err
	}

	return adapter, s, nil
}

func newStackListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the commits that would be restacked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			_, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			return writeStackList(cmd.Context(), cmd.OutOrStdout(), s)
		},
	}

	return cmd
}

func writeStackList(ctx context.Context, w io.Writer, s *stack.State) error {
	cfg := getConfig(ctx)
	if cfg.JSONOut {
		return output.FormatStackListJSON(w, s)
	}

	return output.FormatStackListText(w, s)
}

func newStackDescribeCmd() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the per-file stack structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			_, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			if showDiff {
				return writeStackDiff(cmd.Context(), cmd.OutOrStdout(), s)
			}

			if cfg.JSONOut {
				return output.FormatStackDescribeJSON(cmd.OutOrStdout(), s)
			}

			return output.FormatStackDescribeText(cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false,
		"render a unified diff between the first and last revision of each touched file")

	return cmd
}

func writeStackDiff(ctx context.Context, w io.Writer, s *stack.State) error {
	diffText, err := s.DiffFileStacks()
	if err != nil {
		return err
	}

	parsed, err := diff.Parse(diffText)
	if err != nil {
		return err
	}

	cfg := getConfig(ctx)
	if cfg.JSONOut {
		return output.FormatJSON(w, parsed)
	}

	return output.FormatText(w, parsed, output.DefaultTextOptions())
}

func newStackFoldCmd() *cobra.Command {
	return newSingleRevCmd("fold", "Fold a commit into its parent", editspec.OpFold)
}

func newStackDropCmd() *cobra.Command {
	return newSingleRevCmd("drop", "Drop a commit from the stack", editspec.OpDrop)
}

func newStackMoveCmd(op editspec.OpType) *cobra.Command {
	use := "move-up"
	short := "Move a commit up one position"
	if op == editspec.OpMoveDown {
		use = "move-down"
		short = "Move a commit down one position"
	}

	return newSingleRevCmd(use, short, op)
}

func newSingleRevCmd(use, short string, op editspec.OpType) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <rev>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse rev %q: %w", args[0], err)
			}

			cfg := getConfig(cmd.Context())

			adapter, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			spec := &editspec.Spec{Ops: []editspec.Op{{Op: op, Rev: stack.Rev(rev)}}}

			result, err := spec.Apply(s)
			if err != nil {
				return err
			}

			return exportAndApply(cmd.Context(), cmd.OutOrStdout(), adapter, result)
		},
	}
}

func newStackReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <order>",
		Short: "Reorder the commit stack",
		Long:  "Reorder takes a semicolon-separated list of revs, e.g. \"0;2;1\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := editspec.ParseCLISpec([]string{"reorder:" + args[0]})
			if err != nil {
				return err
			}

			cfg := getConfig(cmd.Context())

			adapter, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			result, err := spec.Apply(s)
			if err != nil {
				return err
			}

			return exportAndApply(cmd.Context(), cmd.OutOrStdout(), adapter, result)
		},
	}
}

func newStackApplyCmd() *cobra.Command {
	var specFile string

	cmd := &cobra.Command{
		Use:   "apply [spec]",
		Short: "Apply a declarative batch of edits",
		Long: `Apply a comma-separated CLI-shorthand edit batch, e.g.
"fold:2,drop:0", or a JSON spec file via --spec.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				spec *editspec.Spec
				err  error
			)

			switch {
			case specFile != "":
				data, readErr := readFile(specFile)
				if readErr != nil {
					return readErr
				}

				spec, err = editspec.ParseSpec(data)
			case len(args) == 1:
				spec, err = editspec.ParseCLISpec(strings.Split(args[0], ","))
			default:
				return fmt.Errorf("provide a CLI-shorthand spec argument or --spec <file>")
			}

			if err != nil {
				return err
			}

			cfg := getConfig(cmd.Context())

			adapter, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			result, err := spec.Apply(s)
			if err != nil {
				return err
			}

			return exportAndApply(cmd.Context(), cmd.OutOrStdout(), adapter, result)
		},
	}

	cmd.Flags().StringVar(&specFile, "spec", "", "path to a JSON edit spec")

	return cmd
}

func newStackExportCmd() *cobra.Command {
	var (
		gotoRef       string
		preserveDirty bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the import-stack action list for the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			adapter, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			gotoHash := ""
			if gotoRef != "" {
				gotoHash, err = adapter.ResolveRef(gotoRef)
				if err != nil {
					return err
				}
			}

			imp, err := s.CalculateImportStack(gotoHash, preserveDirty)
			if err != nil {
				return err
			}

			if cfg.JSONOut {
				return output.FormatImportStackJSON(cmd.OutOrStdout(), imp)
			}

			return output.FormatImportStackText(cmd.OutOrStdout(), imp)
		},
	}

	cmd.Flags().StringVar(&gotoRef, "goto", "", "ref the host repository's HEAD should land on after export")
	cmd.Flags().BoolVar(&preserveDirty, "preserve-dirty", false, "reset rather than check out, preserving uncommitted changes")

	return cmd
}

func newStackGraphCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the commit/file dependency graph as Graphviz dot",
		Long: `Render the commit dependency graph (or, with --file, one path's
file-stack chain) as Graphviz dot source.

With --json, prints a plain-text one-line-per-commit dependency summary
instead of dot source; that summary is not JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			_, s, err := openStack(cfg)
			if err != nil {
				return err
			}

			if cfg.JSONOut {
				return output.FormatGraphSummaryText(cmd.OutOrStdout(), s)
			}

			if path != "" {
				g, err := stackgraph.FileStackGraph(s, path)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), g.String())

				return nil
			}

			g, err := stackgraph.CommitGraph(s)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), g.String())

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "render the file-stack graph for this path instead of the commit graph")

	return cmd
}

// exportAndApply writes result back onto the host repository as new
// commits landing HEAD on the new top of stack, then prints the action
// list that was replayed.
func exportAndApply(ctx context.Context, w io.Writer, adapter *vcsadapter.Adapter, result *stack.State) error {
	cfg := getConfig(ctx)

	onto := cfg.Onto
	if onto == "" {
		onto = "HEAD"
	}

	baseHash, err := adapter.ResolveRef(onto)
	if err != nil {
		return err
	}

	imp, err := result.CalculateImportStack("", false)
	if err != nil {
		return err
	}

	if err := adapter.Apply(imp, baseHash); err != nil {
		return err
	}

	if cfg.JSONOut {
		return output.FormatImportStackJSON(w, imp)
	}

	return output.FormatImportStackText(w, imp)
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
