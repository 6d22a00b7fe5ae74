// Package commands contains the CLI command implementations.
package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gitstax/stax/config"
	"github.com/spf13/cobra"
)

// configKey is the context key for runtime config.
type configKey struct{}

// Config holds runtime configuration for commands.
type Config struct {
	WorkDir string
	JSONOut bool
	Onto    string
	Project *config.Config
}

// getConfig retrieves config from context, or returns defaults.
func getConfig(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey{}).(Config); ok {
		return cfg
	}

	return Config{Project: config.Default()}
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var (
		workDir string
		jsonOut bool
		onto    string
	)

	cmd := &cobra.Command{
		Use:     "stax",
		Short:   "A commit-stack editing engine",
		Version: Version,
		Long: `stax tracks a linear stack of commits as a sequence of per-file
revision stacks, letting you fold, drop, reorder, and restack commits
without re-deriving history from scratch each time.

Examples:
  # List the commits in the current stack
  stax stack list --onto main

  # Show the per-file stack structure
  stax stack describe

  # Show a unified diff between two revisions of the stack
  stax stack describe --diff

  # Fold a commit into its parent
  stax stack fold 2

  # Apply a batch of edits declaratively
  stax stack apply "fold:2,drop:0"

  # Print the import-stack action list for the stack
  stax stack export --goto HEAD

  # Render the commit/file dependency graph
  stax stack graph`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			project := loadProjectConfig(workDir)

			if !cmd.Flags().Changed("onto") {
				onto = project.DefaultOnto
			}

			if !cmd.Flags().Changed("json") {
				jsonOut = project.DefaultJSON
			}

			cfg := Config{
				WorkDir: workDir,
				JSONOut: jsonOut,
				Onto:    onto,
				Project: project,
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(ctx)
		},
	}

	cmd.PersistentFlags().StringVarP(
		&workDir, "dir", "C", "",
		"run as if stax was started in this directory",
	)
	cmd.PersistentFlags().BoolVar(
		&jsonOut, "json", false,
		"output in JSON format (for machine consumption)",
	)
	cmd.PersistentFlags().StringVar(
		&onto, "onto", "HEAD",
		"base ref the stack is built onto",
	)

	cmd.AddCommand(NewStackCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func loadProjectConfig(workDir string) *config.Config {
	dir := workDir
	if dir == "" {
		dir = "."
	}

	cfg, err := config.Load(filepath.Join(dir, ".stax.yml"))
	if err != nil {
		return config.Default()
	}

	return cfg
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
