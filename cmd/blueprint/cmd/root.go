package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/runner"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// CommandRunner executes git, hooks and tests. Tests replace it with a
// runner.FakeRunner.
var CommandRunner runner.Runner = runner.NewExecRunner()

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("Blueprint CLI v%s (commit: %s, built on: %s)", Version, Commit, Date)
}

// NewRootCommand creates the root command for the blueprint application
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Blueprint - generate service repositories and release them",
		Long: `Blueprint generates new backend-service repositories from a parameterized
blueprint directory and bumps, commits and tags semantic versions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Increase output verbosity")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewBumpCommand())
	cmd.AddCommand(NewTagsCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	}
}

// loggerFor builds the logger for a command from the --verbose flag.
func loggerFor(cmd *cobra.Command) logging.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.NewLogger(cmd.ErrOrStderr(), verbose)
}
