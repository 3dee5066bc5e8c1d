package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/blueprint/internal/bump"
	"github.com/GoCodeAlone/blueprint/internal/metadata"
)

// NewBumpCommand creates the bump command
func NewBumpCommand() *cobra.Command {
	var opts bump.Options

	cmd := &cobra.Command{
		Use:   "bump [version]",
		Short: "Bump the project version, commit and tag it",
		Long: `Bump the version stored in the project metadata file, commit the change and
create an annotated tag. Give either an explicit version or exactly one of
--patch, --minor or --major.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Version = args[0]
			}
			opts.MetadataSet = cmd.Flags().Changed("metadata") || cmd.Flags().Changed("comment")
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			return runBump(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Patch, "patch", "p", false, "Bump the patch version")
	cmd.Flags().BoolVarP(&opts.Minor, "minor", "m", false, "Bump the minor version")
	cmd.Flags().BoolVarP(&opts.Major, "major", "M", false, "Bump the major version")

	cmd.Flags().StringVarP(&opts.Metadata, "metadata", "c", "", "Metadata appended to the new version (e.g. rc1)")
	cmd.Flags().StringVar(&opts.Metadata, "comment", "", "Alias for --metadata")
	cmd.Flags().StringVar(&opts.TagPrefix, "tag-prefix", "", "Prefix of the created tag (e.g. v)")
	cmd.Flags().BoolVarP(&opts.RunTests, "test", "t", false, "Run the tests before bumping")
	cmd.Flags().StringVar(&opts.TestCommand, "test-command", bump.DefaultTestCommand, "Command used by --test")
	cmd.Flags().BoolVarP(&opts.Push, "push", "P", false, "Push the commit and the tag")
	cmd.Flags().StringVar(&opts.Remote, "remote", bump.DefaultRemote, "Remote the tag is pushed to")
	cmd.Flags().StringVarP(&opts.RepoPath, "repo", "r", ".", "Repository path")
	cmd.Flags().StringVarP(&opts.Table, "table", "T", metadata.DefaultTable, "Metadata table holding the version")
	cmd.Flags().StringVarP(&opts.File, "file", "f", metadata.DefaultFile, "Metadata file relative to the repository")

	return cmd
}

func runBump(cmd *cobra.Command, opts bump.Options) error {
	if _, err := opts.Mode(); err != nil {
		return usageError(err)
	}

	logger := loggerFor(cmd)
	logger.Debug("Using repository", "path", opts.RepoPath)

	res, err := bump.New(bump.WithRunner(CommandRunner), bump.WithLogger(logger)).Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "New version: %s (was %s)\n", res.Current, res.Previous)
	fmt.Fprintf(out, "Created tag: %s\n", res.Tag)
	if res.Pushed {
		fmt.Fprintf(out, "Pushed commit and tag %s to %s\n", res.Tag, opts.Remote)
	}
	return nil
}
