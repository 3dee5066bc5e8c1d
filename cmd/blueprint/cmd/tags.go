package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/blueprint/internal/git"
)

// NewTagsCommand creates the tags command
func NewTagsCommand() *cobra.Command {
	var (
		repo       string
		prefix     string
		pattern    string
		latestOnly bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List version tags, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper := git.NewHelper(repo, git.WithRunner(CommandRunner), git.WithLogger(loggerFor(cmd)))
			if err := helper.CheckInstalled(); err != nil {
				return err
			}

			tags, err := helper.ListVersionTags(cmd.Context(), prefix, pattern)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No version tags found")
				return nil
			}
			if latestOnly {
				tags = tags[:1]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tVERSION\tCOMMIT\tDATE\tMESSAGE")
			for _, t := range tags {
				date := ""
				if !t.Date.IsZero() {
					date = t.Date.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Version, shortHash(t.Commit), date, t.Message)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Repository path")
	cmd.Flags().StringVar(&prefix, "tag-prefix", "", "Tag prefix in front of the version (e.g. v)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Only list tags matching this regular expression")
	cmd.Flags().BoolVar(&latestOnly, "latest", false, "Only show the newest version tag")

	return cmd
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
