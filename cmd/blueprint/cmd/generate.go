package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/blueprint/internal/generate"
)

type generateFlags struct {
	output    string
	answers   []string
	set       []string
	noInput   bool
	overwrite bool
	noGit     bool
	skipHooks bool
	runTests  bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate <blueprint-dir>",
		Short: "Generate a new project from a blueprint",
		Long: `Generate a new project from a blueprint directory.

Answers are resolved from the blueprint defaults, answer files (--answers),
BLUEPRINT_<NAME> environment variables, --set flags and finally interactive
prompts. Optional features that were not selected are pruned from the output.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", ".", "Directory where the project will be generated")
	cmd.Flags().StringSliceVar(&flags.answers, "answers", nil, "Answers file (.yaml, .json or .toml); may be repeated")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Set an answer as key=value; may be repeated")
	cmd.Flags().BoolVar(&flags.noInput, "no-input", false, "Do not prompt; use defaults and provided answers")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Render into an existing project directory")
	cmd.Flags().BoolVar(&flags.noGit, "no-git", false, "Do not initialize a git repository")
	cmd.Flags().BoolVar(&flags.skipHooks, "skip-hooks", false, "Do not run post-generation hooks")
	cmd.Flags().BoolVar(&flags.runTests, "run-tests", false, "Run the generated project's tests")

	return cmd
}

func runGenerate(cmd *cobra.Command, blueprintDir string, flags generateFlags) error {
	overrides, err := parseSet(flags.set)
	if err != nil {
		return usageError(err)
	}

	opts := generate.Options{
		BlueprintDir: blueprintDir,
		OutputDir:    flags.output,
		AnswerFiles:  flags.answers,
		Overrides:    overrides,
		LookupEnv:    os.LookupEnv,
		Overwrite:    flags.overwrite,
		NoGit:        flags.noGit,
		SkipHooks:    flags.skipHooks,
		RunTests:     flags.runTests,
		ToolVersion:  Version,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}
	if !flags.noInput {
		opts.Prompter = NewSurveyPrompter()
	}

	g := generate.New(generate.WithRunner(CommandRunner), generate.WithLogger(loggerFor(cmd)))
	res, err := g.Generate(cmd.Context(), opts)
	if errors.Is(err, generate.ErrTestsFailed) && res != nil {
		return &ExitError{Code: res.TestExitCode, Err: err}
	}
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated project '%s' in %s\n",
		res.Answers.String("project_slug"), res.ProjectDir)
	return nil
}

// parseSet turns repeated key=value flags into overrides.
func parseSet(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSet, kv)
		}
		out[key] = value
	}
	return out, nil
}
