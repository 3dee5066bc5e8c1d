// Package generate runs the project generation pipeline: resolve answers,
// render the template tree, record the generation, prune optional
// artifacts, initialize git, run post hooks and optionally the tests.
package generate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/GoCodeAlone/blueprint/internal/blueprint"
	"github.com/GoCodeAlone/blueprint/internal/git"
	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/prune"
	"github.com/GoCodeAlone/blueprint/internal/runner"
)

// RunTestsKey is the answer that enables the post-generation test run.
const RunTestsKey = "run_post_gen_tests"

// Options describe one generation.
type Options struct {
	BlueprintDir string
	OutputDir    string
	AnswerFiles  []string
	Overrides    map[string]string
	LookupEnv    func(string) (string, bool)
	// Prompter is nil when input is disabled.
	Prompter  blueprint.Prompter
	Overwrite bool
	NoGit     bool
	SkipHooks bool
	// RunTests forces the test run regardless of answers.
	RunTests bool

	// ToolVersion is stored in the generation record.
	ToolVersion string
	// Stdout and Stderr receive live hook and test output.
	Stdout io.Writer
	Stderr io.Writer
}

// Result describes a finished generation.
type Result struct {
	ProjectDir string
	Answers    blueprint.Answers
	Render     *blueprint.RenderResult
	RecordPath string
	Prune      *prune.Result
	// Warnings collects non-fatal git and hook failures.
	Warnings     []string
	TestsRun     bool
	TestExitCode int
}

// Generator runs the pipeline with an injectable runner.
type Generator struct {
	runner runner.Runner
	logger logging.Logger
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRunner overrides the process runner.
func WithRunner(r runner.Runner) Option {
	return func(g *Generator) { g.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Generator) { g.logger = logging.OrNop(l) }
}

// WithClock overrides the time source used for the generation record.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator backed by the exec runner.
func New(opts ...Option) *Generator {
	g := &Generator{
		runner: runner.NewExecRunner(),
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the whole pipeline. A failed test run returns the result
// together with an error wrapping ErrTestsFailed; the exit code is in
// Result.TestExitCode.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.BlueprintDir == "" {
		return nil, fmt.Errorf("%w: blueprint directory is required", ErrInvalidOptions)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	manifest, err := blueprint.LoadManifest(opts.BlueprintDir)
	if err != nil {
		return nil, err
	}

	hooks, err := g.hookCommands(manifest, opts)
	if err != nil {
		return nil, err
	}
	if err := g.checkTools(opts, hooks); err != nil {
		return nil, err
	}

	resolver := &blueprint.Resolver{
		Manifest:    manifest,
		AnswerFiles: opts.AnswerFiles,
		Overrides:   opts.Overrides,
		LookupEnv:   opts.LookupEnv,
		Prompter:    opts.Prompter,
		Logger:      g.logger,
	}
	answers, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}

	runTests := opts.RunTests || answers.Bool(RunTestsKey)
	var testCmd runner.Command
	if runTests {
		testCmd, err = runner.ParseCommand(manifest.Hooks.Test)
		if err != nil {
			return nil, err
		}
		if err := runner.RequireAll(g.runner, testCmd.Name); err != nil {
			return nil, err
		}
	}

	renderer := &blueprint.Renderer{Manifest: manifest, Overwrite: opts.Overwrite, Logger: g.logger}
	rendered, err := renderer.Render(opts.OutputDir, answers)
	if err != nil {
		return nil, err
	}
	result := &Result{ProjectDir: rendered.ProjectDir, Answers: answers, Render: rendered}

	event, err := blueprint.NewGenerationEvent(blueprint.GenerationData{
		Blueprint: manifest.Name,
		Answers:   answers,
		Versions:  blueprint.CurrentVersions(opts.ToolVersion),
		CreatedAt: g.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if result.RecordPath, err = blueprint.WriteRecord(result.ProjectDir, event); err != nil {
		return nil, err
	}

	pruner := prune.New(
		prune.WithSuffixes(manifest.Suffixes...),
		prune.WithKeep(manifest.KeepSuffix...),
		prune.WithLogger(logging.WithPrefix(g.logger, "prune")),
	)
	candidates := pruner.Expand(manifest.Prune, answers)
	if result.Prune, err = pruner.Run(result.ProjectDir, candidates); err != nil {
		return nil, err
	}

	var repo *git.Helper
	if !opts.NoGit {
		repo = git.NewHelper(result.ProjectDir,
			git.WithRunner(g.runner), git.WithLogger(logging.WithPrefix(g.logger, "git")))
		g.initRepository(ctx, repo, result)
	}

	if !opts.SkipHooks && len(hooks) > 0 {
		g.runHooks(ctx, hooks, opts, result)
		if repo != nil {
			g.commitAll(ctx, repo, manifest.Hooks.AutofixMessage, result)
		}
	}

	if runTests {
		if err := g.runTests(ctx, testCmd, opts, result); err != nil {
			return result, err
		}
	}

	g.logger.Info("Project generated", "dir", result.ProjectDir, "warnings", len(result.Warnings))
	return result, nil
}

type namedCommand struct {
	name string
	cmd  runner.Command
}

func (g *Generator) hookCommands(m *blueprint.Manifest, opts Options) ([]namedCommand, error) {
	if opts.SkipHooks {
		return nil, nil
	}
	out := make([]namedCommand, 0, len(m.Hooks.Post))
	for _, h := range m.Hooks.Post {
		cmd, err := runner.ParseCommand(h.Command)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", h.Name, err)
		}
		name := h.Name
		if name == "" {
			name = cmd.Name
		}
		out = append(out, namedCommand{name: name, cmd: cmd})
	}
	return out, nil
}

// checkTools fails before any work when git or a hook binary is missing.
func (g *Generator) checkTools(opts Options, hooks []namedCommand) error {
	var names []string
	if !opts.NoGit {
		names = append(names, git.DefaultBinary)
	}
	for _, h := range hooks {
		names = append(names, h.cmd.Name)
	}
	return runner.RequireAll(g.runner, names...)
}

func (g *Generator) warn(result *Result, msg string, err error) {
	g.logger.Warn(msg, "error", err)
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", msg, err))
}

func (g *Generator) initRepository(ctx context.Context, repo *git.Helper, result *Result) {
	if err := repo.Init(ctx); err != nil {
		g.warn(result, "git init failed", err)
		return
	}
	if err := repo.RenameBranch(ctx, "main"); err != nil {
		g.warn(result, "git branch rename failed", err)
	}
	g.commitAll(ctx, repo, "Initial commit", result)
}

func (g *Generator) commitAll(ctx context.Context, repo *git.Helper, message string, result *Result) {
	if err := repo.AddAll(ctx); err != nil {
		g.warn(result, "git add failed", err)
		return
	}
	if err := repo.Commit(ctx, message); err != nil {
		g.warn(result, "git commit failed", err)
	}
}

// runHooks runs each post hook in the project directory. A failing hook
// is a warning.
func (g *Generator) runHooks(ctx context.Context, hooks []namedCommand, opts Options, result *Result) {
	for _, h := range hooks {
		g.logger.Info("Running hook", "hook", h.name, "command", h.cmd.String())
		res, err := g.runner.Run(ctx, h.cmd.Name, h.cmd.Args, runner.Options{
			Dir:    result.ProjectDir,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		})
		if err != nil {
			g.warn(result, fmt.Sprintf("hook %s failed to run", h.name), err)
			continue
		}
		if !res.Success() {
			g.warn(result, fmt.Sprintf("hook %s failed", h.name), fmt.Errorf("exit code %d", res.ExitCode))
		}
	}
}

func (g *Generator) runTests(ctx context.Context, cmd runner.Command, opts Options, result *Result) error {
	g.logger.Info("Running post-generation tests", "command", cmd.String())
	res, err := g.runner.Run(ctx, cmd.Name, cmd.Args, runner.Options{
		Dir:    result.ProjectDir,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	result.TestsRun = true
	if err != nil {
		result.TestExitCode = 1
		return fmt.Errorf("%w: %w", ErrTestsFailed, err)
	}
	result.TestExitCode = res.ExitCode
	if !res.Success() {
		return fmt.Errorf("%w: exit code %d", ErrTestsFailed, res.ExitCode)
	}
	return nil
}
