// Package bump implements the version bump workflow: read the version from
// a TOML metadata table, compute the next version, write it back, then
// commit, tag and optionally push.
package bump

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/GoCodeAlone/blueprint/internal/git"
	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/metadata"
	"github.com/GoCodeAlone/blueprint/internal/runner"
	"github.com/GoCodeAlone/blueprint/internal/semver"
)

const (
	DefaultTestCommand = "pytest tests"
	DefaultRemote      = "origin"
)

// Mode selects how the new version is computed.
type Mode int

const (
	ModeExplicit Mode = iota
	ModePatch
	ModeMinor
	ModeMajor
)

func (m Mode) String() string {
	switch m {
	case ModePatch:
		return "patch"
	case ModeMinor:
		return "minor"
	case ModeMajor:
		return "major"
	default:
		return "explicit"
	}
}

// Options are the inputs of one bump.
type Options struct {
	// Version is an explicit new version; mutually exclusive with the
	// increment flags.
	Version string
	Patch   bool
	Minor   bool
	Major   bool

	Metadata    string
	// MetadataSet marks Metadata as given even when it is empty, so an
	// explicit empty value is rejected instead of ignored.
	MetadataSet bool
	TagPrefix   string

	RunTests    bool
	TestCommand string

	Push   bool
	Remote string

	RepoPath string
	Table    string
	// File is the metadata file relative to RepoPath.
	File string

	// Stdout and Stderr receive live test output.
	Stdout io.Writer
	Stderr io.Writer
}

// Mode returns the selected mode, or ErrUsage unless exactly one is set.
func (o Options) Mode() (Mode, error) {
	var modes []Mode
	if o.Version != "" {
		modes = append(modes, ModeExplicit)
	}
	if o.Patch {
		modes = append(modes, ModePatch)
	}
	if o.Minor {
		modes = append(modes, ModeMinor)
	}
	if o.Major {
		modes = append(modes, ModeMajor)
	}
	if len(modes) != 1 {
		return 0, ErrUsage
	}
	return modes[0], nil
}

func (o Options) hasMetadata() bool {
	return o.MetadataSet || o.Metadata != ""
}

func (o Options) withDefaults() Options {
	if o.RepoPath == "" {
		o.RepoPath = "."
	}
	if o.Table == "" {
		o.Table = metadata.DefaultTable
	}
	if o.File == "" {
		o.File = metadata.DefaultFile
	}
	if o.TestCommand == "" {
		o.TestCommand = DefaultTestCommand
	}
	if o.Remote == "" {
		o.Remote = DefaultRemote
	}
	return o
}

// VCS is the version control surface the workflow needs. *git.Helper
// implements it.
type VCS interface {
	CheckInstalled() error
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context) error
	PushTag(ctx context.Context, remote, tag string) error
}

var _ VCS = (*git.Helper)(nil)

// Result reports what a bump did.
type Result struct {
	Previous semver.Version
	Current  semver.Version
	Tag      string
	File     string
	Pushed   bool
	// Warnings collects git failures; they do not stop the workflow.
	Warnings []string
}

// Bumper runs the workflow.
type Bumper struct {
	runner runner.Runner
	logger logging.Logger
	vcs    func(repoPath string) VCS
}

// Option configures a Bumper.
type Option func(*Bumper)

// WithRunner overrides the process runner used for tests and git.
func WithRunner(r runner.Runner) Option {
	return func(b *Bumper) { b.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(b *Bumper) { b.logger = logging.OrNop(l) }
}

// WithVCS replaces the git helper factory.
func WithVCS(factory func(repoPath string) VCS) Option {
	return func(b *Bumper) { b.vcs = factory }
}

// New creates a Bumper that drives git through the configured runner.
func New(opts ...Option) *Bumper {
	b := &Bumper{
		runner: runner.NewExecRunner(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.vcs == nil {
		b.vcs = func(repoPath string) VCS {
			return git.NewHelper(repoPath,
				git.WithRunner(b.runner), git.WithLogger(logging.WithPrefix(b.logger, "git")))
		}
	}
	return b
}

// Run bumps the version. Validation, the git check and the test pre-check
// all happen before the metadata file is touched.
func (b *Bumper) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	var explicit semver.Version
	if mode == ModeExplicit {
		if explicit, err = semver.Parse(opts.Version); err != nil {
			return nil, err
		}
	}
	if opts.hasMetadata() {
		if _, err := semver.MustParse("0.0.0").WithMetadata(opts.Metadata); err != nil {
			return nil, err
		}
	}

	vcs := b.vcs(opts.RepoPath)
	if err := vcs.CheckInstalled(); err != nil {
		return nil, err
	}

	b.logger.Debug("Using repository", "path", opts.RepoPath)

	if opts.RunTests {
		if err := b.runTests(ctx, opts); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(opts.RepoPath, opts.File)
	file, err := metadata.Load(path)
	if err != nil {
		return nil, err
	}
	raw, err := file.Version(opts.Table)
	if err != nil {
		return nil, err
	}
	previous, err := semver.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("current version in %s: %w", opts.File, err)
	}
	b.logger.Debug("Previous version read", "file", opts.File, "version", previous.String())

	next := Next(previous, mode, explicit)
	if opts.hasMetadata() {
		if next, err = next.WithMetadata(opts.Metadata); err != nil {
			return nil, err
		}
	}

	if err := file.SetVersion(opts.Table, next.String()); err != nil {
		return nil, err
	}
	if err := file.Save(); err != nil {
		return nil, err
	}
	b.logger.Info("Updated version", "file", opts.File, "from", previous.String(), "to", next.String())

	result := &Result{
		Previous: previous,
		Current:  next,
		Tag:      opts.TagPrefix + next.String(),
		File:     path,
	}
	message := "Update version to " + next.String()

	b.step(result, "git add failed", vcs.Add(ctx, opts.File))
	b.step(result, "git commit failed", vcs.Commit(ctx, message))
	b.step(result, "git tag failed", vcs.Tag(ctx, result.Tag, message))
	b.logger.Info("Created tag", "tag", result.Tag)

	if opts.Push {
		pushErr := vcs.Push(ctx)
		b.step(result, "git push failed", pushErr)
		tagErr := vcs.PushTag(ctx, opts.Remote, result.Tag)
		b.step(result, "git push tag failed", tagErr)
		result.Pushed = pushErr == nil && tagErr == nil
		if result.Pushed {
			b.logger.Info("Pushed commit and tag", "remote", opts.Remote, "tag", result.Tag)
		}
	}

	return result, nil
}

// Next computes the version following current for mode. explicit is
// returned as is in ModeExplicit.
func Next(current semver.Version, mode Mode, explicit semver.Version) semver.Version {
	switch mode {
	case ModePatch:
		return current.NextPatch()
	case ModeMinor:
		return current.NextMinor()
	case ModeMajor:
		return current.NextMajor()
	default:
		return explicit
	}
}

func (b *Bumper) step(result *Result, msg string, err error) {
	if err == nil {
		return
	}
	b.logger.Warn(msg, "error", err)
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", msg, err))
}

func (b *Bumper) runTests(ctx context.Context, opts Options) error {
	cmd, err := runner.ParseCommand(opts.TestCommand)
	if err != nil {
		return err
	}
	if err := runner.RequireAll(b.runner, cmd.Name); err != nil {
		return err
	}

	b.logger.Info("Running tests before bump", "command", cmd.String())
	res, err := b.runner.Run(ctx, cmd.Name, cmd.Args, runner.Options{
		Dir:    opts.RepoPath,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTestsFailed, err)
	}
	if !res.Success() {
		return fmt.Errorf("%w: exit code %d", ErrTestsFailed, res.ExitCode)
	}
	return nil
}
