// Package runner provides a stub-friendly interface for running external
// commands such as git, formatters, linters and test suites.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Result holds the outcome of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Options holds optional parameters for command execution.
type Options struct {
	Dir string            // working directory
	Env map[string]string // extra environment variables, overlaid on the current environment

	// Stdout and Stderr, when set, additionally receive the live output
	// (e.g. to show a test run to the user while still capturing it).
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes external commands.
type Runner interface {
	// Run executes a command. A process that starts and exits non-zero is
	// not an error: the exit code is reported in Result. Errors are returned
	// only for execution failures (binary missing, context cancelled, I/O).
	Run(ctx context.Context, name string, args []string, opts Options) (Result, error)

	// LookPath resolves name on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures stdout/stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeTo(&stdout, opts.Stdout)
	cmd.Stderr = teeTo(&stderr, opts.Stderr)

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("%w: %s: %w", ErrExecFailed, name, err)
	}

	return result, nil
}

// LookPath resolves name on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingDependency, name)
	}
	return path, nil
}

func teeTo(capture *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return capture
	}
	return io.MultiWriter(capture, live)
}

// Command is a parsed command line: a program and its arguments.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a shell-style command line ("ruff check --fix .")
// into a Command. Quoting follows POSIX shell word splitting.
func ParseCommand(line string) (Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q: %w", ErrInvalidCommand, line, err)
	}
	if len(words) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}
	return Command{Name: words[0], Args: words[1:]}, nil
}

// String renders the command back into a shell-quoted line.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// RequireAll checks that every named binary is on PATH, returning an error
// naming all of the missing ones.
func RequireAll(r Runner, names ...string) error {
	var missing []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, err := r.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: please make sure %s installed and on PATH",
			ErrMissingDependency, describeMissing(missing))
	}
	return nil
}

func describeMissing(names []string) string {
	if len(names) == 1 {
		return names[0] + " is"
	}
	return strings.Join(names, ", ") + " are"
}
