package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGitNotInstalled = errors.New("git is not installed")
	ErrCommandFailed   = errors.New("git command failed")
	ErrInvalidPattern  = errors.New("invalid tag pattern")
	ErrNoVersionTags   = errors.New("no version tags found")
)

// CommandError describes a failed git invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s", strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
