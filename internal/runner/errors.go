package runner

import "errors"

var (
	// ErrMissingDependency is returned when a required binary is not on PATH.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrExecFailed is returned when a process could not be run at all.
	ErrExecFailed = errors.New("command execution failed")
	// ErrInvalidCommand is returned for command lines that cannot be parsed.
	ErrInvalidCommand = errors.New("invalid command")
)
