package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation made through a FakeRunner.
type Call struct {
	Name string
	Args []string
	Dir  string
}

// Line returns the call as "name arg1 arg2".
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner is an in-memory Runner for tests. Responses are keyed by the
// full command line; unknown commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	Responses map[string]Result
	Errors    map[string]error
	// Missing lists binaries LookPath should report as absent.
	Missing map[string]bool
	// OnRun, when set, is invoked for every call before the response is
	// looked up. Tests use it to simulate side effects.
	OnRun func(call Call)
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]Result),
		Errors:    make(map[string]error),
		Missing:   make(map[string]bool),
	}
}

func (f *FakeRunner) Run(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	call := Call{Name: name, Args: append([]string(nil), args...), Dir: opts.Dir}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	onRun := f.OnRun
	f.mu.Unlock()

	if onRun != nil {
		onRun(call)
	}

	line := call.Line()
	if err, ok := f.Errors[line]; ok {
		return Result{}, err
	}
	if res, ok := f.Responses[line]; ok {
		if opts.Stdout != nil && res.Stdout != "" {
			fmt.Fprint(opts.Stdout, res.Stdout)
		}
		return res, nil
	}
	return Result{}, nil
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("%w: %s", ErrMissingDependency, name)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the recorded calls as command lines.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}
