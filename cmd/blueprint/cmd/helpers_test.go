package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/blueprint/cmd/blueprint/cmd"
	"github.com/GoCodeAlone/blueprint/internal/runner"
	"github.com/GoCodeAlone/blueprint/internal/testutil"
)

// useFakeRunner swaps the command runner for the duration of the test and
// hides BLUEPRINT_* answers from the environment.
func useFakeRunner(t *testing.T) *runner.FakeRunner {
	t.Helper()
	testutil.Isolate(t)
	fake := runner.NewFakeRunner()
	orig := cmd.CommandRunner
	cmd.CommandRunner = fake
	t.Cleanup(func() { cmd.CommandRunner = orig })
	return fake
}

// execute runs the root command with args and returns stdout, stderr and
// the mapped exit code.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := cmd.NewRootCommand()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), cmd.ExitCode(err)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}
