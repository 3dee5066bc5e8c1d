package bump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingVCS records every git operation as a command line.
type recordingVCS struct {
	calls    []string
	missing  bool
	failures map[string]error
}

func newRecordingVCS() *recordingVCS {
	return &recordingVCS{failures: make(map[string]error)}
}

func (r *recordingVCS) record(line string) error {
	r.calls = append(r.calls, line)
	return r.failures[strings.Fields(line)[0]]
}

func (r *recordingVCS) CheckInstalled() error {
	if r.missing {
		return fmt.Errorf("git is not installed")
	}
	return nil
}

func (r *recordingVCS) Add(_ context.Context, paths ...string) error {
	return r.record("add " + strings.Join(paths, " "))
}

func (r *recordingVCS) Commit(_ context.Context, message string) error {
	return r.record("commit " + message)
}

func (r *recordingVCS) Tag(_ context.Context, name, message string) error {
	return r.record("tag " + name + " " + message)
}

func (r *recordingVCS) Push(_ context.Context) error {
	return r.record("push")
}

func (r *recordingVCS) PushTag(_ context.Context, remote, tag string) error {
	return r.record("push-tag " + remote + " " + tag)
}

func (r *recordingVCS) factory() func(string) VCS {
	return func(string) VCS { return r }
}

const sampleProject = `[project]
name = "demo"
version = "0.4.1"
description = "demo service"

[tool.poetry]
version = "1.0.0"

[tool.ruff]
line-length = 100
`

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))
	return dir
}

func readProject(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	require.NoError(t, err)
	return string(data)
}
