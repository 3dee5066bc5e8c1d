// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

// AnswerEnvPrefix matches the environment variables read as answers.
const AnswerEnvPrefix = "BLUEPRINT_"

// Isolate unsets every BLUEPRINT_* variable for the rest of the test so
// answer resolution only sees what the test sets itself. The previous
// values are restored by t.Cleanup.
func Isolate(t *testing.T) {
	t.Helper()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, AnswerEnvPrefix) {
			continue
		}
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

// RequireGit skips the test when the git binary is not on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// GitIdentity gives git a fixed author and hides user and system config
// so commits work on machines without a configured identity.
func GitIdentity(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
}
