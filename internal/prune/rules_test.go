package prune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/blueprint/internal/logging"
)

func paths(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Path
	}
	return out
}

func TestRuleApplies(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		answers map[string]any
		want    bool
	}{
		{"unconditional", Rule{}, nil, true},
		{"flag off", Rule{Unless: []string{"use_auth0"}}, map[string]any{"use_auth0": "No"}, true},
		{"flag on", Rule{Unless: []string{"use_auth0"}}, map[string]any{"use_auth0": "Yes"}, false},
		{"flag missing", Rule{Unless: []string{"use_auth0"}}, map[string]any{}, true},
		{"bool flag", Rule{Unless: []string{"use_auth0"}}, map[string]any{"use_auth0": true}, false},
		{"choice falsy", Rule{Unless: []string{"database"}}, map[string]any{"database": "No DB"}, true},
		{"choice truthy", Rule{Unless: []string{"database"}}, map[string]any{"database": "MongoDB (beanie)"}, false},
		{"both off", Rule{Unless: []string{"a", "b"}}, map[string]any{"a": "no", "b": "0"}, true},
		{"one on", Rule{Unless: []string{"a", "b"}}, map[string]any{"a": "no", "b": "yes"}, false},
		{"equals match", Rule{UnlessEquals: map[string]string{"linter": "ruff"}}, map[string]any{"linter": "ruff"}, false},
		{"equals differs", Rule{UnlessEquals: map[string]string{"linter": "ruff"}}, map[string]any{"linter": "flake8"}, true},
		{"equals missing", Rule{UnlessEquals: map[string]string{"linter": "ruff"}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Applies(tt.answers))
		})
	}
}

func TestExpand_DefaultRules(t *testing.T) {
	answers := map[string]any{
		"database":                  "MongoDB (pymongo)",
		"use_auth0":                 "No",
		"use_server_side_rendering": "Yes",
		"keep_internal_readmes":     true,
		"use_socketio":              "No",
		"use_gcp_pubsub":            "Yes",
		"linter":                    "ruff",
		"use_gradio":                "0",
		"use_graphql":               "1",
	}

	got := paths(New().Expand(DefaultRules, answers))

	assert.Equal(t, []string{
		"tests/test_filterable_documents.py",
		".ruff_cache",
		"src/authentication.py",
		"tests/test_authentication.py",
		"src/config/fake_jwks.py",
		"docs/auth0.md",
		"docs/auth0_get_token.png",
		"src/config/sockets.py",
		"src/event_handlers.py",
		"socket_client.py",
		"tests/test_sockets.py",
		"src/templates/wsdocs.html.tmpl",
		"docs/asyncapi.yaml",
		"src/gui.py",
	}, got)
}

func TestExpand_SocketsAndRenderingOff(t *testing.T) {
	answers := map[string]any{
		"use_socketio":              "No",
		"use_server_side_rendering": "No",
	}
	got := paths(New().Expand(DefaultRules, answers))
	assert.Contains(t, got, "src/templates")
	assert.Contains(t, got, "templates/partials/")
	assert.Contains(t, got, "tests/test_formatting.py")
}

func TestExpand_DeduplicatesAndCopiesSuffixes(t *testing.T) {
	suffixes := []string{".tmpl"}
	rules := []Rule{
		{Paths: []string{"a", "b"}},
		{Paths: []string{"b", "c"}},
	}
	got := New(WithSuffixes(suffixes...)).Expand(rules, nil)
	assert.Equal(t, []string{"a", "b", "c"}, paths(got))

	suffixes[0] = ".changed"
	got[1].Suffixes[0] = ".mutated"
	assert.Equal(t, []string{".tmpl"}, got[0].Suffixes)
}

func TestExpand_LogsWhyFlagsAreOff(t *testing.T) {
	logger := logging.NewTestLogger()
	rules := []Rule{
		{Paths: []string{"auth.py"}, Unless: []string{"use_auth0"}},
		{Paths: []string{"gui.py"}, Unless: []string{"use_gradio"}},
		{Paths: []string{"kept.py"}, Unless: []string{"use_graphql"}},
	}
	answers := map[string]any{"use_auth0": "Nope", "use_gradio": false, "use_graphql": "yes"}

	got := New(WithLogger(logger)).Expand(rules, answers)
	assert.Equal(t, []string{"auth.py", "gui.py"}, paths(got))
	require.Equal(t, 2, logger.Count("debug"))

	entry := logger.FindEntry("debug", "Flag is off")
	require.NotNil(t, entry)
	assert.Equal(t, []any{"flag", "use_auth0", "value", "Nope", "rule", "starts-with-n"}, entry.Args)
}
