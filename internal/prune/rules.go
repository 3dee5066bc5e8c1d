package prune

import (
	"fmt"

	"github.com/GoCodeAlone/blueprint/internal/truthy"
)

// Rule removes Paths when every condition it carries says so:
//
//   - each variable named in Unless is falsy, and
//   - each variable in UnlessEquals differs from the given value.
//
// A rule without conditions always removes its paths.
type Rule struct {
	Paths        []string          `yaml:"paths" json:"paths" toml:"paths"`
	Unless       []string          `yaml:"unless,omitempty" json:"unless,omitempty" toml:"unless,omitempty"`
	UnlessEquals map[string]string `yaml:"unless_equals,omitempty" json:"unless_equals,omitempty" toml:"unless_equals,omitempty"`
}

// Applies reports whether the rule's paths should be removed for answers.
func (r Rule) Applies(answers map[string]any) bool {
	for _, flag := range r.Unless {
		if truthy.Of(answers[flag]) {
			return false
		}
	}
	for name, want := range r.UnlessEquals {
		if fmt.Sprint(answers[name]) == want {
			return false
		}
	}
	return true
}

// Expand evaluates rules once against answers and returns the ordered
// removal candidates, probed with the Pruner's suffixes. Duplicate paths are
// kept only at their first position.
func (p *Pruner) Expand(rules []Rule, answers map[string]any) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)
	for _, r := range rules {
		if !r.Applies(answers) {
			continue
		}
		p.logFlags(r, answers)
		for _, path := range r.Paths {
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, Candidate{Path: path, Suffixes: p.Suffixes()})
		}
	}
	return out
}

// logFlags records why each flag of an applied rule counted as off.
func (p *Pruner) logFlags(r Rule, answers map[string]any) {
	for _, flag := range r.Unless {
		v := truthy.FromAny(answers[flag])
		if v.Kind() != truthy.KindText {
			p.logger.Debug("Flag is off", "flag", flag, "value", v.String())
			continue
		}
		rule, _ := truthy.FalsyRule(v.String())
		p.logger.Debug("Flag is off", "flag", flag, "value", v.String(), "rule", rule)
	}
}

// DefaultRules is the removal table for the stock backend-service
// blueprint. Paths are relative to the generated project root and are
// probed bare and with each marker suffix.
var DefaultRules = []Rule{
	{Paths: []string{
		"tests/test_filterable_documents.py",
		".ruff_cache",
	}},
	{Unless: []string{"database"}, Paths: []string{
		"src/documents.py",
		"src/config/database.py",
		"tests/additional_documents.py",
		"tests/test_database.py",
	}},
	{Unless: []string{"use_auth0"}, Paths: []string{
		"src/authentication.py",
		"tests/test_authentication.py",
		"src/config/fake_jwks.py",
		"docs/auth0.md",
		"docs/auth0_get_token.png",
	}},
	{Unless: []string{"use_server_side_rendering"}, Paths: []string{
		"templates/example.html",
		"templates/partials/",
	}},
	{Unless: []string{"keep_internal_readmes"}, Paths: []string{
		"tests/readme.md",
		"docs/readme.md",
		"deployment/readme.md",
		"src/readme.md",
	}},
	{Unless: []string{"use_socketio"}, Paths: []string{
		"src/config/sockets.py",
		"src/event_handlers.py",
		"socket_client.py",
		"tests/test_sockets.py",
		"src/templates/wsdocs.html" + PrimarySuffix,
		"docs/asyncapi.yaml",
	}},
	{Unless: []string{"use_socketio", "use_server_side_rendering"}, Paths: []string{
		"src/templates",
	}},
	{Unless: []string{"use_gcp_pubsub"}, Paths: []string{
		"src/serializers/pubsub_serializers.py",
		"src/routes/pubsub_routes.py",
		"tests/test_pubsub.py",
	}},
	{UnlessEquals: map[string]string{"linter": "ruff"}, Paths: []string{
		"tests/test_formatting.py",
	}},
	{Unless: []string{"use_gradio"}, Paths: []string{
		"src/gui.py",
	}},
	{Unless: []string{"use_graphql"}, Paths: []string{
		"src/graphql",
		"src/config/graphql.py",
		"tests/test_graphql_query.py",
	}},
}
