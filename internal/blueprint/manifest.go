// Package blueprint models a project blueprint: a manifest describing the
// variables a user answers, plus a template tree rendered with those
// answers into a new repository.
//
// A blueprint directory looks like:
//
//	blueprint.yaml
//	template/
//	    pyproject.toml.tmpl
//	    src/...
package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/blueprint/internal/prune"
)

const (
	// ManifestFile is the manifest name inside a blueprint directory.
	ManifestFile = "blueprint.yaml"
	// DefaultTemplateDir is used when the manifest does not name one.
	DefaultTemplateDir = "template"
	// DefaultTestCommand runs the generated project's tests.
	DefaultTestCommand = "pytest"
)

// VarType is the declared type of a variable.
type VarType string

const (
	TypeString VarType = "string"
	TypeBool   VarType = "bool"
	TypeInt    VarType = "int"
	TypeFloat  VarType = "float"
)

// Variable is one question of the blueprint.
type Variable struct {
	Name    string   `yaml:"name"`
	Prompt  string   `yaml:"prompt,omitempty"`
	Help    string   `yaml:"help,omitempty"`
	Type    VarType  `yaml:"type,omitempty"`
	Default any      `yaml:"default,omitempty"`
	Choices []string `yaml:"choices,omitempty"`
	// Hidden variables are never prompted for. Names starting with "_"
	// are hidden implicitly.
	Hidden bool `yaml:"hidden,omitempty"`
}

// IsHidden reports whether the variable is excluded from prompting.
func (v Variable) IsHidden() bool {
	return v.Hidden || strings.HasPrefix(v.Name, "_")
}

// Message returns the prompt text shown to the user.
func (v Variable) Message() string {
	if v.Prompt != "" {
		return v.Prompt
	}
	return v.Name
}

// Hook is a post-generation command, such as a formatter or linter.
type Hook struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// Hooks groups the commands run after generation.
type Hooks struct {
	Post []Hook `yaml:"post,omitempty"`
	// Test runs the generated project's test suite.
	Test string `yaml:"test,omitempty"`
	// AutofixMessage is the commit message recorded after post hooks.
	AutofixMessage string `yaml:"autofix_message,omitempty"`
}

// Manifest is the decoded blueprint.yaml.
type Manifest struct {
	Name              string       `yaml:"name"`
	Description       string       `yaml:"description,omitempty"`
	TemplateDir       string       `yaml:"template_dir,omitempty"`
	Variables         []Variable   `yaml:"variables"`
	Suffixes          []string     `yaml:"suffixes,omitempty"`
	KeepSuffix        []string     `yaml:"keep_suffix,omitempty"`
	CopyWithoutRender []string     `yaml:"copy_without_render,omitempty"`
	Prune             []prune.Rule `yaml:"prune,omitempty"`
	Hooks             Hooks        `yaml:"hooks,omitempty"`

	// Dir is the blueprint directory the manifest was loaded from.
	Dir string `yaml:"-"`
}

// LoadManifest reads blueprint.yaml from dir, applies defaults and
// validates it.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestNotFound, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
	}
	m.Dir = dir
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.TemplateDir == "" {
		m.TemplateDir = DefaultTemplateDir
	}
	if len(m.Suffixes) == 0 {
		m.Suffixes = append([]string(nil), prune.DefaultSuffixes...)
	}
	if m.KeepSuffix == nil {
		m.KeepSuffix = append([]string(nil), prune.DefaultKeep...)
	}
	if m.Prune == nil {
		m.Prune = prune.DefaultRules
	}
	if m.Hooks.Test == "" {
		m.Hooks.Test = DefaultTestCommand
	}
	if m.Hooks.AutofixMessage == "" {
		m.Hooks.AutofixMessage = "Commit after autofix"
	}
	for i := range m.Variables {
		if m.Variables[i].Type == "" {
			m.Variables[i].Type = TypeString
		}
	}
}

// Validate checks variable names, types and choice defaults.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: variable without a name", ErrInvalidManifest)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: duplicate variable %q", ErrInvalidManifest, v.Name)
		}
		seen[v.Name] = true

		switch v.Type {
		case TypeString, TypeBool, TypeInt, TypeFloat:
		default:
			return fmt.Errorf("%w: variable %q has unknown type %q", ErrInvalidManifest, v.Name, v.Type)
		}

		if len(v.Choices) > 0 && v.Default != nil && !contains(v.Choices, fmt.Sprint(v.Default)) {
			return fmt.Errorf("%w: default %v of %q is not one of its choices", ErrInvalidManifest, v.Default, v.Name)
		}
	}

	for _, h := range m.Hooks.Post {
		if strings.TrimSpace(h.Command) == "" {
			return fmt.Errorf("%w: hook %q has no command", ErrInvalidManifest, h.Name)
		}
	}
	return nil
}

// TemplatePath returns the absolute template tree location.
func (m *Manifest) TemplatePath() string {
	if filepath.IsAbs(m.TemplateDir) {
		return m.TemplateDir
	}
	return filepath.Join(m.Dir, m.TemplateDir)
}

// Variable looks up a variable by name.
func (m *Manifest) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
