package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/truthy"
)

const (
	// EnvPrefix prefixes environment variables that answer questions:
	// BLUEPRINT_USE_AUTH0=yes answers use_auth0.
	EnvPrefix = "BLUEPRINT_"

	ProjectNameKey = "project_name"
	ProjectSlugKey = "project_slug"
)

var slugPattern = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]+$`)

// Answers is the resolved template context.
type Answers map[string]any

// Bool evaluates the named answer as a feature flag.
func (a Answers) Bool(name string) bool {
	return truthy.Of(a[name])
}

// String returns the named answer formatted as text, "" when absent.
func (a Answers) String(name string) string {
	v, ok := a[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Keys returns the answer names in sorted order.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prompter asks the user for the value of a variable. current is the value
// resolved from defaults, files, environment and overrides.
type Prompter interface {
	Ask(v Variable, current any) (any, error)
}

// Resolver layers answer sources over a manifest's variables. Later layers
// win: defaults, answer files, environment, overrides, prompts.
type Resolver struct {
	Manifest    *Manifest
	AnswerFiles []string
	Overrides   map[string]string
	// LookupEnv reads environment variables; nil disables the env layer.
	LookupEnv func(key string) (string, bool)
	// Prompter asks for non-hidden variables; nil means no input.
	Prompter Prompter
	Logger   logging.Logger
}

// Resolve produces the final answers and validates the project slug.
func (r *Resolver) Resolve() (Answers, error) {
	logger := logging.OrNop(r.Logger)

	fileAnswers := make(map[string]any)
	for _, path := range r.AnswerFiles {
		loaded, err := LoadAnswersFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range loaded {
			fileAnswers[k] = v
		}
		logger.Debug("Loaded answers file", "path", path, "keys", len(loaded))
	}

	answers := make(Answers)
	for _, v := range r.Manifest.Variables {
		value, source, err := r.resolveOne(v, answers, fileAnswers)
		if err != nil {
			return nil, err
		}
		if r.Prompter != nil && !v.IsHidden() {
			value, err = r.Prompter.Ask(v, value)
			if err != nil {
				return nil, fmt.Errorf("failed to prompt for %s: %w", v.Name, err)
			}
			source = "prompt"
		}

		value, err = coerce(v, value)
		if err != nil {
			return nil, err
		}
		answers[v.Name] = value
		logger.Debug("Resolved variable", "name", v.Name, "source", source)
	}

	// Undeclared keys from files and overrides pass through as extra context.
	for k, v := range fileAnswers {
		if _, declared := r.Manifest.Variable(k); !declared {
			answers[k] = v
		}
	}
	for k, v := range r.Overrides {
		if _, declared := r.Manifest.Variable(k); !declared {
			answers[k] = v
		}
	}

	if err := deriveSlug(answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *Resolver) resolveOne(v Variable, sofar Answers, fileAnswers map[string]any) (any, string, error) {
	value, source := v.Default, "default"
	if s, ok := value.(string); ok && strings.Contains(s, "{{") {
		rendered, err := RenderString(v.Name, s, sofar)
		if err != nil {
			return nil, "", fmt.Errorf("%w: default of %s: %w", ErrInvalidAnswer, v.Name, err)
		}
		value = rendered
	} else if value == nil && len(v.Choices) > 0 {
		value = v.Choices[0]
	}

	if fv, ok := fileAnswers[v.Name]; ok {
		value, source = fv, "file"
	}

	if r.LookupEnv != nil {
		if ev, ok := r.LookupEnv(EnvName(v.Name)); ok {
			converted, err := convertText(v, ev)
			if err != nil {
				return nil, "", err
			}
			value, source = converted, "env"
		}
	}

	if ov, ok := r.Overrides[v.Name]; ok {
		converted, err := convertText(v, ov)
		if err != nil {
			return nil, "", err
		}
		value, source = converted, "override"
	}

	return value, source, nil
}

// EnvName returns the environment variable answering the named variable.
func EnvName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.TrimLeft(name, "_"))
}

// convertText converts a textual answer to the variable's declared type.
// Bool variables go through the truthy rules so "No" and "0" mean false.
func convertText(v Variable, text string) (any, error) {
	switch v.Type {
	case TypeBool:
		return truthy.IsTruthy(truthy.Text(text)), nil
	case TypeInt:
		out, err := cast.FromType(text, reflect.TypeOf(int(0)))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer: %w", ErrInvalidAnswer, v.Name, text, err)
		}
		return out, nil
	case TypeFloat:
		out, err := cast.FromType(text, reflect.TypeOf(float64(0)))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a number: %w", ErrInvalidAnswer, v.Name, text, err)
		}
		return out, nil
	default:
		return text, nil
	}
}

// coerce normalizes a resolved value to the variable's type and checks
// choices.
func coerce(v Variable, value any) (any, error) {
	switch v.Type {
	case TypeBool:
		return truthy.Of(value), nil
	case TypeInt, TypeFloat:
		if s, ok := value.(string); ok {
			return convertText(v, s)
		}
		if value == nil {
			return convertText(v, "0")
		}
	case TypeString:
		if value == nil {
			value = ""
		}
		if len(v.Choices) > 0 {
			s := fmt.Sprint(value)
			if !contains(v.Choices, s) {
				return nil, fmt.Errorf("%w: %s=%q, expected one of %s", ErrInvalidAnswer, v.Name, s, strings.Join(v.Choices, ", "))
			}
			return s, nil
		}
	}
	return value, nil
}

// deriveSlug fills project_slug from project_name when it is absent and
// validates the result.
func deriveSlug(answers Answers) error {
	slug := answers.String(ProjectSlugKey)
	if slug == "" {
		name := answers.String(ProjectNameKey)
		if name == "" {
			return fmt.Errorf("%w: neither %s nor %s is set", ErrInvalidSlug, ProjectSlugKey, ProjectNameKey)
		}
		slug = Slugify(name)
		answers[ProjectSlugKey] = slug
	}
	return ValidateSlug(slug)
}

// ValidateSlug checks that slug is usable as a module/package name.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// Slugify lowercases s and replaces every run of non-alphanumeric
// characters with a single underscore.
func Slugify(s string) string {
	return separate(s, '_')
}

// Kebab is Slugify with dashes.
func Kebab(s string) string {
	return separate(s, '-')
}

func separate(s string, sep rune) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteRune(sep)
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LoadAnswersFile decodes a flat answers file. The format is chosen by
// extension: .yaml/.yml, .json or .toml.
func LoadAnswersFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	out := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	case ".json":
		err = json.Unmarshal(data, &out)
	case ".toml":
		_, err = toml.Decode(string(data), &out)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAnswer, path, err)
	}
	return out, nil
}
