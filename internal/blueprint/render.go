package blueprint

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/truthy"
)

// FuncMap returns the helpers available in templates and path names.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"truthy":  truthy.Of,
		"slugify": Slugify,
		"kebab":   Kebab,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"replace": func(old, new, s string) string {
			return strings.ReplaceAll(s, old, new)
		},
	}
}

// RenderString executes text as a template against answers. Missing keys
// are errors.
func RenderString(name, text string, answers Answers) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(FuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(answers)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// Renderer copies a blueprint's template tree into an output directory,
// rendering path segments and file contents.
type Renderer struct {
	Manifest *Manifest
	// Overwrite allows rendering into an existing project directory.
	Overwrite bool
	Logger    logging.Logger
}

// RenderResult summarizes a render pass.
type RenderResult struct {
	// ProjectDir is the generated project root, output/<project_slug>.
	ProjectDir string
	Rendered   []string
	Copied     []string
	Skipped    []string
}

// Render writes the project to outputDir/<project_slug>.
func (r *Renderer) Render(outputDir string, answers Answers) (*RenderResult, error) {
	logger := logging.OrNop(r.Logger)

	slug := answers.String(ProjectSlugKey)
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	projectDir := filepath.Join(outputDir, slug)
	if _, err := os.Stat(projectDir); err == nil && !r.Overwrite {
		return nil, fmt.Errorf("%w: %s", ErrOutputExists, projectDir)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	src := r.Manifest.TemplatePath()
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: template directory %s", ErrInvalidManifest, src)
	}

	result := &RenderResult{ProjectDir: projectDir}
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		target, ok, err := r.renderPath(rel, answers)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug("Skipping entry with empty name", "path", rel)
			result.Skipped = append(result.Skipped, rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		dest := filepath.Join(projectDir, filepath.FromSlash(target))

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(dest, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			logger.Debug("Skipping non-regular file", "path", rel)
			result.Skipped = append(result.Skipped, rel)
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if r.copyOnly(rel) || bytes.IndexByte(data, 0) >= 0 {
			result.Copied = append(result.Copied, target)
		} else {
			out, err := RenderString(rel, string(data), answers)
			if err != nil {
				return err
			}
			data = []byte(out)
			result.Rendered = append(result.Rendered, target)
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dest, data, info.Mode().Perm())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Rendered project", "dir", projectDir,
		"rendered", len(result.Rendered), "copied", len(result.Copied))
	return result, nil
}

// renderPath renders each segment of rel. A segment rendering to an empty
// string drops the entry.
func (r *Renderer) renderPath(rel string, answers Answers) (string, bool, error) {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		if !strings.Contains(seg, "{{") {
			continue
		}
		out, err := RenderString(rel, seg, answers)
		if err != nil {
			return "", false, err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return "", false, nil
		}
		segments[i] = out
	}
	return path.Join(segments...), true, nil
}

// copyOnly reports whether rel matches a copy-without-render glob. Files
// on the keep-list are runtime templates of the generated project and are
// never rendered either.
func (r *Renderer) copyOnly(rel string) bool {
	for _, pattern := range r.Manifest.CopyWithoutRender {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	base := path.Base(rel)
	for _, pattern := range r.Manifest.KeepSuffix {
		target := rel
		if !strings.Contains(pattern, "/") {
			target = base
		}
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}
