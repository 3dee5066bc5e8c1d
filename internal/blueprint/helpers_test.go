package blueprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleManifest = `name: backend-service
description: Minimal backend service
variables:
  - name: project_name
    prompt: Project name
    default: My Service
  - name: project_slug
    default: "{{ slugify .project_name }}"
  - name: use_auth0
    type: bool
    default: false
  - name: linter
    choices: [ruff, flake8]
  - name: workers
    type: int
    default: 2
  - name: _internal
    default: secret
copy_without_render:
  - "static/**"
hooks:
  post:
    - name: format
      command: black .
`

// writeTree creates files under root; keys are slash-separated paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// newBlueprint writes a blueprint directory with the sample manifest and
// the given template files.
func newBlueprint(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{ManifestFile: sampleManifest})
	tmpl := make(map[string]string, len(files))
	for rel, content := range files {
		tmpl[DefaultTemplateDir+"/"+rel] = content
	}
	writeTree(t, dir, tmpl)
	return dir
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}
