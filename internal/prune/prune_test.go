package prune

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/blueprint/internal/logging"
)

// makeTree creates files (and their parent directories) under a temp root.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f), 0o644))
	}
	return root
}

func exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Lstat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func TestPrune_NotFoundAndDeleted(t *testing.T) {
	root := makeTree(t, "b.py.tmpl")
	logger := logging.NewTestLogger()
	p := New(WithLogger(logger))

	outcomes, err := p.Prune(root, p.Candidates("a.py", "b.py.tmpl"))
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, StatusNotFound, outcomes[0].Status)
	assert.Empty(t, outcomes[0].Deleted)
	assert.Equal(t, StatusDeletedFile, outcomes[1].Status)
	assert.Equal(t, "b.py.tmpl", outcomes[1].Deleted)
	assert.False(t, exists(t, root, "b.py.tmpl"))

	assert.NotNil(t, logger.FindEntry("info", "not found"))
	assert.NotNil(t, logger.FindEntry("info", "File deleted"))
}

func TestPrune_FirstExistingVariantWins(t *testing.T) {
	root := makeTree(t, "src/gui.py.tmpl", "src/gui.py.gotmpl")
	p := New()

	outcomes, err := p.Prune(root, p.Candidates("src/gui.py"))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "src/gui.py.tmpl", outcomes[0].Deleted)

	// the lower-priority variant is ignored
	assert.True(t, exists(t, root, "src/gui.py.gotmpl"))
}

func TestPrune_BareNameHasPriority(t *testing.T) {
	root := makeTree(t, "docs/asyncapi.yaml", "docs/asyncapi.yaml.tmpl")
	p := New()

	outcomes, err := p.Prune(root, p.Candidates("docs/asyncapi.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "docs/asyncapi.yaml", outcomes[0].Deleted)
	assert.True(t, exists(t, root, "docs/asyncapi.yaml.tmpl"))
}

func TestPrune_Directory(t *testing.T) {
	root := makeTree(t, "src/graphql/schema.py", "src/graphql/nested/types.py", "src/keep.py")
	p := New()

	outcomes, err := p.Prune(root, p.Candidates("src/graphql", "templates/partials/"))
	require.NoError(t, err)
	assert.Equal(t, StatusDeletedDir, outcomes[0].Status)
	assert.Equal(t, StatusNotFound, outcomes[1].Status)
	assert.False(t, exists(t, root, "src/graphql"))
	assert.True(t, exists(t, root, "src/keep.py"))
}

func TestPrune_RejectsPathsOutsideRoot(t *testing.T) {
	root := makeTree(t, "a.py")
	p := New()

	for _, bad := range []string{"", "..", "../etc/passwd", "/etc/passwd", "a/../../x", "."} {
		t.Run(bad, func(t *testing.T) {
			_, err := p.Prune(root, p.Candidates("a.py", bad))
			assert.ErrorIs(t, err, ErrPathOutsideRoot)
			// validation happens before any deletion
			assert.True(t, exists(t, root, "a.py"))
		})
	}
}

func TestCandidateVariants(t *testing.T) {
	c := Candidate{Path: "x.py", Suffixes: []string{"", ".tmpl", ".gotmpl"}}
	assert.Equal(t, []string{"x.py", "x.py.tmpl", "x.py.gotmpl"}, c.Variants())
}

func TestRename(t *testing.T) {
	root := makeTree(t,
		"x.py.tmpl",
		"pyproject.toml.gotmpl",
		"src/templates/wsdocs.html.tmpl",
		"src/app.py",
		".tmpl",
		".git/hooks/pre-commit.tmpl",
	)
	p := New()

	renames, err := p.Rename(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []Rename{
		{From: "x.py.tmpl", To: "x.py"},
		{From: "pyproject.toml.gotmpl", To: "pyproject.toml"},
	}, renames)

	assert.True(t, exists(t, root, "x.py"))
	assert.False(t, exists(t, root, "x.py.tmpl"))
	assert.True(t, exists(t, root, "pyproject.toml"))
	assert.True(t, exists(t, root, "src/templates/wsdocs.html.tmpl"))
	assert.False(t, exists(t, root, "src/templates/wsdocs.html"))
	assert.True(t, exists(t, root, ".tmpl"))
	assert.True(t, exists(t, root, ".git/hooks/pre-commit.tmpl"))

	content, err := os.ReadFile(filepath.Join(root, "x.py"))
	require.NoError(t, err)
	assert.Equal(t, "x.py.tmpl", string(content))
}

func TestRename_Idempotent(t *testing.T) {
	root := makeTree(t, "a/b/c.go.tmpl", "d.md.gotmpl")
	p := New()

	first, err := p.Rename(root)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := p.Rename(root)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestRename_KeepPatterns(t *testing.T) {
	root := makeTree(t, "docs/page.md.tmpl", "web/static/index.html.tmpl", "web/other.html.tmpl")
	p := New(WithKeep("web/static/**"), WithSuffixes(".tmpl"))

	renames, err := p.Rename(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Rename{
		{From: "docs/page.md.tmpl", To: "docs/page.md"},
		{From: "web/other.html.tmpl", To: "web/other.html"},
	}, renames)
	assert.True(t, exists(t, root, "web/static/index.html.tmpl"))
}

func TestRun_PrunesBeforeRenaming(t *testing.T) {
	// The candidate names the pre-rename file; if rename ran first the
	// candidate would miss and "a.py" would survive.
	root := makeTree(t, "a.py.tmpl", "b.py.tmpl")
	p := New()

	result, err := p.Run(root, p.Candidates("a.py"))
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "a.py.tmpl", result.Outcomes[0].Deleted)
	assert.Equal(t, []Rename{{From: "b.py.tmpl", To: "b.py"}}, result.Renames)

	assert.False(t, exists(t, root, "a.py"))
	assert.False(t, exists(t, root, "a.py.tmpl"))
	assert.True(t, exists(t, root, "b.py"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "not found", StatusNotFound.String())
	assert.Equal(t, "file deleted", StatusDeletedFile.String())
	assert.Equal(t, "directory deleted", StatusDeletedDir.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
