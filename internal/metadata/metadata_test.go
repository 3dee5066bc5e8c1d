package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pyproject = `[project]
name = "my_service"
version = "0.4.1"
dependencies = ["fastapi", "uvicorn"]

[tool.poetry]
version = "1.0.0"

[tool.ruff]
line-length = 100
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	f, err := Load(writeFile(t, pyproject))
	require.NoError(t, err)

	v, err := f.Version("")
	require.NoError(t, err)
	assert.Equal(t, "0.4.1", v)

	v, err = f.Version("tool.poetry")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)
}

func TestVersion_Errors(t *testing.T) {
	f, err := Load(writeFile(t, pyproject+"\n[bad]\nversion = 3\n[scalar_holder]\nscalar = 1\n"))
	require.NoError(t, err)

	_, err = f.Version("missing")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = f.Version("tool.ruff")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	_, err = f.Version("bad")
	assert.ErrorIs(t, err, ErrVersionNotString)

	_, err = f.Version("scalar_holder.scalar")
	assert.ErrorIs(t, err, ErrNotATable)

	_, err = f.Version("project.name")
	assert.ErrorIs(t, err, ErrNotATable)
}

func TestSetVersionAndSave_PreservesSiblings(t *testing.T) {
	path := writeFile(t, pyproject)
	f, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, f.SetVersion("project", "0.5.0"))
	require.NoError(t, f.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	v, err := reloaded.Version("project")
	require.NoError(t, err)
	assert.Equal(t, "0.5.0", v)

	var doc struct {
		Project struct {
			Name         string   `toml:"name"`
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Version string `toml:"version"`
			} `toml:"poetry"`
			Ruff struct {
				LineLength int `toml:"line-length"`
			} `toml:"ruff"`
		} `toml:"tool"`
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Equal(t, "my_service", doc.Project.Name)
	assert.Equal(t, []string{"fastapi", "uvicorn"}, doc.Project.Dependencies)
	assert.Equal(t, "1.0.0", doc.Tool.Poetry.Version)
	assert.Equal(t, 100, doc.Tool.Ruff.LineLength)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSetVersion_MissingTable(t *testing.T) {
	f, err := Load(writeFile(t, pyproject))
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetVersion("nope", "1.0.0"), ErrTableNotFound)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "[project\nversion = "))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

const handWritten = `# Project metadata
[project]
name = "svc"
version = "0.4.1" # bumped by tooling
description = "x"

[tool.ruff]
line-length = 100
`

func TestSave_ChangesOnlyVersionValue(t *testing.T) {
	path := writeFile(t, handWritten)
	f, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, f.SetVersion("project", "0.5.0"))
	require.NoError(t, f.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(handWritten, `"0.4.1"`, `"0.5.0"`, 1), string(data))
}

func TestSetVersion_KeyForms(t *testing.T) {
	cases := []struct {
		name    string
		table   string
		content string
		want    string
	}{
		{
			name:    "literal string keeps its quotes",
			table:   "project",
			content: "[project]\nversion = '1.0.0'\n",
			want:    "[project]\nversion = '2.0.0'\n",
		},
		{
			name:    "dotted key at top level",
			table:   "project",
			content: "project.name = \"a\"\nproject.version = \"1.0.0\"\n",
			want:    "project.name = \"a\"\nproject.version = \"2.0.0\"\n",
		},
		{
			name:    "nested table",
			table:   "tool.poetry",
			content: "[tool.poetry]\nversion   =   \"1.0.0\"\n[project]\nversion = \"9.9.9\"\n",
			want:    "[tool.poetry]\nversion   =   \"2.0.0\"\n[project]\nversion = \"9.9.9\"\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.content)
			f, err := Load(path)
			require.NoError(t, err)
			require.NoError(t, f.SetVersion(tc.table, "2.0.0"))
			require.NoError(t, f.Save())
			assert.Equal(t, tc.want, readFile(t, path))

			v, err := f.Version(tc.table)
			require.NoError(t, err)
			assert.Equal(t, "2.0.0", v)
		})
	}
}

func TestSetVersion_Errors(t *testing.T) {
	f, err := Load(writeFile(t, "project = { version = \"1.0.0\" }\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetVersion("project", "2.0.0"), ErrVersionNotEditable)

	f, err = Load(writeFile(t, "[project]\nversion = 3\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetVersion("project", "2.0.0"), ErrVersionNotString)

	f, err = Load(writeFile(t, "[project]\nname = \"a\"\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetVersion("project", "2.0.0"), ErrVersionNotFound)
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `"1.2.3"`, quoteString("1.2.3", '"'))
	assert.Equal(t, `'1.2.3'`, quoteString("1.2.3", '\''))
	assert.Equal(t, `"it's"`, quoteString("it's", '\''))
	assert.Equal(t, `"a\"b\\c"`, quoteString(`a"b\c`, '"'))
}
