// Package metadata reads and updates the version field of a TOML project
// metadata file such as pyproject.toml.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

const (
	// DefaultFile is the metadata file looked up at the repository root.
	DefaultFile = "pyproject.toml"
	// DefaultTable is the table holding the version field.
	DefaultTable = "project"
	// VersionKey is the field read and written inside the table.
	VersionKey = "version"
)

// File is a metadata document. Reads go through the decoded form; writes
// splice the new value into the original bytes, so comments, key order and
// quoting outside the version value are kept exactly as read.
type File struct {
	Path string
	data []byte
	doc  map[string]any
	mode os.FileMode
}

// Load reads and decodes the TOML file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	return &File{Path: path, data: data, doc: doc, mode: mode}, nil
}

func decode(path string, data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, path, err)
	}
	return doc, nil
}

// table resolves a dotted table name ("project", "tool.poetry").
func (f *File) table(name string) (map[string]any, error) {
	name = tableName(name)
	current := f.doc
	for _, part := range strings.Split(name, ".") {
		next, ok := current[part]
		if !ok {
			return nil, fmt.Errorf("%w: [%s]", ErrTableNotFound, name)
		}
		tbl, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: [%s] is %T", ErrNotATable, name, next)
		}
		current = tbl
	}
	return current, nil
}

// Version returns the version string stored in table.
func (f *File) Version(table string) (string, error) {
	tbl, err := f.table(table)
	if err != nil {
		return "", err
	}
	raw, ok := tbl[VersionKey]
	if !ok {
		return "", fmt.Errorf("%w in [%s]", ErrVersionNotFound, tableName(table))
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: [%s].%s is %T", ErrVersionNotString, tableName(table), VersionKey, raw)
	}
	return s, nil
}

// SetVersion replaces the version string stored in table. The field must
// already exist as a string written as a plain or dotted key; only the
// bytes of its value change.
func (f *File) SetVersion(table, version string) error {
	if _, err := f.Version(table); err != nil {
		return err
	}

	span, quote, err := findValue(f.data, append(strings.Split(tableName(table), "."), VersionKey))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, f.Path, err)
	}
	if span.Length == 0 {
		return fmt.Errorf("%w: [%s].%s is not a plain key", ErrVersionNotEditable, tableName(table), VersionKey)
	}

	start, end := int(span.Offset), int(span.Offset+span.Length)
	data := make([]byte, 0, len(f.data)-(end-start)+len(version)+2)
	data = append(data, f.data[:start]...)
	data = append(data, quoteString(version, quote)...)
	data = append(data, f.data[end:]...)

	doc, err := decode(f.Path, data)
	if err != nil {
		return err
	}
	f.data, f.doc = data, doc
	return nil
}

// Save writes the document back to Path atomically.
func (f *File) Save() error {
	return writeFileAtomic(f.Path, f.data, f.mode)
}

// findValue walks the top-level expressions of data and returns the byte
// range of the string value stored under key, along with its opening quote.
// A zero range means the key is not written as a plain or dotted key with a
// single-line string value.
func findValue(data []byte, key []string) (unstable.Range, byte, error) {
	var p unstable.Parser
	p.Reset(data)

	var current []string
	inArray := false
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			current, inArray = keyParts(expr.Key()), false
		case unstable.ArrayTable:
			current, inArray = keyParts(expr.Key()), true
		case unstable.KeyValue:
			if inArray {
				continue
			}
			full := append(append([]string(nil), current...), keyParts(expr.Key())...)
			if !slices.Equal(full, key) {
				continue
			}
			value := expr.Value()
			raw := p.Raw(value.Raw)
			if value.Kind != unstable.String || len(raw) < 2 || multiline(raw) {
				return unstable.Range{}, 0, nil
			}
			return value.Raw, raw[0], nil
		}
	}
	if err := p.Error(); err != nil {
		return unstable.Range{}, 0, err
	}
	return unstable.Range{}, 0, nil
}

func multiline(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte(`"""`)) || bytes.HasPrefix(raw, []byte("'''"))
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// quoteString renders s as a TOML string, keeping the literal quote style
// when s allows it.
func quoteString(s string, quote byte) string {
	if quote == '\'' && !strings.ContainsAny(s, "'\n\r") {
		return "'" + s + "'"
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\u%04X", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func tableName(name string) string {
	if name == "" {
		return DefaultTable
	}
	return name
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path, leaving the original untouched on failure.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blueprint-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	success = true
	return nil
}
