// Package prune removes optional artifacts from a generated project tree
// and then strips template-marker suffixes from whatever remains.
//
// The two passes are independent: Prune works from an explicit candidate
// list against pre-rename names, Rename walks the entire surviving tree.
// Run executes them in that order.
package prune

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GoCodeAlone/blueprint/internal/logging"
)

const (
	PrimarySuffix   = ".tmpl"
	SecondarySuffix = ".gotmpl"
)

// DefaultSuffixes are the marker suffixes, in probe order after the bare name.
var DefaultSuffixes = []string{PrimarySuffix, SecondarySuffix}

// DefaultKeep lists files that keep their marker through the rename pass
// because the generated application renders them itself at runtime.
var DefaultKeep = []string{"wsdocs.html" + PrimarySuffix}

// Candidate is a path that should be removed if present. Variants are
// probed in order: the bare path, then path+suffix for each Suffixes entry.
type Candidate struct {
	Path     string
	Suffixes []string
}

// Variants returns the probe order for the candidate.
func (c Candidate) Variants() []string {
	variants := make([]string, 0, len(c.Suffixes)+1)
	variants = append(variants, c.Path)
	for _, s := range c.Suffixes {
		if s == "" {
			continue
		}
		variants = append(variants, c.Path+s)
	}
	return variants
}

// Status is the outcome of pruning one candidate.
type Status int

const (
	StatusNotFound Status = iota
	StatusDeletedFile
	StatusDeletedDir
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not found"
	case StatusDeletedFile:
		return "file deleted"
	case StatusDeletedDir:
		return "directory deleted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome records what happened to one candidate. Deleted holds the
// root-relative variant that was removed, empty when nothing was found.
type Outcome struct {
	Candidate Candidate
	Status    Status
	Deleted   string
}

// Rename records one suffix-stripping rename, as root-relative paths.
type Rename struct {
	From string
	To   string
}

// Pruner performs the prune and rename passes.
type Pruner struct {
	suffixes []string
	keep     []string
	logger   logging.Logger
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithSuffixes sets the marker suffixes stripped by the rename pass.
func WithSuffixes(suffixes ...string) Option {
	return func(p *Pruner) { p.suffixes = suffixes }
}

// WithKeep sets the glob patterns for files that keep their marker.
// Patterns without a slash match the base name; others match the
// slash-separated path relative to the root.
func WithKeep(patterns ...string) Option {
	return func(p *Pruner) { p.keep = patterns }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pruner) { p.logger = logging.OrNop(l) }
}

// New creates a Pruner with the default suffixes and keep-list.
func New(opts ...Option) *Pruner {
	p := &Pruner{
		suffixes: DefaultSuffixes,
		keep:     DefaultKeep,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Suffixes returns the configured marker suffixes.
func (p *Pruner) Suffixes() []string {
	return append([]string(nil), p.suffixes...)
}

// Candidates builds candidates for paths using the configured suffixes.
func (p *Pruner) Candidates(paths ...string) []Candidate {
	out := make([]Candidate, len(paths))
	for i, rel := range paths {
		out[i] = Candidate{Path: rel, Suffixes: p.Suffixes()}
	}
	return out
}

// Result is the combined outcome of Run.
type Result struct {
	Outcomes []Outcome
	Renames  []Rename
}

// Run prunes candidates under root and then renames marker-suffixed files.
func (p *Pruner) Run(root string, candidates []Candidate) (*Result, error) {
	outcomes, err := p.Prune(root, candidates)
	if err != nil {
		return &Result{Outcomes: outcomes}, err
	}
	renames, err := p.Rename(root)
	return &Result{Outcomes: outcomes, Renames: renames}, err
}

// Prune deletes the first existing variant of every candidate. A candidate
// with no existing variant yields StatusNotFound and is not an error.
// All candidate paths are validated before anything is deleted.
func (p *Pruner) Prune(root string, candidates []Candidate) ([]Outcome, error) {
	for _, c := range candidates {
		if err := checkRelative(c.Path); err != nil {
			return nil, err
		}
	}

	outcomes := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		outcome, err := p.pruneOne(root, c)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (p *Pruner) pruneOne(root string, c Candidate) (Outcome, error) {
	for _, variant := range c.Variants() {
		full := filepath.Join(root, filepath.FromSlash(variant))
		info, err := os.Lstat(full)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Outcome{Candidate: c}, fmt.Errorf("%w: %s: %w", ErrRemoveFailed, variant, err)
		}

		if info.IsDir() {
			if err := os.RemoveAll(full); err != nil {
				return Outcome{Candidate: c}, fmt.Errorf("%w: %s: %w", ErrRemoveFailed, variant, err)
			}
			p.logger.Info("Directory deleted", "path", variant)
			return Outcome{Candidate: c, Status: StatusDeletedDir, Deleted: variant}, nil
		}

		if err := os.Remove(full); err != nil {
			return Outcome{Candidate: c}, fmt.Errorf("%w: %s: %w", ErrRemoveFailed, variant, err)
		}
		p.logger.Info("File deleted", "path", variant)
		return Outcome{Candidate: c, Status: StatusDeletedFile, Deleted: variant}, nil
	}

	p.logger.Info("Could not delete, not found", "path", c.Path)
	return Outcome{Candidate: c, Status: StatusNotFound}, nil
}

// Rename walks root and strips the marker suffix from every file whose
// name ends with one, except files matched by the keep-list. The .git
// directory is never entered. Renames are collected first and applied
// after the walk, so running Rename twice is a no-op the second time.
func (p *Pruner) Rename(root string) ([]Rename, error) {
	var pending []Rename

	err := filepath.WalkDir(root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && full != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		suffix, ok := p.markerSuffix(d.Name())
		if !ok {
			return nil
		}
		if p.kept(rel) {
			p.logger.Debug("Keeping marker suffix", "path", rel)
			return nil
		}
		pending = append(pending, Rename{From: rel, To: strings.TrimSuffix(rel, suffix)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenameFailed, err)
	}

	done := make([]Rename, 0, len(pending))
	for _, r := range pending {
		from := filepath.Join(root, filepath.FromSlash(r.From))
		to := filepath.Join(root, filepath.FromSlash(r.To))
		if _, err := os.Lstat(to); err == nil {
			p.logger.Warn("Rename target exists, overwriting", "from", r.From, "to", r.To)
		}
		if err := os.Rename(from, to); err != nil {
			return done, fmt.Errorf("%w: %s: %w", ErrRenameFailed, r.From, err)
		}
		p.logger.Debug("Renamed", "from", r.From, "to", r.To)
		done = append(done, r)
	}
	return done, nil
}

// markerSuffix returns the first configured suffix name ends with. A file
// named exactly like the suffix has no real name to fall back to and is
// left alone.
func (p *Pruner) markerSuffix(name string) (string, bool) {
	for _, s := range p.suffixes {
		if s != "" && strings.HasSuffix(name, s) && len(name) > len(s) {
			return s, true
		}
	}
	return "", false
}

func (p *Pruner) kept(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range p.keep {
		target := rel
		if !strings.Contains(pattern, "/") {
			target = base
		}
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}

// checkRelative rejects empty, absolute and root-escaping candidate paths.
func checkRelative(rel string) error {
	if rel == "" {
		return fmt.Errorf("%w: empty path", ErrPathOutsideRoot)
	}
	if filepath.IsAbs(rel) || path.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	clean := path.Clean(filepath.ToSlash(rel))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	return nil
}
