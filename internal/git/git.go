// Package git wraps the git binary for repository initialization, commits,
// release tags and tag listing.
package git

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/GoCodeAlone/blueprint/internal/logging"
	"github.com/GoCodeAlone/blueprint/internal/runner"
	bpsemver "github.com/GoCodeAlone/blueprint/internal/semver"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "git"

// Helper runs git commands against a single repository.
type Helper struct {
	RepoPath string
	Binary   string
	Env      map[string]string

	runner runner.Runner
	logger logging.Logger
}

// Option configures a Helper.
type Option func(*Helper)

// WithRunner overrides the command runner (tests use runner.FakeRunner).
func WithRunner(r runner.Runner) Option {
	return func(h *Helper) { h.runner = r }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l logging.Logger) Option {
	return func(h *Helper) { h.logger = logging.OrNop(l) }
}

// NewHelper creates a new Helper for the given repository path.
func NewHelper(repoPath string, opts ...Option) *Helper {
	h := &Helper{
		RepoPath: repoPath,
		Binary:   DefaultBinary,
		runner:   runner.NewExecRunner(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CheckInstalled verifies that the git binary is on PATH.
func (g *Helper) CheckInstalled() error {
	if _, err := g.runner.LookPath(g.Binary); err != nil {
		return fmt.Errorf("%w: %w", ErrGitNotInstalled, err)
	}
	return nil
}

// run executes git with args in the repository. A non-zero exit is
// returned as a *CommandError wrapping ErrCommandFailed.
func (g *Helper) run(ctx context.Context, args ...string) (runner.Result, error) {
	g.logger.Debug("Running git", "args", strings.Join(args, " "), "dir", g.RepoPath)

	res, err := g.runner.Run(ctx, g.Binary, args, runner.Options{Dir: g.RepoPath, Env: g.Env})
	if err != nil {
		return res, &CommandError{Args: args, Err: err}
	}
	if !res.Success() {
		return res, &CommandError{Args: args, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr), Err: ErrCommandFailed}
	}
	return res, nil
}

// Init creates a new repository in RepoPath.
func (g *Helper) Init(ctx context.Context) error {
	_, err := g.run(ctx, "init")
	return err
}

// RenameBranch renames the current branch (git branch -m name).
func (g *Helper) RenameBranch(ctx context.Context, name string) error {
	_, err := g.run(ctx, "branch", "-m", name)
	return err
}

// Add stages the given paths.
func (g *Helper) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// AddAll stages every change in the working tree.
func (g *Helper) AddAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

// Commit records staged changes with message.
func (g *Helper) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// Tag creates an annotated tag on HEAD.
func (g *Helper) Tag(ctx context.Context, name, message string) error {
	_, err := g.run(ctx, "tag", "-a", name, "-m", message)
	return err
}

// Push pushes the current branch to its upstream.
func (g *Helper) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}

// PushTag pushes a single tag to remote.
func (g *Helper) PushTag(ctx context.Context, remote, tag string) error {
	_, err := g.run(ctx, "push", remote, tag)
	return err
}

// TagInfo represents information about a git tag.
type TagInfo struct {
	Name    string
	Commit  string
	Date    time.Time
	Message string
	Version bpsemver.Version
}

const tagFormat = "%(refname:short)|%(objectname)|%(creatordate:iso8601)|%(subject)"

// ListVersionTags lists tags whose name is prefix followed by a valid
// version, newest version first. When pattern is non-empty only tag names
// matching it are considered.
func (g *Helper) ListVersionTags(ctx context.Context, prefix, pattern string) ([]TagInfo, error) {
	var filter *regexp.Regexp
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		filter = re
	}

	res, err := g.run(ctx, "tag", "-l", "--format="+tagFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to list git tags: %w", err)
	}

	var tags []TagInfo
	scanner := bufio.NewScanner(strings.NewReader(res.Stdout))
	for scanner.Scan() {
		tag, ok := parseTagLine(scanner.Text(), prefix)
		if !ok {
			continue
		}
		if filter != nil && !filter.MatchString(tag.Name) {
			continue
		}
		tags = append(tags, tag)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sortTags(tags)
	return tags, nil
}

// LatestVersionTag returns the highest version tag with the given prefix.
func (g *Helper) LatestVersionTag(ctx context.Context, prefix string) (TagInfo, error) {
	tags, err := g.ListVersionTags(ctx, prefix, "")
	if err != nil {
		return TagInfo{}, err
	}
	if len(tags) == 0 {
		return TagInfo{}, fmt.Errorf("%w with prefix %q", ErrNoVersionTags, prefix)
	}
	return tags[0], nil
}

func parseTagLine(line, prefix string) (TagInfo, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return TagInfo{}, false
	}

	parts := strings.SplitN(line, "|", 4)
	if len(parts) < 3 {
		return TagInfo{}, false
	}

	name := parts[0]
	if !strings.HasPrefix(name, prefix) {
		return TagInfo{}, false
	}
	version, err := bpsemver.Parse(strings.TrimPrefix(name, prefix))
	if err != nil {
		return TagInfo{}, false
	}

	date, err := time.Parse("2006-01-02 15:04:05 -0700", parts[2])
	if err != nil {
		if date, err = time.Parse(time.RFC3339, parts[2]); err != nil {
			date = time.Time{}
		}
	}

	tag := TagInfo{
		Name:    name,
		Commit:  parts[1],
		Date:    date,
		Version: version,
	}
	if len(parts) > 3 {
		tag.Message = parts[3]
	}
	return tag, true
}

// sortTags orders tags newest version first. Metadata is compared with
// x/mod/semver pre-release rules, so 1.2.3 sorts above 1.2.3-rc.
func sortTags(tags []TagInfo) {
	sort.SliceStable(tags, func(i, j int) bool {
		return semver.Compare(canonical(tags[i].Version), canonical(tags[j].Version)) > 0
	})
}

func canonical(v bpsemver.Version) string {
	return "v" + v.String()
}
