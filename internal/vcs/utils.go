package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/versio-release/versio/internal/errs"
)

// RawCommit is the subset of a git commit the repo gateway exposes to the
// rest of the planner. Kind/project attribution are computed upstream of
// this package, since they depend on config state the gateway knows
// nothing about.
type RawCommit struct {
	Oid        string
	Summary    string
	ParentOids []string
	AuthorTime int64
}

// Delta is a single (old_path, new_path) file change within a commit.
type Delta struct {
	OldPath string
	NewPath string
}

// Paths returns the distinct non-empty paths touched by this delta.
func (d Delta) Paths() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range []string{d.OldPath, d.NewPath} {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Gateway is the read-side of the repo gateway: it wraps a CLI rooted at a
// located repo root.
type Gateway struct {
	cli  CLI
	root string
}

// Open upward-searches from dir for a ".git" directory and returns a
// Gateway rooted there.
func Open(dir string) (*Gateway, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrIO, err)
	}

	for cur := abs; ; {
		if st, err := os.Stat(filepath.Join(cur, ".git")); err == nil && st != nil {
			return &Gateway{cli: New(cur), root: cur}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, errs.Wrap(errs.ErrVcsUnavailable, fmt.Errorf("no .git directory found above %q", abs))
		}
		cur = parent
	}
}

// NewGateway wraps an arbitrary CLI (typically a CLIMock in tests) as a
// Gateway rooted at root.
func NewGateway(cli CLI, root string) *Gateway {
	return &Gateway{cli: cli, root: root}
}

// Root returns the located repository root.
func (g *Gateway) Root() string { return g.root }

// CurrentBranch returns the current active branch's short name.
func (g *Gateway) CurrentBranch() (string, error) {
	out, err := g.cli.RevParse(RevParseOptions{Committish: Head, AbbrevRef: true})
	if err != nil {
		return "", fmt.Errorf("unable to determine current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ResolveCommit resolves a committish to its full commit oid, peeling
// annotated tags via `ref^{}`.
func (g *Gateway) ResolveCommit(c Committish) (string, error) {
	out, err := g.cli.RevParse(RevParseOptions{Committish: SomeCommittish(c.Committish() + "^{}"), Verify: true})
	if err != nil {
		return "", fmt.Errorf("unable to resolve %q: %w", c.Committish(), err)
	}
	return strings.TrimSpace(out), nil
}

// TagsMatching lists tag names matching a for-each-ref glob, newest
// creator date first (git's -creatordate sort). It does no tie-breaking of
// its own between tags pointing at the same commit.
func (g *Gateway) TagsMatching(glob string) ([]Tag, error) {
	out, err := g.cli.ForEachRef(ForEachRefOptions{
		Pattern: "refs/tags/" + glob,
		Format:  "%(refname:short)",
		Sort:    "-creatordate",
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list tags matching %q: %w", glob, err)
	}

	var tags []Tag
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tags = append(tags, Tag(line))
	}
	return tags, nil
}

// TaggerTime returns the unix tagger timestamp of an annotated tag, or
// ok=false for a lightweight tag (which has no tagger line at all).
func (g *Gateway) TaggerTime(tag Tag) (int64, bool, error) {
	out, err := g.cli.ForEachRef(ForEachRefOptions{
		Pattern: "refs/tags/" + string(tag),
		Format:  "%(taggerdate:unix)",
	})
	if err != nil {
		return 0, false, fmt.Errorf("unable to read tagger time for %q: %w", tag, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return 0, false, nil
	}
	at, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed tagger time %q for %q: %w", out, tag, err)
	}
	return at, true, nil
}

// ClosestAnchorTag returns the most recent release tag reachable from HEAD
// matching a project's anchor pattern ([prefix-]v*), or ok=false when no
// such tag exists yet.
func (g *Gateway) ClosestAnchorTag(prefix string) (string, bool) {
	glob := "v*"
	if prefix != "" {
		glob = prefix + "-v*"
	}
	zero := 0
	out, err := g.cli.Describe(DescribeOptions{
		Committish: Head,
		Tags:       true,
		Abbrev:     &zero,
		Match:      []string{glob},
	})
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// ReadBlob reads the contents of path as it existed at committish, e.g.
// <tag>:<path> or <oid>:<path>.
func (g *Gateway) ReadBlob(committish Committish, path string) ([]byte, error) {
	out, err := g.cli.Show(ShowOptions{Committish: committish, Path: path})
	if err != nil {
		return nil, fmt.Errorf("unable to read %q at %q: %w", path, committish.Committish(), err)
	}
	return []byte(out), nil
}

// BlobOid resolves the git object id of path as it existed at committish,
// without reading its contents. Callers use this as a cache key that only
// changes when the file's contents actually change, collapsing long runs
// of commits that never touched path.
func (g *Gateway) BlobOid(committish Committish, path string) (string, error) {
	out, err := g.cli.RevParse(RevParseOptions{
		Committish: SomeCommittish(fmt.Sprintf("%s:%s", committish.Committish(), path)),
		Verify:     true,
	})
	if err != nil {
		return "", fmt.Errorf("unable to resolve blob oid for %q at %q: %w", path, committish.Committish(), err)
	}
	return strings.TrimSpace(out), nil
}

// walkRange is base..head, or just head when base is nil (before the first
// release, there's no marker tag to hide yet).
func walkRange(base, head Committish) Committish {
	if base == nil {
		return head
	}
	return Range{Start: base, End: head}
}

// WalkFirstParent yields commits reachable from head but not from base,
// first-parent only, newest first. A nil base walks all of head's history.
func (g *Gateway) WalkFirstParent(base, head Committish) ([]RawCommit, error) {
	rng := walkRange(base, head)
	out, err := g.cli.RevList(RevListOptions{
		Committish:  rng,
		FirstParent: true,
		Pretty:      "format:%H%x00%at%x00%B%x03",
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk first-parent history %s: %w", rng.Committish(), err)
	}
	return parseRevList(out)
}

// WalkFull yields every commit reachable from head but not from hide,
// including merge commits and all parent oids. A nil hide walks all of
// head's history.
func (g *Gateway) WalkFull(hide, head Committish) ([]RawCommit, error) {
	rng := walkRange(hide, head)
	out, err := g.cli.RevList(RevListOptions{
		Committish: rng,
		Pretty:     "format:%H%x00%P%x00%at%x00%B%x03",
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk history %s: %w", rng.Committish(), err)
	}
	return parseRevListWithParents(out)
}

// Deltas enumerates the (old_path, new_path) changes a commit makes
// against its parent(s), deduplicated per delta. Merge commits are diffed
// against every parent (-m); callers decide how to interpret that for
// multi-parent commits.
func (g *Gateway) Deltas(oid string) ([]Delta, error) {
	out, err := g.cli.DiffTree(DiffTreeOptions{Committish: Commit(oid)})
	if err != nil {
		return nil, fmt.Errorf("unable to diff commit %q: %w", oid, err)
	}

	seen := map[string]bool{}
	var deltas []Delta
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		var d Delta
		switch {
		case strings.HasPrefix(status, "R") && len(fields) >= 3:
			d = Delta{OldPath: fields[1], NewPath: fields[2]}
		case strings.HasPrefix(status, "D"):
			d = Delta{OldPath: fields[1]}
		case strings.HasPrefix(status, "A"):
			d = Delta{NewPath: fields[1]}
		default:
			d = Delta{OldPath: fields[1], NewPath: fields[1]}
		}
		key := d.OldPath + "\x00" + d.NewPath
		if seen[key] {
			continue
		}
		seen[key] = true
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// stripCommitHeader removes the "commit <sha>" line rev-list prepends to
// every --pretty=format: record.
func stripCommitHeader(rec string) string {
	rec = strings.TrimLeft(rec, "\n")
	if strings.HasPrefix(rec, "commit ") {
		if idx := strings.IndexByte(rec, '\n'); idx >= 0 {
			rec = rec[idx+1:]
		}
	}
	return rec
}

func parseRevList(out string) ([]RawCommit, error) {
	var commits []RawCommit
	for _, rec := range strings.Split(out, "\x03") {
		rec = stripCommitHeader(rec)
		if strings.TrimSpace(rec) == "" {
			continue
		}
		parts := strings.SplitN(rec, "\x00", 3)
		if len(parts) != 3 {
			continue
		}
		at, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed author-time in rev-list output: %w", err)
		}
		commits = append(commits, RawCommit{
			Oid:        parts[0],
			AuthorTime: at,
			Summary:    firstLine(parts[2]),
		})
	}
	return commits, nil
}

func parseRevListWithParents(out string) ([]RawCommit, error) {
	var commits []RawCommit
	for _, rec := range strings.Split(out, "\x03") {
		rec = stripCommitHeader(rec)
		if strings.TrimSpace(rec) == "" {
			continue
		}
		parts := strings.SplitN(rec, "\x00", 4)
		if len(parts) != 4 {
			continue
		}
		at, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed author-time in rev-list output: %w", err)
		}
		var parents []string
		if p := strings.TrimSpace(parts[1]); p != "" {
			parents = strings.Fields(p)
		}
		commits = append(commits, RawCommit{
			Oid:        parts[0],
			ParentOids: parents,
			AuthorTime: at,
			Summary:    firstLine(parts[3]),
		})
	}
	return commits, nil
}

func firstLine(body string) string {
	body = strings.TrimLeft(body, "\n")
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		return body[:idx]
	}
	return body
}
