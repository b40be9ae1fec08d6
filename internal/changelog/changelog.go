// Package changelog groups the commits between a previous-release marker
// and HEAD into the two views the release planner needs: a first-parent
// line-commit stream, and a best-effort reconstruction of pull requests
// from merge-commit topology.
package changelog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/versio-release/versio/internal/vcs"
)

// CommitInfo is the planner-facing view of a single commit: its oid, the
// first line of its message, and the commit-kind token used to look up a
// size from a project's size table.
type CommitInfo struct {
	Oid     string
	Summary string
	Kind    string
}

// Kind extracts the token before the first ':' or '(' in a commit summary,
// trimmed, defaulting to "-" when no such token is present (e.g. "fix:
// typo" -> "fix", "feat(api): add field" -> "feat", "bump version" -> "-").
func Kind(summary string) string {
	summary = strings.TrimSpace(summary)
	idx := strings.IndexAny(summary, ":(")
	if idx < 0 {
		return "-"
	}
	token := strings.TrimSpace(summary[:idx])
	if token == "" {
		return "-"
	}
	return token
}

func toCommitInfo(r vcs.RawCommit) CommitInfo {
	return CommitInfo{Oid: r.Oid, Summary: r.Summary, Kind: Kind(r.Summary)}
}

// LineCommits walks hide..head first-parent only, newest first, for the
// last-commit index.
func LineCommits(gw *vcs.Gateway, hide, head vcs.Committish) ([]CommitInfo, error) {
	raws, err := gw.WalkFirstParent(hide, head)
	if err != nil {
		return nil, err
	}
	commits := make([]CommitInfo, 0, len(raws))
	for _, r := range raws {
		commits = append(commits, toCommitInfo(r))
	}
	return commits, nil
}

// FullPr is a reconstructed pull request: either a real merge's topology,
// or the synthetic "PR zero" holding commits no merge ever claimed.
type FullPr struct {
	Number    string
	BaseOid   string
	HeadOid   string
	ClosedAt  int64
	Commits   []CommitInfo
	Excludes  map[string]bool
	BestGuess bool
}

// IncludedCommits returns this PR's commits minus any listed in Excludes
// (commits a nested PR, processed earlier, already claimed).
func (p FullPr) IncludedCommits() []CommitInfo {
	if len(p.Excludes) == 0 {
		return p.Commits
	}
	out := make([]CommitInfo, 0, len(p.Commits))
	for _, c := range p.Commits {
		if !p.Excludes[c.Oid] {
			out = append(out, c)
		}
	}
	return out
}

var mergePrRE = regexp.MustCompile(`^Merge pull request #(\d+) from`)

// Group performs the full walk of hide..head and reconstructs pull
// requests from merge-commit topology: a merge commit's base_oid is its
// first parent, head_oid its second; the PR's commits are those reachable
// from head_oid but not base_oid. Nested merges are resolved oldest-first
// so that an inner PR claims its own commits before an enclosing PR's
// reachable set is computed, with the enclosing PR recording the overlap
// in Excludes rather than double-attributing it.
func Group(gw *vcs.Gateway, hide, head vcs.Committish) ([]FullPr, error) {
	raws, err := gw.WalkFull(hide, head)
	if err != nil {
		return nil, err
	}

	byOid := make(map[string]vcs.RawCommit, len(raws))
	var merges []vcs.RawCommit
	for _, r := range raws {
		byOid[r.Oid] = r
		if len(r.ParentOids) == 2 {
			merges = append(merges, r)
		}
	}

	sortByAuthorTimeAsc(merges)

	claimed := map[string]bool{}
	var prs []FullPr
	for _, m := range merges {
		base, headP := m.ParentOids[0], m.ParentOids[1]
		number, _ := parsePrNumber(m.Summary)

		if _, ok := byOid[headP]; !ok {
			prs = append(prs, FullPr{
				Number: number, BaseOid: base, HeadOid: headP,
				ClosedAt: m.AuthorTime, BestGuess: true,
			})
			claimed[m.Oid] = true
			continue
		}

		reachable := reachableExcluding(byOid, headP, base)
		commits := make([]CommitInfo, 0, len(reachable))
		excludes := map[string]bool{}
		for _, oid := range reachable {
			r := byOid[oid]
			if len(r.ParentOids) == 2 {
				claimed[oid] = true
				continue
			}
			if claimed[oid] {
				excludes[oid] = true
				continue
			}
			commits = append(commits, toCommitInfo(r))
			claimed[oid] = true
		}

		prs = append(prs, FullPr{
			Number: number, BaseOid: base, HeadOid: headP,
			ClosedAt: m.AuthorTime, Commits: commits,
			Excludes: excludes, BestGuess: false,
		})
		claimed[m.Oid] = true
	}

	var zero []CommitInfo
	var zeroClosedAt int64
	for _, r := range raws {
		if len(r.ParentOids) == 2 || claimed[r.Oid] {
			continue
		}
		zero = append(zero, toCommitInfo(r))
		if r.AuthorTime > zeroClosedAt {
			zeroClosedAt = r.AuthorTime
		}
	}
	if len(zero) > 0 {
		prs = append(prs, FullPr{Number: "0", Commits: zero, ClosedAt: zeroClosedAt})
	}

	return prs, nil
}

func parsePrNumber(summary string) (number string, bestGuess bool) {
	summary = strings.TrimSpace(summary)
	if m := mergePrRE.FindStringSubmatch(summary); m != nil {
		return m[1], false
	}
	return fmt.Sprintf("guess-%x", hashSummary(summary)), true
}

func hashSummary(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// reachableExcluding returns every oid reachable from head by following
// ParentOids that is not also reachable from base (base included), skipping
// any oid not present in byOid (outside the walked range).
func reachableExcluding(byOid map[string]vcs.RawCommit, head, base string) []string {
	var order []string
	visited := map[string]bool{base: true}
	var visit func(oid string, record bool)
	visit = func(oid string, record bool) {
		if visited[oid] {
			return
		}
		r, ok := byOid[oid]
		if !ok {
			return
		}
		visited[oid] = true
		if record {
			order = append(order, oid)
		}
		for _, p := range r.ParentOids {
			visit(p, record)
		}
	}
	if r, ok := byOid[base]; ok {
		for _, p := range r.ParentOids {
			visit(p, false)
		}
	}
	visit(head, true)
	return order
}

func sortByAuthorTimeAsc(commits []vcs.RawCommit) {
	for i := 1; i < len(commits); i++ {
		for j := i; j > 0 && commits[j-1].AuthorTime > commits[j].AuthorTime; j-- {
			commits[j-1], commits[j] = commits[j], commits[j-1]
		}
	}
}
