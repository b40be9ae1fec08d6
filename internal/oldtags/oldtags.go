// Package oldtags builds, once, an index answering "what is
// the latest tag of prefix P not after commit C" without re-querying the
// repository for every commit.
package oldtags

import (
	"strings"

	"github.com/versio-release/versio/internal/vcs"
)

// OldTags is immutable after construction: a per-prefix ordered tag list
// plus, for each commit the walk visited, the index into that list of the
// best (most recent-at-or-before) tag.
type OldTags struct {
	ordered map[string][]string       // prefix -> tag names, grouped by resolved commit oid, latest-tagged first within a commit
	byOid   map[string]map[string]int // prefix -> commit oid -> index into ordered[prefix]
}

// taggedOid pairs a tag with the commit oid it resolves to and, for
// annotated tags, the tagger time used to break ties between tags that
// resolve to the same commit.
type taggedOid struct {
	tag      vcs.Tag
	oid      string
	taggerAt int64
}

// Build walks every tag matching "[<prefix>-]v*" across the given prefixes,
// resolves each to its commit, and walks commits from base toward head to
// record, for every commit along the way, the most recent tag of each
// prefix at or before it. Ties between tags pointing at the same commit are
// broken by annotated-tag tagger time, latest first; lightweight tags
// (tagger time unavailable) sort after annotated ones.
func Build(gw *vcs.Gateway, base, head vcs.Committish, prefixes []string) (*OldTags, error) {
	idx := &OldTags{
		ordered: map[string][]string{},
		byOid:   map[string]map[string]int{},
	}

	for _, prefix := range prefixes {
		glob := "v*"
		if prefix != "" {
			glob = prefix + "-v*"
		}

		tags, err := gw.TagsMatching(glob)
		if err != nil {
			return nil, err
		}

		resolved := make([]taggedOid, 0, len(tags))
		for _, tag := range tags {
			oid, err := gw.ResolveCommit(tag)
			if err != nil {
				continue
			}
			taggerAt, _, err := gw.TaggerTime(tag)
			if err != nil {
				taggerAt = 0
			}
			resolved = append(resolved, taggedOid{tag: tag, oid: oid, taggerAt: taggerAt})
		}

		sortTagsByOidThenTaggerTime(resolved)

		ordered := make([]string, 0, len(resolved))
		oidToIndex := map[string]int{}
		for _, r := range resolved {
			ordered = append(ordered, stripPrefix(string(r.tag), prefix))
			if _, seen := oidToIndex[r.oid]; !seen {
				oidToIndex[r.oid] = len(ordered) - 1
			}
		}
		idx.ordered[prefix] = ordered

		commitIndex, err := walkCommitToTagIndex(gw, base, head, oidToIndex)
		if err != nil {
			return nil, err
		}
		idx.byOid[prefix] = commitIndex
	}

	return idx, nil
}

// Latest returns the latest tag of prefix not after commit oid, and
// whether one exists.
func (o *OldTags) Latest(prefix, oid string) (string, bool) {
	byOid, ok := o.byOid[prefix]
	if !ok {
		return "", false
	}
	i, ok := byOid[oid]
	if !ok {
		return "", false
	}
	tags := o.ordered[prefix]
	if i < 0 || i >= len(tags) {
		return "", false
	}
	return tags[i], true
}

func sortTagsByOidThenTaggerTime(tags []taggedOid) {
	for i := 1; i < len(tags); i++ {
		for j := i; j > 0 && less(tags[j], tags[j-1]); j-- {
			tags[j-1], tags[j] = tags[j], tags[j-1]
		}
	}
}

// less orders by descending tagger time within the same oid, so that the
// first tag recorded per oid in Build is the latest-tagged one.
func less(a, b taggedOid) bool {
	if a.oid != b.oid {
		return a.oid < b.oid
	}
	return a.taggerAt > b.taggerAt
}

func stripPrefix(tag, prefix string) string {
	if prefix == "" {
		return tag
	}
	return strings.TrimPrefix(tag, prefix+"-")
}

// walkCommitToTagIndex walks base..head and records, for each visited
// commit, the index of the most recent tagged ancestor (including itself)
// per prefix.
func walkCommitToTagIndex(gw *vcs.Gateway, base, head vcs.Committish, oidToIndex map[string]int) (map[string]int, error) {
	commits, err := gw.WalkFirstParent(base, head)
	if err != nil {
		return nil, err
	}

	result := map[string]int{}
	best := -1
	// commits are newest first; walk oldest-to-newest so "best tag seen so
	// far" only grows as we move forward in history.
	for i := len(commits) - 1; i >= 0; i-- {
		oid := commits[i].Oid
		if idx, ok := oidToIndex[oid]; ok {
			best = idx
		}
		if best >= 0 {
			result[oid] = best
		}
	}
	return result, nil
}
