// Package plan turns a set of reconstructed pull requests into a per-project
// release plan: the Size each project should bump by and the change log that
// justifies it. Path-to-project attribution replays history commit by commit
// through a Slicer, since a commit belongs to whichever project covered its
// changed paths at the time the commit was made, not whichever project
// covers them at HEAD.
package plan

import (
	"fmt"
	"sort"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/size"
	"github.com/versio-release/versio/internal/slicer"
)

// LoggedCommit is one commit's contribution to one project's view of a PR.
type LoggedCommit struct {
	Oid       string
	Summary   string
	Size      size.Size
	Applies   bool
	Duplicate bool
}

// Included reports whether this commit actually counts toward its project's
// size and change log: it must apply to the project, and must not be a
// second sighting of an oid already counted earlier in the same project's
// log.
func (c LoggedCommit) Included() bool {
	return c.Applies && !c.Duplicate
}

// LoggedPr is one PR's contribution to one project's change log.
type LoggedPr struct {
	Number   string
	ClosedAt int64
	Commits  []LoggedCommit
	Size     size.Size
}

// Incr is a single project's computed bump and the change log behind it.
type Incr struct {
	Size size.Size
	Log  []LoggedPr
}

// Plan is the full output of a build: one Incr per project, plus the PRs
// that touched no project at all.
type Plan struct {
	Incrs       map[int]*Incr
	Ineffective []LoggedPr
}

type state int

const (
	stateIdle state = iota
	statePr
	stateCommit
)

// Builder replays a changelog.Group() result through the project-attribution
// state machine: start_pr/start_commit/
// start_file/finish_file/finish_commit/finish_pr, in that strict nesting
// order, followed by handle_deps and sort_and_dedup once every PR has been
// walked.
type Builder struct {
	sl      *slicer.Slicer
	current *config.ConfigFile

	incrs       map[int]*Incr
	ineffective []LoggedPr

	st            state
	curPr         changelog.FullPr
	curPrRecords  map[int][]*LoggedCommit
	curCommitRecs map[int]*LoggedCommit
	curSliced     *config.ConfigFile
}

// New returns a Builder that attributes commits against current (the
// working-tree config) using sl to reconstruct each commit's config as it
// stood at the time.
func New(sl *slicer.Slicer, current *config.ConfigFile) *Builder {
	return &Builder{
		sl:      sl,
		current: current,
		incrs:   map[int]*Incr{},
	}
}

func protocolErr(format string, args ...interface{}) error {
	return errs.Wrap(errs.ErrPlanProtocol, fmt.Errorf(format, args...))
}

// StartPr opens a new PR scope. Must be called while idle.
func (b *Builder) StartPr(pr changelog.FullPr) error {
	if b.st != stateIdle {
		return protocolErr("start_pr called while already inside a pr")
	}
	b.st = statePr
	b.curPr = pr
	b.curPrRecords = map[int][]*LoggedCommit{}
	return nil
}

// StartCommit opens a commit scope within the current PR, slicing the
// tracked config to this commit's point in history and seeding a tentative,
// not-yet-applying LoggedCommit for every current project.
func (b *Builder) StartCommit(commit changelog.CommitInfo) error {
	if b.st != statePr {
		return protocolErr("start_commit called outside a pr scope")
	}
	if err := b.sl.SliceTo(commit.Oid); err != nil {
		return err
	}
	sliced, err := b.sl.File()
	if err != nil {
		return err
	}
	b.curSliced = sliced

	b.curCommitRecs = map[int]*LoggedCommit{}
	for _, p := range b.current.Projects {
		rec := &LoggedCommit{
			Oid:     commit.Oid,
			Summary: commit.Summary,
			Size:    p.SizeFor(commit.Kind, b.current.Sizes),
		}
		b.curPrRecords[p.ID] = append(b.curPrRecords[p.ID], rec)
		b.curCommitRecs[p.ID] = rec
	}

	b.st = stateCommit
	return nil
}

// StartFile records that the current commit touched path. Every project
// (drawn from the config as it existed at this commit) that covers path,
// and that still exists in the current config, has its tentative record for
// this commit marked applies=true.
func (b *Builder) StartFile(path string) error {
	if b.st != stateCommit {
		return protocolErr("start_file called outside a commit scope")
	}
	for _, prevProject := range b.curSliced.Projects {
		if !prevProject.DoesCover(path) {
			continue
		}
		if _, err := b.current.Find(prevProject.ID); err != nil {
			continue
		}
		if rec, ok := b.curCommitRecs[prevProject.ID]; ok {
			rec.Applies = true
		}
	}
	return nil
}

// FinishFile closes a file scope. It exists to mirror the open/close
// symmetry of the event stream; it does no work of its own.
func (b *Builder) FinishFile() error {
	if b.st != stateCommit {
		return protocolErr("finish_file called outside a commit scope")
	}
	return nil
}

// FinishCommit closes the current commit scope and returns to the pr scope.
func (b *Builder) FinishCommit() error {
	if b.st != stateCommit {
		return protocolErr("finish_commit called outside a commit scope")
	}
	b.curCommitRecs = nil
	b.curSliced = nil
	b.st = statePr
	return nil
}

// FinishPr closes the current PR scope. For every current project, the PR's
// contribution is the max size across its applying tentative commits; a
// project with no applying commit in this PR gets no LoggedPr entry. A PR
// that left no project with an applying commit is recorded in Ineffective
// instead.
func (b *Builder) FinishPr() error {
	if b.st != statePr {
		return protocolErr("finish_pr called outside a pr scope")
	}

	pids := make([]int, 0, len(b.curPrRecords))
	for pid := range b.curPrRecords {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	effective := false
	for _, pid := range pids {
		recs := b.curPrRecords[pid]
		prSize := size.None
		applies := false
		for _, r := range recs {
			if r.Applies {
				applies = true
				prSize = size.Max(prSize, r.Size)
			}
		}
		if !applies {
			continue
		}
		effective = true

		entry := b.incrs[pid]
		if entry == nil {
			entry = &Incr{}
			b.incrs[pid] = entry
		}
		entry.Size = size.Max(entry.Size, prSize)
		entry.Log = append(entry.Log, LoggedPr{
			Number:   b.curPr.Number,
			ClosedAt: b.curPr.ClosedAt,
			Commits:  snapshotRecords(recs),
			Size:     prSize,
		})
	}

	if !effective {
		b.ineffective = append(b.ineffective, LoggedPr{
			Number:   b.curPr.Number,
			ClosedAt: b.curPr.ClosedAt,
			Commits:  commitsFromInfo(b.curPr.IncludedCommits()),
			Size:     size.None,
		})
	}

	b.curPrRecords = nil
	b.st = stateIdle
	return nil
}

func snapshotRecords(recs []*LoggedCommit) []LoggedCommit {
	out := make([]LoggedCommit, len(recs))
	for i, r := range recs {
		out[i] = *r
	}
	return out
}

func commitsFromInfo(infos []changelog.CommitInfo) []LoggedCommit {
	out := make([]LoggedCommit, len(infos))
	for i, c := range infos {
		out[i] = LoggedCommit{Oid: c.Oid, Summary: c.Summary}
	}
	return out
}

// HandleDeps lifts each project's size to at least the max size of every
// project it depends on, propagating along the dependency graph until no
// further lift is possible. The graph is checked acyclic at config parse
// time, so this always terminates; propagation order follows a Kahn
// topological sort over the reverse dependency edges (dependee -> dependent)
// so that a project is only finalized once everything it depends on already
// has its fully-lifted size.
func (b *Builder) HandleDeps() {
	for _, p := range b.current.Projects {
		if _, ok := b.incrs[p.ID]; !ok {
			b.incrs[p.ID] = &Incr{Size: size.None}
		}
	}

	indegree := map[int]int{}
	dependents := map[int][]int{} // dependee id -> dependent ids
	for _, p := range b.current.Projects {
		if _, ok := indegree[p.ID]; !ok {
			indegree[p.ID] = 0
		}
		for _, dep := range p.Depends {
			indegree[p.ID]++
			dependents[dep] = append(dependents[dep], p.ID)
		}
	}

	var queue []int
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	byID := map[int]config.Project{}
	for _, p := range b.current.Projects {
		byID[p.ID] = p
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, dep := range byID[id].Depends {
			if dep == id {
				continue
			}
			if depEntry := b.incrs[dep]; depEntry != nil {
				entry := b.incrs[id]
				entry.Size = size.Max(entry.Size, depEntry.Size)
			}
		}

		next := dependents[id]
		sort.Ints(next)
		for _, d := range next {
			indegree[d]--
			if indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
}

// SortAndDedup finalizes every project's change log: entries are stable
// sorted by ClosedAt ascending, then walked in that order marking any commit
// whose oid has already been counted toward this same project as a
// duplicate (a squash-and-backport can land the same oid in two PRs). Each
// PR entry's persisted Size is then recomputed from only the commits that
// survive as Included(), replacing whatever rollup value FinishPr recorded;
// nothing downstream reads the pre-dedup value. The project's own Size is
// left alone: dedup keeps the first sighting of every oid, so the project
// total cannot shrink, and lowering it here would undo HandleDeps' lift.
func (b *Builder) SortAndDedup() {
	for _, entry := range b.incrs {
		stableSortByClosedAt(entry.Log)

		seenOids := map[string]bool{}
		for i := range entry.Log {
			pr := &entry.Log[i]
			for j := range pr.Commits {
				c := &pr.Commits[j]
				if !c.Applies {
					continue
				}
				if seenOids[c.Oid] {
					c.Duplicate = true
					continue
				}
				seenOids[c.Oid] = true
			}
		}

		for i := range entry.Log {
			pr := &entry.Log[i]
			prSize := size.None
			for _, c := range pr.Commits {
				if c.Included() {
					prSize = size.Max(prSize, c.Size)
				}
			}
			pr.Size = prSize
		}
	}
}

func stableSortByClosedAt(log []LoggedPr) {
	sort.SliceStable(log, func(i, j int) bool {
		return log[i].ClosedAt < log[j].ClosedAt
	})
}

// Build walks every reconstructed PR through the full event sequence and
// returns the finished Plan. It is a convenience wrapper around StartPr /
// StartCommit / StartFile / FinishFile / FinishCommit / FinishPr /
// HandleDeps / SortAndDedup for callers that have a plain []changelog.FullPr
// and a way to list a commit's changed paths.
func Build(sl *slicer.Slicer, current *config.ConfigFile, prs []changelog.FullPr, deltasFor func(oid string) ([]string, error)) (*Plan, error) {
	b := New(sl, current)

	for _, pr := range prs {
		if err := b.StartPr(pr); err != nil {
			return nil, err
		}
		for _, commit := range pr.IncludedCommits() {
			if err := b.StartCommit(commit); err != nil {
				return nil, err
			}
			paths, err := deltasFor(commit.Oid)
			if err != nil {
				return nil, err
			}
			for _, path := range paths {
				if err := b.StartFile(path); err != nil {
					return nil, err
				}
				if err := b.FinishFile(); err != nil {
					return nil, err
				}
			}
			if err := b.FinishCommit(); err != nil {
				return nil, err
			}
		}
		if err := b.FinishPr(); err != nil {
			return nil, err
		}
	}

	b.HandleDeps()
	b.SortAndDedup()

	return &Plan{Incrs: b.incrs, Ineffective: b.ineffective}, nil
}
