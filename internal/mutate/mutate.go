// Package mutate implements the release plan's mutation stage: for each
// project in a built plan, resolve its current and previous version,
// compute and verify the target version, and stage a mark-file rewrite and
// change-log write. Decide does no I/O beyond the two reader callbacks and
// the already-built last-commit index it's given, and never touches the
// working tree; Apply is the only place that actually stages, commits,
// tags, and pushes, so a restriction violation discovered while deciding
// aborts before anything is written.
package mutate

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/lastcommit"
	"github.com/versio-release/versio/internal/mark"
	"github.com/versio-release/versio/internal/plan"
	"github.com/versio-release/versio/internal/size"
	"github.com/versio-release/versio/internal/vcs"
)

// Outcome classifies what (if anything) happened to a single project.
type Outcome int

const (
	// NoChange means the rolled-up size was Empty: relevant commits were
	// seen but none of them bump the version.
	NoChange Outcome = iota
	// Bumped means the mark file was rewritten to a new target version.
	Bumped
	// Unchanged means the target equals the current version already.
	Unchanged
	// ExceededByHuman means a human already bumped past the computed
	// target; the mark file is left alone.
	ExceededByHuman
	// NewProject means no previous version could be resolved at all.
	NewProject
)

func (o Outcome) String() string {
	switch o {
	case NoChange:
		return "no-change"
	case Bumped:
		return "bumped"
	case Unchanged:
		return "unchanged"
	case ExceededByHuman:
		return "exceeded-by-human"
	case NewProject:
		return "new-project"
	default:
		return "unknown"
	}
}

// ProjectPlan is the fully resolved mutation decision for one project.
type ProjectPlan struct {
	ProjectID      int
	ProjectName    string
	Outcome        Outcome
	PrevVersion    *semver.Version
	CurrentVersion semver.Version
	TargetVersion  *semver.Version
	AnchorTag      string

	MarkPath     string
	MarkRewrite  *mark.Mark
	NewMarkValue string

	// AnchorCommit is the oid the anchor tag should move to: the
	// last-commit index's entry for this project when one exists, or
	// empty to fall back to the fresh release commit (new projects, or
	// projects whose range saw no covering commit).
	AnchorCommit string

	ChangelogPath string
	ChangelogBody []byte
}

// Decision is every project's mutation decision, in project-id order.
type Decision struct {
	Projects []ProjectPlan
}

// MarkReader reads the raw bytes of a mark file from some point in history.
type MarkReader func(locator config.MarkLocator) ([]byte, error)

// Decide resolves, for every current project, what the mutation stage would
// do, without staging or mutating anything. prevAt is the config as it
// existed at prev_tag, or nil if prev_tag does not exist yet (first
// release: every project is treated as new). lastCommits is the last-commit
// index the caller already built (walking prev_tag..HEAD is I/O Decide
// itself never performs); it supplies each project's anchor-tag target oid.
func Decide(p *plan.Plan, live *config.ConfigFile, prevAt *config.ConfigFile, lastCommits lastcommit.Index, readLiveMark, readPrevMark MarkReader) (*Decision, error) {
	ids := make([]int, 0, len(live.Projects))
	for _, proj := range live.Projects {
		ids = append(ids, proj.ID)
	}
	sort.Ints(ids)

	d := &Decision{}
	for _, id := range ids {
		proj, err := live.Find(id)
		if err != nil {
			return nil, err
		}

		incr := p.Incrs[id]
		if incr == nil {
			incr = &plan.Incr{Size: size.None}
		}

		pp, err := decideProject(*proj, incr, prevAt, lastCommits, readLiveMark, readPrevMark)
		if err != nil {
			return nil, err
		}
		d.Projects = append(d.Projects, pp)
	}
	return d, nil
}

func decideProject(proj config.Project, incr *plan.Incr, prevAt *config.ConfigFile, lastCommits lastcommit.Index, readLiveMark, readPrevMark MarkReader) (ProjectPlan, error) {
	if proj.Mark == nil {
		return ProjectPlan{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("project %q has no version locator configured", proj.Name))
	}

	liveBytes, err := readLiveMark(*proj.Mark)
	if err != nil {
		return ProjectPlan{}, err
	}
	curtMark, err := mark.Scan(liveBytes, *proj.Mark)
	if err != nil {
		return ProjectPlan{}, err
	}
	curtVers, err := semver.Parse(curtMark.Value)
	if err != nil {
		return ProjectPlan{}, errs.Wrap(errs.ErrBadSemver, fmt.Errorf("project %q current version %q: %w", proj.Name, curtMark.Value, err))
	}

	prevVers, err := resolvePrevVersion(proj, prevAt, readPrevMark)
	if err != nil {
		return ProjectPlan{}, err
	}

	pp := ProjectPlan{
		ProjectID:      proj.ID,
		ProjectName:    proj.Name,
		PrevVersion:    prevVers,
		CurrentVersion: curtVers,
		MarkPath:       proj.Mark.File,
		AnchorCommit:   lastCommits[proj.ID],
	}

	switch {
	case incr.Size == size.Empty:
		pp.Outcome = NoChange

	case prevVers != nil:
		target := size.Apply(incr.Size, *prevVers)
		pp.TargetVersion = &target

		switch {
		case size.LessThan(curtVers, target):
			if proj.Restrict != nil && !proj.Restrict(target) {
				return ProjectPlan{}, errs.Wrap(errs.ErrRestrictionViolated, fmt.Errorf("project %q: target version %s violates its restriction", proj.Name, target))
			}
			pp.Outcome = Bumped
			pp.MarkRewrite = &curtMark
			pp.NewMarkValue = target.String()
			pp.AnchorTag = tagName(proj, target)
		case size.LessThan(target, curtVers):
			pp.Outcome = ExceededByHuman
			pp.AnchorTag = tagName(proj, curtVers)
		default:
			pp.Outcome = Unchanged
			pp.AnchorTag = tagName(proj, curtVers)
		}

	default:
		if proj.Restrict != nil && !proj.Restrict(curtVers) {
			return ProjectPlan{}, errs.Wrap(errs.ErrRestrictionViolated, fmt.Errorf("project %q: current version %s violates its restriction", proj.Name, curtVers))
		}
		pp.Outcome = NewProject
		pp.AnchorTag = tagName(proj, curtVers)
	}

	if len(incr.Log) > 0 {
		pp.ChangelogPath = changelogPathFor(proj)
		pp.ChangelogBody = renderChangelog(proj, incr.Log)
	}

	return pp, nil
}

func resolvePrevVersion(proj config.Project, prevAt *config.ConfigFile, readPrevMark MarkReader) (*semver.Version, error) {
	if prevAt == nil {
		return nil, nil
	}
	prevProj, err := prevAt.Find(proj.ID)
	if err != nil {
		return nil, nil // not present at prev_tag: a genuinely new project.
	}
	if prevProj.Mark == nil {
		return nil, fmt.Errorf("project %q had no version locator at the previous release", proj.Name)
	}

	data, err := readPrevMark(*prevProj.Mark)
	if err != nil {
		return nil, err
	}
	m, err := mark.Scan(data, *prevProj.Mark)
	if err != nil {
		return nil, err
	}
	v, err := semver.Parse(m.Value)
	if err != nil {
		return nil, errs.Wrap(errs.ErrBadSemver, fmt.Errorf("project %q previous version %q: %w", proj.Name, m.Value, err))
	}
	return &v, nil
}

func tagName(proj config.Project, v semver.Version) string {
	if proj.TagPrefix != "" {
		return fmt.Sprintf("%s-v%s", proj.TagPrefix, v.String())
	}
	return "v" + v.String()
}

// changelogPathFor places a project's change log next to its mark file;
// a project's own directory is the least surprising place to look for one.
func changelogPathFor(proj config.Project) string {
	if proj.Mark != nil {
		return filepath.Join(filepath.Dir(proj.Mark.File), "CHANGELOG.md")
	}
	return filepath.Join(proj.Name, "CHANGELOG.md")
}

func renderChangelog(proj config.Project, log []plan.LoggedPr) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", proj.Name)
	for _, pr := range log {
		var included []plan.LoggedCommit
		for _, c := range pr.Commits {
			if c.Included() {
				included = append(included, c)
			}
		}
		if len(included) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## PR #%s (%s)\n\n", pr.Number, pr.Size)
		for _, c := range included {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Summary, shortOid(c.Oid))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func shortOid(oid string) string {
	if len(oid) > 7 {
		return oid[:7]
	}
	return oid
}

// Action is a single human-readable line describing what Apply did (or
// would do, under --dry-run) for one project.
type Action struct {
	ProjectName string
	Message     string
}

// Apply stages every mark-file rewrite and change-log write a Decision
// calls for, commits them in one commit, forwards prev_tag to the new
// commit and every project's anchor tag to its AnchorCommit (or to the new
// commit when a project has none), and pushes branch and tags. Under
// dryRun it only computes the Action log and touches nothing.
func Apply(mut *vcs.Mutator, d *Decision, authorName, authorEmail, remote, branch, prevTag string, dryRun bool, readLiveMarkRaw func(path string) ([]byte, error)) ([]Action, error) {
	actions := describeActions(d)
	if dryRun {
		return actions, nil
	}

	for _, pp := range d.Projects {
		if pp.MarkRewrite != nil {
			data, err := readLiveMarkRaw(pp.MarkPath)
			if err != nil {
				return nil, err
			}
			rewritten, err := mark.Rewrite(data, *pp.MarkRewrite, pp.NewMarkValue)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", pp.ProjectName, err)
			}
			if err := mut.StageWrite(pp.MarkPath, rewritten); err != nil {
				return nil, err
			}
		}
		if pp.ChangelogPath != "" {
			if err := mut.StageWrite(pp.ChangelogPath, pp.ChangelogBody); err != nil {
				return nil, err
			}
		}
	}

	oid, err := mut.Commit(authorName, authorEmail)
	if err != nil {
		return nil, err
	}

	if err := mut.MoveTag(prevTag, oid); err != nil {
		return nil, err
	}
	for _, pp := range d.Projects {
		if pp.AnchorTag != "" {
			anchorOid := pp.AnchorCommit
			if anchorOid == "" {
				anchorOid = oid
			}
			if err := mut.MoveTag(pp.AnchorTag, anchorOid); err != nil {
				return nil, err
			}
		}
	}

	if err := mut.Push(remote, branch, prevTag); err != nil {
		return nil, err
	}
	for _, pp := range d.Projects {
		if pp.AnchorTag != "" {
			if err := mut.Push(remote, branch, pp.AnchorTag); err != nil {
				return nil, err
			}
		}
	}

	return actions, nil
}

func describeActions(d *Decision) []Action {
	var actions []Action
	for _, pp := range d.Projects {
		var msg string
		switch pp.Outcome {
		case NoChange:
			msg = "no change"
		case Bumped:
			msg = fmt.Sprintf("%s -> %s", versionOrNone(pp.PrevVersion), pp.TargetVersion)
		case ExceededByHuman:
			msg = fmt.Sprintf("no change: %s -> %s exceeds %s", versionOrNone(pp.PrevVersion), pp.TargetVersion, pp.CurrentVersion)
		case Unchanged:
			msg = fmt.Sprintf("unchanged at %s", pp.CurrentVersion)
		case NewProject:
			msg = fmt.Sprintf("new project at %s", pp.CurrentVersion)
		}
		actions = append(actions, Action{ProjectName: pp.ProjectName, Message: msg})

		if pp.ChangelogPath != "" {
			actions = append(actions, Action{ProjectName: pp.ProjectName, Message: "change log staged at " + pp.ChangelogPath})
		}
	}
	return actions
}

func versionOrNone(v *semver.Version) string {
	if v == nil {
		return "none"
	}
	return v.String()
}
