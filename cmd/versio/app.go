// Command versio is the CLI driver for the release planner: it wires the
// repo gateway, config loader, slicer, plan builder, and mutation stage
// behind the subcommands named in the config model's external interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/lastcommit"
	"github.com/versio-release/versio/internal/mark"
	"github.com/versio-release/versio/internal/oldtags"
	"github.com/versio-release/versio/internal/plan"
	"github.com/versio-release/versio/internal/slicer"
	"github.com/versio-release/versio/internal/vcs"
)

// app bundles the gateway and live config a subcommand needs, opened once
// per invocation at the level --vcs-level allows.
type app struct {
	root    string
	gw      *vcs.Gateway
	live    *config.ConfigFile
	prevTag string
	level   vcs.Level
}

func openApp(vcsLevel vcs.LevelRange) (*app, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errs.Wrap(errs.ErrIO, err)
	}

	gw, err := vcs.Open(dir)
	if err != nil {
		return nil, err
	}

	level, err := gw.Escalate(vcsLevel)
	if err != nil {
		return nil, err
	}

	// At smart level the gateway may sync before reading: fetch the remote's
	// tags and branch, then fast-forward, refusing a dirty tree or a
	// diverged branch rather than guessing.
	if level == vcs.LevelSmart {
		branch, err := gw.CurrentBranch()
		if err != nil {
			return nil, err
		}
		mut, err := vcs.OpenMutator(gw.Root())
		if err != nil {
			return nil, err
		}
		if err := mut.FetchFastForward("origin", branch); err != nil {
			return nil, err
		}
	}

	live, err := config.FromDir(gw.Root())
	if err != nil {
		return nil, err
	}

	prevTag := live.PrevTag
	if prevTag == "" {
		prevTag = config.DefaultPrevTag
	}

	return &app{root: gw.Root(), gw: gw, live: live, prevTag: prevTag, level: level}, nil
}

// prevConfig returns the config as it existed at prev_tag, or nil if that
// tag doesn't exist yet (first release, nothing to slice to).
func (a *app) prevConfig() (*config.ConfigFile, error) {
	if a.prevBase() == nil {
		return nil, nil
	}
	return config.FromSlice(a.gw, vcs.Tag(a.prevTag))
}

// prevBase is the walk base for every prev_tag..HEAD query: the tag itself
// when it resolves, or nil (walk all of history) before the first release
// has ever planted it.
func (a *app) prevBase() vcs.Committish {
	if _, err := a.gw.ResolveCommit(vcs.Tag(a.prevTag)); err != nil {
		return nil
	}
	return vcs.Tag(a.prevTag)
}

// prs reconstructs every pull request between prev_tag and HEAD.
func (a *app) prs() ([]changelog.FullPr, error) {
	return changelog.Group(a.gw, a.prevBase(), vcs.Head)
}

// deltasFor returns the distinct paths touched by oid, in the shape the
// plan builder expects from a per-commit file iterator.
func (a *app) deltasFor(oid string) ([]string, error) {
	deltas, err := a.gw.Deltas(oid)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var paths []string
	for _, d := range deltas {
		for _, p := range d.Paths() {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

// buildPlan reconstructs the PRs in range and replays them through the
// plan builder against the live config.
func (a *app) buildPlan() (*plan.Plan, []changelog.FullPr, error) {
	prs, err := a.prs()
	if err != nil {
		return nil, nil, err
	}
	sl := slicer.New(a.gw, a.root, a.live)
	pl, err := plan.Build(sl, a.live, prs, a.deltasFor)
	if err != nil {
		return nil, nil, err
	}
	return pl, prs, nil
}

func (a *app) readLiveMark(locator config.MarkLocator) ([]byte, error) {
	return os.ReadFile(filepath.Join(a.root, locator.File))
}

func (a *app) readPrevMark(locator config.MarkLocator) ([]byte, error) {
	return a.gw.ReadBlob(vcs.Tag(a.prevTag), locator.File)
}

// currentVersion scans a project's mark in the working tree.
func (a *app) currentVersion(proj config.Project) (string, error) {
	if proj.Mark == nil {
		return "", errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("project %q has no mark locator", proj.Name))
	}
	data, err := a.readLiveMark(*proj.Mark)
	if err != nil {
		return "", err
	}
	m, err := mark.Scan(data, *proj.Mark)
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

// prevVersion scans a project's mark as it existed at prev_tag. ok is
// false when the project didn't exist yet at prev_tag (new project).
func (a *app) prevVersion(proj config.Project) (value string, ok bool, err error) {
	prevAt, err := a.prevConfig()
	if err != nil {
		return "", false, err
	}
	if prevAt == nil {
		return "", false, nil
	}
	prevProj, err := prevAt.Find(proj.ID)
	if err != nil {
		return "", false, nil
	}
	if prevProj.Mark == nil {
		return "", false, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("project %q had no mark locator at %s", proj.Name, a.prevTag))
	}
	data, err := a.readPrevMark(*prevProj.Mark)
	if err != nil {
		return "", false, err
	}
	m, err := mark.Scan(data, *prevProj.Mark)
	if err != nil {
		return "", false, err
	}
	return m.Value, true, nil
}

// tagPrefixes returns the distinct tag prefixes across the live config's
// projects.
func (a *app) tagPrefixes() []string {
	seen := map[string]bool{}
	var prefixes []string
	for _, p := range a.live.Projects {
		if !seen[p.TagPrefix] {
			seen[p.TagPrefix] = true
			prefixes = append(prefixes, p.TagPrefix)
		}
	}
	sort.Strings(prefixes)
	return prefixes
}

// oldTags builds the per-prefix anchor-tag index over prev_tag..HEAD,
// letting a debug command annotate a PR or commit with the most recent
// per-project release tag at or before it.
func (a *app) oldTags() (*oldtags.OldTags, error) {
	return oldtags.Build(a.gw, a.prevBase(), vcs.Head, a.tagPrefixes())
}

// lastCommitIndex builds the per-project last-commit index: the newest
// line commit in prev_tag..HEAD whose diff touched a path that project
// covered at the time, used by the mutation stage to forward a project's
// anchor tag to the commit that actually affected it.
func (a *app) lastCommitIndex() (lastcommit.Index, error) {
	commits, err := changelog.LineCommits(a.gw, a.prevBase(), vcs.Head)
	if err != nil {
		return nil, err
	}
	sl := slicer.New(a.gw, a.root, a.live)
	return lastcommit.Build(sl, a.live, commits, a.deltasFor)
}

func sortedProjects(projects []config.Project) []config.Project {
	out := make([]config.Project, len(projects))
	copy(out, projects)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func findProject(live *config.ConfigFile, id int, name string) (config.Project, error) {
	if name != "" {
		p, err := live.FindUnique(name)
		if err != nil {
			return config.Project{}, err
		}
		return *p, nil
	}
	p, err := live.Find(id)
	if err != nil {
		return config.Project{}, err
	}
	return *p, nil
}
