package mutate_test

import (
	"errors"
	"testing"

	"github.com/blang/semver/v4"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/lastcommit"
	"github.com/versio-release/versio/internal/mutate"
	"github.com/versio-release/versio/internal/plan"
	"github.com/versio-release/versio/internal/size"
)

func projectWithMark(id int, name, path string, restrict semver.Range) config.Project {
	return config.Project{
		ID:        id,
		Name:      name,
		TagPrefix: name,
		Mark:      &config.MarkLocator{File: path, Format: "json", Path: "version"},
		Restrict:  restrict,
	}
}

func liveConfig(projects ...config.Project) *config.ConfigFile {
	return &config.ConfigFile{Projects: projects}
}

func jsonMark(version string) []byte {
	return []byte(`{"name": "x", "version": "` + version + `"}`)
}

func TestDecideBumpsWhenBelowTarget(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Minor}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }

	d, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if len(d.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(d.Projects))
	}
	pp := d.Projects[0]
	if pp.Outcome != mutate.Bumped {
		t.Fatalf("expected Bumped, got %v", pp.Outcome)
	}
	if pp.TargetVersion == nil || pp.TargetVersion.String() != "1.3.0" {
		t.Fatalf("expected target 1.3.0, got %v", pp.TargetVersion)
	}
	if pp.AnchorTag != "api-v1.3.0" {
		t.Fatalf("expected anchor tag api-v1.3.0, got %q", pp.AnchorTag)
	}
}

func TestDecideKeepsHumanExceededVersion(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Patch}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("2.0.0"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }

	d, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	pp := d.Projects[0]
	if pp.Outcome != mutate.ExceededByHuman {
		t.Fatalf("expected ExceededByHuman, got %v", pp.Outcome)
	}
	if pp.MarkRewrite != nil {
		t.Fatalf("expected no mark rewrite when a human already exceeded the target")
	}
	if pp.AnchorTag != "api-v2.0.0" {
		t.Fatalf("expected anchor tag forwarded at the human-set version, got %q", pp.AnchorTag)
	}
}

func TestDecideEmptySizeProducesNoChange(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Empty}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }

	d, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	pp := d.Projects[0]
	if pp.Outcome != mutate.NoChange {
		t.Fatalf("expected NoChange, got %v", pp.Outcome)
	}
	if pp.AnchorTag != "" {
		t.Fatalf("expected no anchor tag forwarded for an empty-size rollup, got %q", pp.AnchorTag)
	}
	if pp.MarkRewrite != nil {
		t.Fatalf("expected no mark rewrite for an empty-size rollup")
	}
}

func TestDecideNewProjectHasNoPreviousVersion(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig() // project 1 did not exist at prev_tag

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Minor}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("0.1.0"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return nil, nil }

	d, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	pp := d.Projects[0]
	if pp.Outcome != mutate.NewProject {
		t.Fatalf("expected NewProject, got %v", pp.Outcome)
	}
	if pp.PrevVersion != nil {
		t.Fatalf("expected no previous version, got %v", pp.PrevVersion)
	}
	if pp.AnchorTag != "api-v0.1.0" {
		t.Fatalf("expected anchor tag api-v0.1.0, got %q", pp.AnchorTag)
	}
}

func TestDecideFirstReleaseTreatsEveryProjectAsNew(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Major}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("0.1.0"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) {
		t.Fatalf("readPrevMark should not be called with a nil prevAt")
		return nil, nil
	}

	d, err := mutate.Decide(p, live, nil, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Projects[0].Outcome != mutate.NewProject {
		t.Fatalf("expected NewProject, got %v", d.Projects[0].Outcome)
	}
}

func TestDecideRejectsTargetViolatingRestriction(t *testing.T) {
	onlyOnePointX := func() semver.Range {
		rng, err := semver.ParseRange(">=1.0.0 <2.0.0")
		if err != nil {
			t.Fatalf("ParseRange: %v", err)
		}
		return rng
	}()
	live := liveConfig(projectWithMark(1, "api", "api/package.json", onlyOnePointX))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", onlyOnePointX))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Major}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.9.0"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.9.0"), nil }

	_, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if !errors.Is(err, errs.ErrRestrictionViolated) {
		t.Fatalf("expected ErrRestrictionViolated, got %v", err)
	}
}

func TestDecideAnchorsAtLastCommitWhenIndexed(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Minor}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }

	lastCommits := lastcommit.Index{1: "deadbeef"}

	d, err := mutate.Decide(p, live, prev, lastCommits, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	pp := d.Projects[0]
	if pp.AnchorCommit != "deadbeef" {
		t.Fatalf("expected anchor commit deadbeef, got %q", pp.AnchorCommit)
	}
}

func TestDecideAnchorCommitEmptyWhenProjectNotIndexed(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{1: {Size: size.Minor}}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.2.3"), nil }

	d, err := mutate.Decide(p, live, prev, lastcommit.Index{}, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Projects[0].AnchorCommit != "" {
		t.Fatalf("expected empty anchor commit, falling back to the release commit at Apply time, got %q", d.Projects[0].AnchorCommit)
	}
}

func TestDecideMissingIncrDefaultsToNone(t *testing.T) {
	live := liveConfig(projectWithMark(1, "api", "api/package.json", nil))
	prev := liveConfig(projectWithMark(1, "api", "api/package.json", nil))

	p := &plan.Plan{Incrs: map[int]*plan.Incr{}}

	readLive := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.0.0"), nil }
	readPrev := func(l config.MarkLocator) ([]byte, error) { return jsonMark("1.0.0"), nil }

	d, err := mutate.Decide(p, live, prev, nil, readLive, readPrev)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Projects[0].Outcome != mutate.Unchanged {
		t.Fatalf("expected Unchanged for a project absent from the plan, got %v", d.Projects[0].Outcome)
	}
}
