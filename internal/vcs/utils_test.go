package vcs_test

import (
	"errors"
	"testing"

	"github.com/versio-release/versio/internal/vcs"
)

var errTest = errors.New("no tags match")

func TestWalkFirstParentParsesRecordsWithCommitHeaders(t *testing.T) {
	// rev-list --pretty=format: prints a "commit <sha>" line before every
	// formatted record; the parser must discard it.
	out := "commit c2\nc2\x00200\x00feat: add thing\nbody line\n\x03" +
		"commit c1\nc1\x00100\x00fix: bug\x03"

	mock := vcs.CLIMock{
		RevListF: func(opts vcs.RevListOptions) (string, error) { return out, nil },
	}
	gw := vcs.NewGateway(mock, "/repo")

	commits, err := gw.WalkFirstParent(vcs.Commit("c0"), vcs.Head)
	if err != nil {
		t.Fatalf("WalkFirstParent: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d: %+v", len(commits), commits)
	}
	if commits[0].Oid != "c2" || commits[0].AuthorTime != 200 || commits[0].Summary != "feat: add thing" {
		t.Fatalf("unexpected first commit: %+v", commits[0])
	}
	if commits[1].Oid != "c1" || commits[1].Summary != "fix: bug" {
		t.Fatalf("unexpected second commit: %+v", commits[1])
	}
}

func TestWalkFullParsesParentOids(t *testing.T) {
	out := "commit m1\nm1\x00c0 c1\x00300\x00Merge pull request #7 from someone/feature\x03" +
		"commit c1\nc1\x00c0\x00200\x00feat: add thing\x03"

	mock := vcs.CLIMock{
		RevListF: func(opts vcs.RevListOptions) (string, error) { return out, nil },
	}
	gw := vcs.NewGateway(mock, "/repo")

	commits, err := gw.WalkFull(vcs.Commit("c0"), vcs.Head)
	if err != nil {
		t.Fatalf("WalkFull: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if len(commits[0].ParentOids) != 2 || commits[0].ParentOids[0] != "c0" || commits[0].ParentOids[1] != "c1" {
		t.Fatalf("unexpected merge parents: %+v", commits[0].ParentOids)
	}
	if len(commits[1].ParentOids) != 1 {
		t.Fatalf("unexpected parents for a plain commit: %+v", commits[1].ParentOids)
	}
}

func TestWalkFirstParentWithNilBaseWalksAllOfHead(t *testing.T) {
	var requested string
	mock := vcs.CLIMock{
		RevListF: func(opts vcs.RevListOptions) (string, error) {
			requested = opts.Committish.Committish()
			return "", nil
		},
	}
	gw := vcs.NewGateway(mock, "/repo")

	if _, err := gw.WalkFirstParent(nil, vcs.Head); err != nil {
		t.Fatalf("WalkFirstParent: %v", err)
	}
	if requested != "HEAD" {
		t.Fatalf("expected a plain HEAD walk with no base, got %q", requested)
	}
}

func TestDeltasParsesNameStatusOutput(t *testing.T) {
	out := "M\tsrc/a.go\n" +
		"R100\told/x.go\tnew/x.go\n" +
		"A\tnew/file.go\n" +
		"D\tgone.go\n"

	mock := vcs.CLIMock{
		DiffTreeF: func(opts vcs.DiffTreeOptions) (string, error) { return out, nil },
	}
	gw := vcs.NewGateway(mock, "/repo")

	deltas, err := gw.Deltas("c1")
	if err != nil {
		t.Fatalf("Deltas: %v", err)
	}
	if len(deltas) != 4 {
		t.Fatalf("expected 4 deltas, got %d: %+v", len(deltas), deltas)
	}
	if deltas[0].OldPath != "src/a.go" || deltas[0].NewPath != "src/a.go" {
		t.Fatalf("unexpected modify delta: %+v", deltas[0])
	}
	if deltas[1].OldPath != "old/x.go" || deltas[1].NewPath != "new/x.go" {
		t.Fatalf("unexpected rename delta: %+v", deltas[1])
	}
	if deltas[2].OldPath != "" || deltas[2].NewPath != "new/file.go" {
		t.Fatalf("unexpected add delta: %+v", deltas[2])
	}
	if deltas[3].OldPath != "gone.go" || deltas[3].NewPath != "" {
		t.Fatalf("unexpected delete delta: %+v", deltas[3])
	}
}

func TestDeltaPathsDeduplicates(t *testing.T) {
	d := vcs.Delta{OldPath: "same.go", NewPath: "same.go"}
	if paths := d.Paths(); len(paths) != 1 || paths[0] != "same.go" {
		t.Fatalf("expected a single distinct path, got %v", paths)
	}

	r := vcs.Delta{OldPath: "old.go", NewPath: "new.go"}
	if paths := r.Paths(); len(paths) != 2 {
		t.Fatalf("expected both rename paths, got %v", paths)
	}
}

func TestClosestAnchorTagUsesThePrefixedGlob(t *testing.T) {
	mock := vcs.CLIMock{
		DescribeF: func(opts vcs.DescribeOptions) (string, error) {
			if len(opts.Match) != 1 || opts.Match[0] != "api-v*" {
				t.Fatalf("unexpected match glob: %v", opts.Match)
			}
			return "api-v1.2.0\n", nil
		},
	}
	gw := vcs.NewGateway(mock, "/repo")

	tag, ok := gw.ClosestAnchorTag("api")
	if !ok || tag != "api-v1.2.0" {
		t.Fatalf("expected api-v1.2.0, got %q (ok=%v)", tag, ok)
	}
}

func TestClosestAnchorTagReportsMissing(t *testing.T) {
	mock := vcs.CLIMock{
		DescribeF: func(opts vcs.DescribeOptions) (string, error) {
			return "", errTest
		},
	}
	gw := vcs.NewGateway(mock, "/repo")

	if tag, ok := gw.ClosestAnchorTag(""); ok {
		t.Fatalf("expected no tag, got %q", tag)
	}
}
