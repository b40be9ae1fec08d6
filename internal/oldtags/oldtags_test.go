package oldtags_test

import (
	"strings"
	"testing"

	"github.com/versio-release/versio/internal/oldtags"
	"github.com/versio-release/versio/internal/vcs"
)

func TestBuildResolvesLatestTagPerCommit(t *testing.T) {
	// history: c0 <- c1(v1.0.0) <- c2 <- c3(v1.1.0)
	revListOut := "c3\x00300\x00chore: prep release\x03" +
		"c2\x00250\x00feat: add thing\x03" +
		"c1\x00200\x00chore: prep release\x03" +
		"c0\x00100\x00chore: init\x03"

	mock := vcs.CLIMock{
		ForEachRefF: func(opts vcs.ForEachRefOptions) (string, error) {
			if strings.Contains(opts.Pattern, "refs/tags/v*") && opts.Format == "%(refname:short)" {
				return "v1.1.0\nv1.0.0", nil
			}
			if opts.Format == "%(taggerdate:unix)" {
				return "", nil // lightweight tags in this test
			}
			return "", nil
		},
		RevParseF: func(opts vcs.RevParseOptions) (string, error) {
			switch opts.Committish.Committish() {
			case "v1.1.0^{}":
				return "c3", nil
			case "v1.0.0^{}":
				return "c1", nil
			}
			return "", nil
		},
		RevListF: func(vcs.RevListOptions) (string, error) { return revListOut, nil },
	}
	gw := vcs.NewGateway(mock, "/repo")

	idx, err := oldtags.Build(gw, vcs.Commit("c0"), vcs.Head, []string{""})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if tag, ok := idx.Latest("", "c0"); ok {
		t.Fatalf("expected no tag at or before c0, got %q", tag)
	}
	if tag, ok := idx.Latest("", "c1"); !ok || tag != "v1.0.0" {
		t.Fatalf("expected v1.0.0 at c1, got %q (ok=%v)", tag, ok)
	}
	if tag, ok := idx.Latest("", "c2"); !ok || tag != "v1.0.0" {
		t.Fatalf("expected v1.0.0 to still apply at c2, got %q (ok=%v)", tag, ok)
	}
	if tag, ok := idx.Latest("", "c3"); !ok || tag != "v1.1.0" {
		t.Fatalf("expected v1.1.0 at c3, got %q (ok=%v)", tag, ok)
	}
}
