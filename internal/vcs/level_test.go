package vcs_test

import (
	"testing"

	"github.com/versio-release/versio/internal/vcs"
)

func TestParseLevelRangeSingleLevel(t *testing.T) {
	rng, err := vcs.ParseLevelRange("local")
	if err != nil {
		t.Fatalf("ParseLevelRange: %v", err)
	}
	if rng.Required != vcs.LevelLocal || rng.Preferred != vcs.LevelLocal {
		t.Fatalf("expected local..local, got %+v", rng)
	}
}

func TestParseLevelRangeLowHigh(t *testing.T) {
	rng, err := vcs.ParseLevelRange("none..smart")
	if err != nil {
		t.Fatalf("ParseLevelRange: %v", err)
	}
	if rng.Required != vcs.LevelNone || rng.Preferred != vcs.LevelSmart {
		t.Fatalf("expected none..smart, got %+v", rng)
	}
}

func TestParseLevelRangeRejectsInvertedRange(t *testing.T) {
	if _, err := vcs.ParseLevelRange("smart..local"); err == nil {
		t.Fatalf("expected an error for required > preferred")
	}
}

func TestParseLevelRangeRejectsUnknownLevel(t *testing.T) {
	if _, err := vcs.ParseLevelRange("turbo"); err == nil {
		t.Fatalf("expected an error for an unrecognized level")
	}
}

func TestLevelStringRoundTrips(t *testing.T) {
	for _, lvl := range []vcs.Level{vcs.LevelNone, vcs.LevelLocal, vcs.LevelRemote, vcs.LevelSmart} {
		parsed, err := vcs.ParseLevel(lvl.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", lvl.String(), err)
		}
		if parsed != lvl {
			t.Fatalf("round trip of %v produced %v", lvl, parsed)
		}
	}
}
