// Package size implements the Size lattice: a total order
// None < Empty < Patch < Minor < Major used to accumulate release intent
// across commits, PRs, and the dependency graph, built on blang/semver/v4
// for the underlying version arithmetic.
package size

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// Size is a point in the None < Empty < Patch < Minor < Major lattice.
type Size int

const (
	// None means no relevant change was seen.
	None Size = iota
	// Empty means a relevant change was seen but it does not bump the version.
	Empty
	// Patch bumps the patch component.
	Patch
	// Minor bumps the minor component (resets patch).
	Minor
	// Major bumps the major component (resets minor and patch).
	Major
)

func (s Size) String() string {
	switch s {
	case None:
		return "none"
	case Empty:
		return "empty"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "unknown"
	}
}

// Parse maps a config-file size name ("none", "empty", "patch", "minor",
// "major") to its Size.
func Parse(s string) (Size, error) {
	switch s {
	case "none":
		return None, nil
	case "empty":
		return Empty, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return None, fmt.Errorf("unrecognized size %q", s)
	}
}

// Max returns the larger of a and b in lattice order.
func Max(a, b Size) Size {
	if a > b {
		return a
	}
	return b
}

// Apply bumps v according to s. None and Empty leave Major.Minor.Patch
// unchanged; every result drops v's pre-release and build metadata.
func Apply(s Size, v semver.Version) semver.Version {
	next := v
	next.Pre = nil
	next.Build = nil
	switch s {
	case Major:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case Minor:
		next.Minor++
		next.Patch = 0
	case Patch:
		next.Patch++
	}
	return next
}

// LessThan reports whether a is strictly less than b when compared as
// Major.Minor.Patch triples, ignoring pre-release/build metadata.
func LessThan(a, b semver.Version) bool {
	switch {
	case a.Major != b.Major:
		return a.Major < b.Major
	case a.Minor != b.Minor:
		return a.Minor < b.Minor
	default:
		return a.Patch < b.Patch
	}
}

// FromKind looks up the Size for a commit-kind token in a sizes table,
// returning None for any kind the table does not map. The empty kind ("-")
// gets no special treatment: it is Patch only where the table maps it so,
// as DefaultSizes does.
func FromKind(table map[string]Size, kind string) Size {
	if s, ok := table[kind]; ok {
		return s
	}
	return None
}

// DefaultSizes is the built-in commit-kind -> Size table used when a
// ConfigFile does not override it, modeled on conventional-commit kinds.
func DefaultSizes() map[string]Size {
	return map[string]Size{
		"feat":     Minor,
		"fix":      Patch,
		"perf":     Patch,
		"docs":     Empty,
		"chore":    Empty,
		"test":     Empty,
		"refactor": Empty,
		"style":    Empty,
		"ci":       Empty,
		"build":    Empty,
		"breaking": Major,
		"major":    Major,
		"minor":    Minor,
		"patch":    Patch,
		"-":        Patch,
	}
}
