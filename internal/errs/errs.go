// Package errs defines the error taxonomy shared by every layer of versio.
//
// Every sentinel below is wrapped by the function or constructor that raises
// it, so callers can use errors.Is/errors.As to recover the taxonomy even
// after the error has picked up additional context via fmt.Errorf("...: %w").
package errs

import "errors"

var (
	// ErrConfigParse means the config blob could not be parsed into a ConfigFile.
	ErrConfigParse = errors.New("config parse error")
	// ErrDuplicateProject means two projects share an id, name, or tag prefix.
	ErrDuplicateProject = errors.New("duplicate project")
	// ErrCyclicDependency means the dependency graph has a cycle.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrScannerNotFound means a mark scanner could not locate its mark.
	ErrScannerNotFound = errors.New("mark not found")
	// ErrVcsUnavailable means the gateway could not satisfy a required VCS level.
	ErrVcsUnavailable = errors.New("vcs unavailable")
	// ErrNotClean means a fetch/merge was attempted against a dirty working tree.
	ErrNotClean = errors.New("working tree not clean")
	// ErrNotFastForward means a merge would not be a fast-forward.
	ErrNotFastForward = errors.New("not a fast-forward")
	// ErrPlanProtocol means the plan builder's event state machine was violated.
	ErrPlanProtocol = errors.New("plan builder protocol violation")
	// ErrUnknownProject means a project id or name did not resolve.
	ErrUnknownProject = errors.New("unknown project")
	// ErrAmbiguousName means a project name matched more than one project.
	ErrAmbiguousName = errors.New("ambiguous project name")
	// ErrRestrictionViolated means a computed version failed a project's restriction predicate.
	ErrRestrictionViolated = errors.New("version restriction violated")
	// ErrBadSemver means a version string did not parse as MAJOR.MINOR.PATCH.
	ErrBadSemver = errors.New("invalid semver")
	// ErrIO covers filesystem/process failures not otherwise classified.
	ErrIO = errors.New("io error")
	// ErrNotSliced means file() was called before slice_to ever succeeded.
	ErrNotSliced = errors.New("config not sliced")
)

// Wrap attaches a taxonomy sentinel to err so that errors.Is(result, sentinel)
// holds, while keeping err's own message and Unwrap chain intact.
func Wrap(sentinel error, err error) error {
	if err == nil {
		return nil
	}
	return &tagged{sentinel: sentinel, err: err}
}

type tagged struct {
	sentinel error
	err      error
}

func (t *tagged) Error() string { return t.err.Error() }
func (t *tagged) Unwrap() []error {
	return []error{t.sentinel, t.err}
}
