// Package vcs is the repo gateway: read-only queries over commits, deltas,
// tags and refs, plus the mutations (commit staged writes, move a tag,
// push) the mutation stage needs. The read side shells out to the git
// binary; the mutating side is built on go-git/v5 (see mutate.go), and
// VCS-level escalation (level.go) probes the git CLI and the environment.
package vcs

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/versio-release/versio/internal/errs"
)

// CLI is the git CLI interface, kept narrow so it can be mocked in tests.
type CLI interface {
	Describe(DescribeOptions) (string, error)
	ForEachRef(ForEachRefOptions) (string, error)
	RemoteGetUrl(RemoteGetUrlOptions) (string, error)
	RevList(RevListOptions) (string, error)
	RevParse(RevParseOptions) (string, error)
	Show(ShowOptions) (string, error)
	DiffTree(DiffTreeOptions) (string, error)
}

// wrapExitError wraps exec.ExitError so the message carries stderr, tagged
// with errs.ErrIO for callers doing errors.Is checks.
func wrapExitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return errs.Wrap(errs.ErrIO, err)
	}
	return errs.Wrap(errs.ErrIO, fmt.Errorf("%w: %q", exitErr, string(exitErr.Stderr)))
}

type cliOptions interface {
	validate() error
	arguments() []string
}

func execute(dir string, opts cliOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	cmd := exec.Command("git", opts.arguments()...)
	if dir != "" {
		cmd.Dir = dir
	}
	b, err := cmd.Output()
	return string(b), wrapExitError(err)
}

// Command is the default, live CLI implementation rooted at the current
// working directory. Use New(dir) for a CLI rooted elsewhere.
var Command CLI = cli{}

// New returns a CLI implementation that runs git with the given working
// directory (used once the gateway has located the repo root).
func New(dir string) CLI {
	return cli{dir: dir}
}

type cli struct{ dir string }

func (c cli) Describe(opts DescribeOptions) (string, error)     { return execute(c.dir, opts) }
func (c cli) ForEachRef(opts ForEachRefOptions) (string, error) { return execute(c.dir, opts) }
func (c cli) RemoteGetUrl(opts RemoteGetUrlOptions) (string, error) {
	return execute(c.dir, opts)
}
func (c cli) RevList(opts RevListOptions) (string, error)   { return execute(c.dir, opts) }
func (c cli) RevParse(opts RevParseOptions) (string, error) { return execute(c.dir, opts) }
func (c cli) Show(opts ShowOptions) (string, error)         { return execute(c.dir, opts) }
func (c cli) DiffTree(opts DiffTreeOptions) (string, error) { return execute(c.dir, opts) }
