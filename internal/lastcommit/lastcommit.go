// Package lastcommit builds the release plan's last-commit index: for each
// current project, the most recent line commit in prev_tag..HEAD whose diff
// touched a path that project covered at the time. The mutation stage
// forwards a project's anchor tag to this oid rather than to the fresh
// release commit, so the tag points at the change that actually affected
// the project instead of at an unrelated commit that merely happened to
// land in the same release.
package lastcommit

import (
	"fmt"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/slicer"
)

// Index maps a project id to the newest line-commit oid attributed to it.
// A project absent from the index saw no covering commit in range.
type Index map[int]string

type state int

const (
	stateIdle state = iota
	stateCommit
)

// Builder replays the line-commit stream newest-to-oldest through the
// start_line_commit/start_line_file/finish_line_file/finish_line_commit
// event sequence, slicing the tracked config at each commit boundary so
// path-to-project attribution uses the config that existed when that
// commit was authored.
type Builder struct {
	sl      *slicer.Slicer
	current *config.ConfigFile

	idx Index
	st  state
	oid string
}

// New returns a Builder that attributes line commits against current,
// using sl to reconstruct each commit's config as it stood at the time.
func New(sl *slicer.Slicer, current *config.ConfigFile) *Builder {
	return &Builder{sl: sl, current: current, idx: Index{}}
}

func protocolErr(format string, args ...interface{}) error {
	return errs.Wrap(errs.ErrPlanProtocol, fmt.Errorf(format, args...))
}

// StartLineCommit opens a commit scope, slicing the tracked config to this
// commit's point in history. Must be called while idle.
func (b *Builder) StartLineCommit(oid string) error {
	if b.st != stateIdle {
		return protocolErr("start_line_commit called while already inside a commit")
	}
	if err := b.sl.SliceTo(oid); err != nil {
		return err
	}
	b.oid = oid
	b.st = stateCommit
	return nil
}

// StartLineFile records that the current commit touched path. Every
// project (drawn from the config as it existed at this commit) that
// covers path and still exists in the current config claims this oid as
// its last commit, unless an earlier call (for a newer commit) already
// claimed one for that project: since commits are walked newest first,
// the first claim is the one that sticks.
func (b *Builder) StartLineFile(path string) error {
	if b.st != stateCommit {
		return protocolErr("start_line_file called outside a commit scope")
	}
	sliced, err := b.sl.File()
	if err != nil {
		return err
	}
	for _, prevProject := range sliced.Projects {
		if _, already := b.idx[prevProject.ID]; already {
			continue
		}
		if !prevProject.DoesCover(path) {
			continue
		}
		if _, err := b.current.Find(prevProject.ID); err != nil {
			continue
		}
		b.idx[prevProject.ID] = b.oid
	}
	return nil
}

// FinishLineFile closes a file scope. It exists to mirror the open/close
// symmetry of the event stream; it does no work of its own.
func (b *Builder) FinishLineFile() error {
	if b.st != stateCommit {
		return protocolErr("finish_line_file called outside a commit scope")
	}
	return nil
}

// FinishLineCommit closes the current commit scope and returns to idle.
func (b *Builder) FinishLineCommit() error {
	if b.st != stateCommit {
		return protocolErr("finish_line_commit called outside a commit scope")
	}
	b.oid = ""
	b.st = stateIdle
	return nil
}

// Index returns the index accumulated so far.
func (b *Builder) Index() Index {
	return b.idx
}

// Build drives a Builder across every line commit, newest first, and
// returns the resulting index.
func Build(sl *slicer.Slicer, current *config.ConfigFile, commits []changelog.CommitInfo, filesFor func(oid string) ([]string, error)) (Index, error) {
	b := New(sl, current)

	for _, c := range commits {
		if err := b.StartLineCommit(c.Oid); err != nil {
			return nil, err
		}
		paths, err := filesFor(c.Oid)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			if err := b.StartLineFile(path); err != nil {
				return nil, err
			}
			if err := b.FinishLineFile(); err != nil {
				return nil, err
			}
		}
		if err := b.FinishLineCommit(); err != nil {
			return nil, err
		}
	}

	return b.Index(), nil
}
