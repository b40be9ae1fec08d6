// Package slicer reconstructs the project configuration as it existed at
// an arbitrary past commit, so that path-to-project attribution can use the
// config that was actually in effect when a commit was authored rather than
// the config at the current HEAD.
package slicer

import (
	"fmt"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/vcs"
)

// Slicer holds the original (working-tree) config and, once SliceTo has
// been called at least once, the most recently sliced-to view.
//
// Parsed ConfigFiles are cached by the config blob's git object id rather
// than by commit oid: many consecutive commits leave the config file
// untouched, and re-parsing identical bytes on every commit boundary would
// otherwise dominate a plan build on a large history.
type Slicer struct {
	gw       *vcs.Gateway
	root     string
	original *config.ConfigFile

	current *config.ConfigFile
	sliced  bool

	cache map[string]*config.ConfigFile
}

// New returns a Slicer whose Original state wraps the given working-tree
// config.
func New(gw *vcs.Gateway, root string, original *config.ConfigFile) *Slicer {
	return &Slicer{
		gw:       gw,
		root:     root,
		original: original,
		cache:    map[string]*config.ConfigFile{},
	}
}

// SliceTo replaces the Slicer's state with the config as it existed at
// oid, parsed from the repository and cached by the config blob's oid.
func (s *Slicer) SliceTo(oid string) error {
	blobOid, err := s.gw.BlobOid(vcs.Commit(oid), config.FileName)
	if err != nil {
		return fmt.Errorf("unable to locate %s at %s: %w", config.FileName, oid, err)
	}

	if cached, ok := s.cache[blobOid]; ok {
		s.current = cached
		s.sliced = true
		return nil
	}

	cfg, err := config.FromSlice(s.gw, vcs.Commit(oid))
	if err != nil {
		return err
	}
	s.cache[blobOid] = cfg
	s.current = cfg
	s.sliced = true
	return nil
}

// File returns the currently sliced-to config, or errs.ErrNotSliced if
// SliceTo has never been called on this Slicer.
func (s *Slicer) File() (*config.ConfigFile, error) {
	if !s.sliced {
		return nil, errs.Wrap(errs.ErrNotSliced, fmt.Errorf("slicer has not been sliced to a commit yet"))
	}
	return s.current, nil
}

// Original returns the working-tree config this Slicer was constructed
// with, regardless of any subsequent SliceTo calls.
func (s *Slicer) Original() *config.ConfigFile {
	return s.original
}
