package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/vcs"
)

// FileName is the well-known config blob name at the repo root.
const FileName = ".versio.yaml"

// FromDir loads and validates the config blob at root's working-tree
// version.
func FromDir(root string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return nil, errs.Wrap(errs.ErrIO, fmt.Errorf("unable to read %s: %w", FileName, err))
	}
	return Parse(data)
}

// FromSlice loads the config blob as it existed at committish, by reading
// <committish>:<FileName> through the repo gateway.
func FromSlice(gw *vcs.Gateway, committish vcs.Committish) (*ConfigFile, error) {
	data, err := gw.ReadBlob(committish, FileName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigParse, fmt.Errorf("unable to read %s at %s: %w", FileName, committish.Committish(), err))
	}
	return Parse(data)
}
