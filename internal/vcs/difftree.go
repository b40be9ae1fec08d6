package vcs

import "fmt"

// DiffTreeOptions models `git diff-tree -r -m --no-commit-id --name-status`,
// used to enumerate (old_path, new_path) deltas of a commit against its
// parent(s). Passing -m makes git diff a merge commit against each parent
// independently; callers that want the single-parent case should only
// consult this for commits with exactly one parent.
type DiffTreeOptions struct {
	Committish Committish
}

func (opts DiffTreeOptions) validate() error {
	if opts.Committish == nil {
		return fmt.Errorf("a committish must be provided")
	}
	return nil
}

func (opts DiffTreeOptions) arguments() []string {
	return []string{
		"diff-tree", "-r", "-m", "--no-commit-id", "--name-status", "--find-renames",
		opts.Committish.Committish(),
	}
}
