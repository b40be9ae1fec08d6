package vcs

import "fmt"

// RevListOptions models `git rev-list ...`.
type RevListOptions struct {
	Committish Committish

	Merges      bool
	NoMerges    bool
	MaxParents  *int
	FirstParent bool
	Reverse     bool

	Pretty string
}

func (opts RevListOptions) validate() error {
	if opts.Committish == nil {
		return fmt.Errorf("a committish must be provided")
	}
	return nil
}

func (opts RevListOptions) arguments() (args []string) {
	args = append(args, "rev-list")

	args = append(args, opts.Committish.Committish())

	if opts.Merges {
		args = append(args, "--merges")
	}
	if opts.NoMerges {
		args = append(args, "--no-merges")
	}
	if opts.MaxParents != nil {
		args = append(args, fmt.Sprintf("--max-parents=%d", *opts.MaxParents))
	}
	if opts.FirstParent {
		args = append(args, "--first-parent")
	}
	if opts.Reverse {
		args = append(args, "--reverse")
	}
	if opts.Pretty != "" {
		args = append(args, fmt.Sprintf("--pretty=%s", opts.Pretty))
	}

	return
}
