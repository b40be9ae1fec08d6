package vcs

import "fmt"

// RevParseOptions models `git rev-parse ...`.
type RevParseOptions struct {
	Committish Committish

	AbbrevRef bool
	Verify    bool
}

func (opts RevParseOptions) validate() error {
	if opts.Committish == nil {
		return fmt.Errorf("a committish must be provided")
	}
	return nil
}

func (opts RevParseOptions) arguments() (args []string) {
	args = append(args, "rev-parse")

	if opts.AbbrevRef {
		args = append(args, "--abbrev-ref")
	}
	if opts.Verify {
		args = append(args, "--verify")
	}

	args = append(args, opts.Committish.Committish())

	return
}
