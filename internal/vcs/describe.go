package vcs

import "fmt"

// DescribeOptions models `git describe ...`.
type DescribeOptions struct {
	Committish Committish

	Tags       bool
	Abbrev     *int
	ExactMatch bool
	Match      []string
	Exclude    []string
	Always     bool
}

func (opts DescribeOptions) validate() error {
	return nil
}

func (opts DescribeOptions) arguments() (args []string) {
	args = append(args, "describe")

	if opts.Tags {
		args = append(args, "--tags")
	}
	if opts.Abbrev != nil {
		args = append(args, fmt.Sprintf("--abbrev=%d", *opts.Abbrev))
	}
	if opts.ExactMatch {
		args = append(args, "--exact-match")
	}
	for _, m := range opts.Match {
		args = append(args, "--match", m)
	}
	for _, e := range opts.Exclude {
		args = append(args, "--exclude", e)
	}
	if opts.Always {
		args = append(args, "--always")
	}
	if opts.Committish != nil {
		args = append(args, opts.Committish.Committish())
	}

	return
}
