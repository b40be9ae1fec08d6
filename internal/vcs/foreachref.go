package vcs

import "fmt"

// ForEachRefOptions models `git for-each-ref ...`.
type ForEachRefOptions struct {
	Pattern string
	Format  string
	Sort    string
}

func (opts ForEachRefOptions) validate() error {
	return nil
}

func (opts ForEachRefOptions) arguments() (args []string) {
	args = append(args, "for-each-ref")

	if opts.Format != "" {
		args = append(args, fmt.Sprintf("--format=%s", opts.Format))
	}
	if opts.Sort != "" {
		args = append(args, fmt.Sprintf("--sort=%s", opts.Sort))
	}
	if opts.Pattern != "" {
		args = append(args, opts.Pattern)
	}

	return
}
