package vcs

import "fmt"

// RemoteGetUrlOptions models `git remote get-url ...`.
type RemoteGetUrlOptions struct {
	Remote string
	Push   bool
}

func (opts RemoteGetUrlOptions) validate() error {
	if opts.Remote == "" {
		return fmt.Errorf("a remote must be provided")
	}
	return nil
}

func (opts RemoteGetUrlOptions) arguments() (args []string) {
	args = append(args, "remote", "get-url")

	if opts.Push {
		args = append(args, "--push")
	}

	args = append(args, opts.Remote)

	return
}
