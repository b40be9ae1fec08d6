package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/vcs"
)

func newLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the first-parent line-commit stream since prev_tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runLog(a)
		},
	}
}

func runLog(a *app) error {
	commits, err := changelog.LineCommits(a.gw, a.prevBase(), vcs.Head)
	if err != nil {
		return err
	}

	if err := printAnchors(a); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "OID\tKIND\tSUMMARY")
	for _, c := range commits {
		fmt.Fprintf(w, "%s\t%s\t%s\n", shortOid(c.Oid), c.Kind, c.Summary)
	}
	return nil
}

// printAnchors reports, per tag prefix, the most recent anchor tag seen in
// prev_tag..HEAD, giving the reader a sense of which projects already
// released during this window before the raw commit stream is dumped.
func printAnchors(a *app) error {
	ot, err := a.oldTags()
	if err != nil {
		return err
	}
	head, err := a.gw.ResolveCommit(vcs.Head)
	if err != nil {
		return err
	}

	for _, prefix := range a.tagPrefixes() {
		tag, ok := ot.Latest(prefix, head)
		if !ok {
			continue
		}
		label := prefix
		if label == "" {
			label = "(no prefix)"
		}
		fmt.Printf("%s: latest anchor in range is %s\n", label, tag)
	}
	fmt.Println()
	return nil
}
