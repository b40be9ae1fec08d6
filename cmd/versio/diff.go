package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show the reconstructed PR/commit classification for prev_tag..HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runDiff(a)
		},
	}
}

func runDiff(a *app) error {
	prs, err := a.prs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "PR\tCLOSED AT\tOID\tKIND\tSUMMARY")
	for _, pr := range prs {
		for _, c := range pr.IncludedCommits() {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", pr.Number, pr.ClosedAt, shortOid(c.Oid), c.Kind, c.Summary)
		}
	}
	return nil
}

func shortOid(oid string) string {
	if len(oid) <= 7 {
		return oid
	}
	return oid[:7]
}
