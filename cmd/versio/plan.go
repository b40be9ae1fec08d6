package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the computed release plan without mutating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runPlan(a)
		},
	}
}

func runPlan(a *app) error {
	pl, _, err := a.buildPlan()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tSIZE\tPRS LOGGED")
	for _, proj := range sortedProjects(a.live.Projects) {
		incr, ok := pl.Incrs[proj.ID]
		if !ok {
			fmt.Fprintf(w, "%s\tNone\t0\n", proj.Name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", proj.Name, incr.Size, len(incr.Log))
	}
	w.Flush()

	if len(pl.Ineffective) > 0 {
		fmt.Printf("\n%d ineffective PR(s) (touched no current project):\n", len(pl.Ineffective))
		for _, pr := range pl.Ineffective {
			fmt.Printf("  - PR #%s\n", pr.Number)
		}
	}
	return nil
}
