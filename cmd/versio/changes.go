package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChangesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "changes",
		Short: "Show the per-project change log a run would stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runChanges(a)
		},
	}
}

func runChanges(a *app) error {
	pl, _, err := a.buildPlan()
	if err != nil {
		return err
	}

	for _, proj := range sortedProjects(a.live.Projects) {
		incr, ok := pl.Incrs[proj.ID]
		if !ok || len(incr.Log) == 0 {
			continue
		}
		fmt.Printf("## %s (%s)\n", proj.Name, incr.Size)
		for _, pr := range incr.Log {
			fmt.Printf("- PR #%s (%s)\n", pr.Number, pr.Size)
			for _, c := range pr.Commits {
				if !c.Included() {
					continue
				}
				fmt.Printf("  - %s (%s)\n", c.Summary, shortOid(c.Oid))
			}
		}
		fmt.Println()
	}
	return nil
}
