package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the distinct file paths touched between prev_tag and HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runFiles(a)
		},
	}
}

func runFiles(a *app) error {
	prs, err := a.prs()
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var paths []string
	for _, pr := range prs {
		if pr.BestGuess {
			continue
		}
		for _, c := range pr.IncludedCommits() {
			touched, err := a.deltasFor(c.Oid)
			if err != nil {
				return err
			}
			for _, p := range touched {
				if !seen[p] {
					seen[p] = true
					paths = append(paths, p)
				}
			}
		}
	}

	sort.Strings(paths)
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
