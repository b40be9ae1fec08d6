package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/mark"
)

func newSetCommand() *cobra.Command {
	var (
		id    int
		name  string
		value string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Hand-edit a project's version mark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if value == "" {
				return fmt.Errorf("--value is required")
			}
			if !cmd.Flags().Changed("id") && !cmd.Flags().Changed("name") {
				return fmt.Errorf("one of --id or --name is required")
			}
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runSet(a, id, name, value)
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "project id")
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&value, "value", "", "the new version string to write")
	return cmd
}

// runSet rewrites a project's mark file in place, byte-range-exact per
// mark.Rewrite, without staging or committing anything.
func runSet(a *app, id int, name, value string) error {
	proj, err := findProject(a.live, id, name)
	if err != nil {
		return err
	}
	if proj.Mark == nil {
		return errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("project %q has no mark locator", proj.Name))
	}

	path := filepath.Join(a.root, proj.Mark.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m, err := mark.Scan(data, *proj.Mark)
	if err != nil {
		return err
	}
	rewritten, err := mark.Rewrite(data, m, value)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rewritten, 0644); err != nil {
		return err
	}
	fmt.Printf("%s: %s -> %s\n", proj.Name, m.Value, value)
	return nil
}
