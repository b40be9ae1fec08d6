package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCommand() *cobra.Command {
	var (
		id          int
		name        string
		prev        bool
		versionOnly bool
		wide        bool
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one project's version",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return runGet(a, id, name, prev, versionOnly, wide)
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "project id")
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().BoolVar(&prev, "prev", false, "show the version as of prev_tag instead of the working tree")
	cmd.Flags().BoolVar(&versionOnly, "version-only", false, "print only the bare version string")
	cmd.Flags().BoolVar(&wide, "wide", false, "include the project's id and tag prefix")
	return cmd
}

func runGet(a *app, id int, name string, prev, versionOnly, wide bool) error {
	proj, err := findProject(a.live, id, name)
	if err != nil {
		return err
	}
	version, err := versionFor(a, proj, prev)
	if err != nil {
		return fmt.Errorf("project %q: %w", proj.Name, err)
	}

	switch {
	case versionOnly:
		fmt.Println(version)
	case wide:
		fmt.Printf("%d\t%s\t%s\t%s\n", proj.ID, proj.Name, proj.TagPrefix, version)
	default:
		fmt.Printf("%s\t%s\n", proj.Name, version)
	}
	return nil
}
