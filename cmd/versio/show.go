package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/config"
)

func newShowCommand() *cobra.Command {
	var prev, wide bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show every project's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runShow(a, prev, wide)
		},
	}

	cmd.Flags().BoolVar(&prev, "prev", false, "show the version as of prev_tag instead of the working tree")
	cmd.Flags().BoolVar(&wide, "wide", false, "include each project's id and tag prefix")
	return cmd
}

func runShow(a *app, prev, wide bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer w.Flush()

	if wide {
		fmt.Fprintln(w, "ID\tNAME\tTAG PREFIX\tVERSION\tLATEST TAG")
	} else {
		fmt.Fprintln(w, "NAME\tVERSION")
	}

	for _, proj := range sortedProjects(a.live.Projects) {
		version, err := versionFor(a, proj, prev)
		if err != nil {
			return fmt.Errorf("project %q: %w", proj.Name, err)
		}
		if wide {
			latest, ok := a.gw.ClosestAnchorTag(proj.TagPrefix)
			if !ok {
				latest = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", proj.ID, proj.Name, proj.TagPrefix, version, latest)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", proj.Name, version)
		}
	}
	return nil
}

// versionFor resolves the version string show/get print for proj, "-" for
// a project that has no recorded previous version when prev is requested.
func versionFor(a *app, proj config.Project, prev bool) (string, error) {
	if !prev {
		return a.currentVersion(proj)
	}
	value, ok, err := a.prevVersion(proj)
	if err != nil {
		return "", err
	}
	if !ok {
		return "-", nil
	}
	return value, nil
}
