package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/mark"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config and confirm every project's mark can be located",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runCheck(a)
		},
	}
}

// runCheck confirms that every current project with a mark locator can
// locate its mark (projects without one are skipped), without touching
// history; config validity itself was already enforced
// by openApp's call into config.FromDir.
func runCheck(a *app) error {
	for _, proj := range sortedProjects(a.live.Projects) {
		if proj.Mark == nil {
			continue
		}
		data, err := a.readLiveMark(*proj.Mark)
		if err != nil {
			return fmt.Errorf("project %q: %w", proj.Name, err)
		}
		if _, err := mark.Scan(data, *proj.Mark); err != nil {
			return fmt.Errorf("project %q: %w", proj.Name, err)
		}
	}
	fmt.Println("ok")
	return nil
}
