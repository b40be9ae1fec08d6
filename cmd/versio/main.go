package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/vcs"
)

var (
	vcsLevelFlag string
	verbose      bool
)

func parseVCSLevel() (vcs.LevelRange, error) {
	if vcsLevelFlag == "" {
		return vcs.LevelRange{Required: vcs.LevelNone, Preferred: vcs.LevelSmart}, nil
	}
	return vcs.ParseLevelRange(vcsLevelFlag)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "versio",
		Short:         "Semantic version management for a monorepo of dependent projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}

	root.PersistentFlags().StringVar(&vcsLevelFlag, "vcs-level", "",
		`how far to let the repo gateway reach: "none", "local", "remote", "smart", or a "low..high" range`)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "raise logging to debug")

	root.AddCommand(
		newCheckCommand(),
		newShowCommand(),
		newGetCommand(),
		newSetCommand(),
		newDiffCommand(),
		newFilesCommand(),
		newChangesCommand(),
		newPlanCommand(),
		newLogCommand(),
		newRunCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
