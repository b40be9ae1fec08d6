package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/mutate"
	"github.com/versio-release/versio/internal/vcs"
)

func newRunCommand() *cobra.Command {
	var (
		showAll bool
		dryRun  bool
		remote  string
		branch  string
		author  string
		email   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the plan, decide each project's mutation, and apply it",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVCSLevel()
			if err != nil {
				return err
			}
			if !dryRun && level.Preferred < vcs.LevelSmart {
				level.Preferred = vcs.LevelSmart
			}
			// A dry run must leave refs alone, so don't let the default
			// preferred level trigger smart's fetch+fast-forward sync.
			if dryRun && level.Required < vcs.LevelSmart && level.Preferred > vcs.LevelRemote {
				level.Preferred = vcs.LevelRemote
			}
			a, err := openApp(level)
			if err != nil {
				return err
			}
			return runRun(a, showAll, dryRun, remote, branch, author, email)
		},
	}

	cmd.Flags().BoolVar(&showAll, "show-all", false, "print every project's outcome, not only the mutated ones")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print every action without touching the working tree, index, refs, or remote")
	cmd.Flags().StringVar(&remote, "remote", "origin", "remote to push the branch and tags to")
	cmd.Flags().StringVar(&branch, "branch", "", "branch to push (defaults to the current branch)")
	cmd.Flags().StringVar(&author, "author-name", "versio", "commit author name")
	cmd.Flags().StringVar(&email, "author-email", "versio@localhost", "commit author email")
	return cmd
}

func runRun(a *app, showAll, dryRun bool, remote, branch, author, email string) error {
	pl, _, err := a.buildPlan()
	if err != nil {
		return err
	}

	prevAt, err := a.prevConfig()
	if err != nil {
		return err
	}

	lastCommits, err := a.lastCommitIndex()
	if err != nil {
		return err
	}

	dec, err := mutate.Decide(pl, a.live, prevAt, lastCommits,
		func(loc config.MarkLocator) ([]byte, error) { return a.readLiveMark(loc) },
		func(loc config.MarkLocator) ([]byte, error) { return a.readPrevMark(loc) },
	)
	if err != nil {
		return err
	}

	var mut *vcs.Mutator
	if !dryRun {
		mut, err = vcs.OpenMutator(a.root)
		if err != nil {
			return err
		}
		if branch == "" {
			branch, err = a.gw.CurrentBranch()
			if err != nil {
				return err
			}
		}
	}

	readLiveMarkRaw := func(path string) ([]byte, error) {
		return os.ReadFile(filepath.Join(a.root, path))
	}

	actions, err := mutate.Apply(mut, dec, author, email, remote, branch, a.prevTag, dryRun, readLiveMarkRaw)
	if err != nil {
		return err
	}

	for _, action := range actions {
		if !showAll && isNoOp(dec, action.ProjectName) {
			continue
		}
		fmt.Printf("%s: %s\n", action.ProjectName, action.Message)
	}

	log.Info().Int("projects", len(dec.Projects)).Bool("dry_run", dryRun).Msg("run complete")
	return nil
}

func isNoOp(dec *mutate.Decision, projectName string) bool {
	for _, pp := range dec.Projects {
		if pp.ProjectName == projectName {
			return pp.Outcome == mutate.NoChange
		}
	}
	return false
}
