// Command versio-gh-check runs as a GitHub Actions check on pull_request
// events. It verifies that a PR's title carries a commit-kind token ("fix",
// "feat", ...) that's actually a key of the repository's size table, so an
// unrecognized kind gets caught at PR time instead of silently resolving to
// None when the release plan runs.
package main

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v32/github"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/ghcheck"
	"github.com/versio-release/versio/internal/ghlog"
)

type unknownKindError struct {
	kind  string
	known []string
}

func (e unknownKindError) Error() string {
	return fmt.Sprintf("PR title's commit kind %q is not recognized", e.kind)
}

func (e unknownKindError) Details() string {
	return fmt.Sprintf(
		"I saw a kind of %q, which isn't a key of this repository's size table.\n\nUse one of: %s",
		e.kind, strings.Join(e.known, ", "),
	)
}

func verifyTitleKind(cfg *config.ConfigFile) ghcheck.ValidateFunc {
	known := make([]string, 0, len(cfg.Sizes))
	for k := range cfg.Sizes {
		known = append(known, k)
	}

	return func(pr *github.PullRequest) (string, string, error) {
		kind := changelog.Kind(pr.GetTitle())
		if _, ok := cfg.Sizes[kind]; !ok {
			return "", "", unknownKindError{kind: kind, known: known}
		}
		return fmt.Sprintf("recognized kind %q", kind), "", nil
	}
}

func main() {
	log := ghlog.New()

	cfg, err := config.FromDir(".")
	if err != nil {
		log.Fatalf(1, "unable to load %s: %v", config.FileName, err)
	}

	plugin := ghcheck.NewPlugin("PR Kind", "Commit Kind in PR Title", verifyTitleKind(cfg))
	if err := ghcheck.Run(plugin); err != nil {
		log.Fatalf(2, "%v", err)
	}
	log.Infof("Success!")
}
