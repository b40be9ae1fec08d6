package ghcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v32/github"
	"golang.org/x/oauth2"
)

const (
	envActionsKey    = "GITHUB_ACTIONS"
	envRepositoryKey = "GITHUB_REPOSITORY"
	envEventPathKey  = "GITHUB_EVENT_PATH"
	envTokenKey      = "INPUT_GITHUB_TOKEN"
)

// PREnv is the pull-request event and authenticated client a Plugin needs
// to validate a PR and report the result back as a check run.
type PREnv struct {
	Owner  string
	Repo   string
	Event  *github.PullRequestEvent
	Client *github.Client
}

// NewEnv reads the Actions-provided environment (repository slug, the event
// payload path, and a GitHub token) and builds a PREnv from it. It fails
// outside of an Actions job on purpose: there's no sensible event to act on.
func NewEnv() (*PREnv, error) {
	if os.Getenv(envActionsKey) != "true" {
		return nil, fmt.Errorf("not running in a GitHub Actions job, bailing")
	}

	ownerAndRepo := strings.Split(os.Getenv(envRepositoryKey), "/")
	if len(ownerAndRepo) != 2 {
		return nil, fmt.Errorf("malformed %s %q", envRepositoryKey, os.Getenv(envRepositoryKey))
	}

	eventPath := os.Getenv(envEventPathKey)
	if eventPath == "" {
		return nil, fmt.Errorf("no %s set", envEventPathKey)
	}

	event, err := loadEvent(eventPath)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: os.Getenv(envTokenKey)},
	)))

	return &PREnv{
		Owner:  ownerAndRepo[0],
		Repo:   ownerAndRepo[1],
		Event:  event,
		Client: client,
	}, nil
}

func loadEvent(path string) (*github.PullRequestEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open event file: %w", err)
	}
	defer f.Close()

	var event github.PullRequestEvent
	if err := json.NewDecoder(f).Decode(&event); err != nil {
		return nil, fmt.Errorf("unable to decode event: %w", err)
	}
	return &event, nil
}
