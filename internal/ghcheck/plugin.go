// Package ghcheck reports pull-request validation results back to GitHub
// as Check Runs. A Plugin wraps a single validation function; Run fans a
// set of plugins out concurrently over one PR event.
package ghcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v32/github"

	"github.com/versio-release/versio/internal/ghlog"
)

const (
	actionOpen   = "opened"
	actionReopen = "reopened"
	actionEdit   = "edited"
	actionSync   = "synchronize"
)

// ValidateFunc inspects a pull request and returns a short summary on
// success, or a non-nil error (optionally an ErrorWithDetails) on failure.
type ValidateFunc func(*github.PullRequest) (summary, text string, err error)

// Plugin is a named check that can process a PR event and report a result.
type Plugin interface {
	Name() string
	Entrypoint(*PREnv) error
}

type plugin struct {
	checkRunName        string
	checkRunOutputTitle string
	validate            ValidateFunc

	log *ghlog.Logger
}

// NewPlugin builds a Plugin that runs validate against the PR in every
// event it's handed and reports conclusion/summary/text as a GitHub check
// run named name, with output titled title.
func NewPlugin(name, title string, validate ValidateFunc) Plugin {
	return plugin{
		checkRunName:        name,
		checkRunOutputTitle: title,
		validate:            validate,
		log:                 ghlog.For(name),
	}
}

func (p plugin) Name() string { return p.checkRunName }

func (p plugin) Entrypoint(env *PREnv) error {
	switch env.Event.GetAction() {
	case actionOpen:
		return p.onOpen(env)
	case actionReopen:
		return p.onReopen(env)
	case actionEdit:
		return p.onEdit(env)
	case actionSync:
		return p.onSync(env)
	default:
		p.log.Warningf("action %q received with no defined procedure, skipping", env.Event.GetAction())
		return nil
	}
}

func (p plugin) onOpen(env *PREnv) error {
	checkRun, err := p.createCheckRun(env.Client, env.Owner, env.Repo, env.Event.GetPullRequest().GetHead().GetSHA())
	if err != nil {
		return err
	}
	_, err = p.validateAndSubmit(env, checkRun)
	return err
}

func (p plugin) onReopen(env *PREnv) error {
	checkRun, err := p.getCheckRun(env.Client, env.Owner, env.Repo, env.Event.GetPullRequest().GetHead().GetSHA())
	if err != nil {
		return err
	}
	if !Finished.Equal(checkRun.GetStatus()) {
		_, err = p.validateAndSubmit(env, checkRun)
		return err
	}
	if checkRun.GetConclusion() == "failure" {
		return fmt.Errorf("failed: %v", checkRun.GetOutput().GetSummary())
	}
	return nil
}

func (p plugin) onEdit(env *PREnv) error {
	checkRun, err := p.resetCheckRun(env.Client, env.Owner, env.Repo, env.Event.GetPullRequest().GetHead().GetSHA())
	if err != nil {
		return err
	}
	_, err = p.validateAndSubmit(env, checkRun)
	return err
}

func (p plugin) onSync(env *PREnv) error {
	checkRun, err := p.getCheckRun(env.Client, env.Owner, env.Repo, env.Event.GetBefore())
	if err != nil {
		return err
	}
	if !Finished.Equal(checkRun.GetStatus()) {
		checkRun, err = p.validateAndSubmit(env, checkRun)
		if err != nil {
			return err
		}
	}

	checkRun, err = p.duplicateCheckRun(env.Client, env.Owner, env.Repo, env.Event.GetAfter(), checkRun)
	if err != nil {
		return err
	}
	if checkRun.GetConclusion() == "failure" {
		return fmt.Errorf("failed: %v", checkRun.GetOutput().GetSummary())
	}
	return nil
}

func (p plugin) validatePR(pr *github.PullRequest) (conclusion, summary, text string, err error) {
	summary, text, err = p.validate(pr)
	if err == nil {
		conclusion = "success"
		return conclusion, summary, text, nil
	}

	conclusion = "failure"
	summary = err.Error()
	var detailed ErrorWithDetails
	if errors.As(err, &detailed) {
		text = detailed.Details()
	}
	return conclusion, summary, text, err
}

func (p plugin) validateAndSubmit(env *PREnv, checkRun *github.CheckRun) (*github.CheckRun, error) {
	conclusion, summary, text, validateErr := p.validatePR(env.Event.PullRequest)

	checkRun, err := p.finishCheckRun(env.Client, env.Owner, env.Repo, checkRun.GetID(), conclusion, summary, text)
	if err != nil {
		return checkRun, err
	}
	// A failed check run doesn't fail the overall Actions job on its own,
	// so surface it here too.
	if validateErr != nil {
		return checkRun, fmt.Errorf("failed: %v", validateErr)
	}
	return checkRun, nil
}

func (p plugin) createCheckRun(client *github.Client, owner, repo, headSHA string) (*github.CheckRun, error) {
	checkRun, _, err := client.Checks.CreateCheckRun(
		context.TODO(), owner, repo,
		github.CreateCheckRunOptions{
			Name:    p.checkRunName,
			HeadSHA: headSHA,
			Status:  Started.StringP(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create check run: %w", err)
	}
	return checkRun, nil
}

func (p plugin) getCheckRun(client *github.Client, owner, repo, headSHA string) (*github.CheckRun, error) {
	list, _, err := client.Checks.ListCheckRunsForRef(
		context.TODO(), owner, repo, headSHA,
		&github.ListCheckRunsOptions{CheckName: github.String(p.checkRunName)},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to list check runs: %w", err)
	}

	switch n := list.GetTotal(); {
	case n == 0:
		return p.createCheckRun(client, owner, repo, headSHA)
	case n == 1:
		return list.CheckRuns[0], nil
	default:
		return nil, fmt.Errorf("%d instances of %q check run found on %s/%s @ %s", n, p.checkRunName, owner, repo, headSHA)
	}
}

func (p plugin) resetCheckRun(client *github.Client, owner, repo, headSHA string) (*github.CheckRun, error) {
	checkRun, err := p.getCheckRun(client, owner, repo, headSHA)
	if err != nil || Started.Equal(checkRun.GetStatus()) {
		return checkRun, err
	}

	checkRun, _, err = client.Checks.UpdateCheckRun(
		context.TODO(), owner, repo, checkRun.GetID(),
		github.UpdateCheckRunOptions{Name: p.checkRunName, Status: Started.StringP()},
	)
	if err != nil {
		return checkRun, fmt.Errorf("unable to reset check run: %w", err)
	}
	return checkRun, nil
}

func (p plugin) finishCheckRun(client *github.Client, owner, repo string, checkRunID int64, conclusion, summary, text string) (*github.CheckRun, error) {
	var textPtr *string
	if text != "" {
		textPtr = github.String(text)
	}
	checkRun, _, err := client.Checks.UpdateCheckRun(context.TODO(), owner, repo, checkRunID, github.UpdateCheckRunOptions{
		Name:        p.checkRunName,
		Conclusion:  github.String(conclusion),
		CompletedAt: &github.Timestamp{Time: time.Now()},
		Output: &github.CheckRunOutput{
			Title:   github.String(p.checkRunOutputTitle),
			Summary: github.String(summary),
			Text:    textPtr,
		},
	})
	if err != nil {
		return checkRun, fmt.Errorf("unable to update check run with results: %w", err)
	}
	return checkRun, nil
}

func (p plugin) duplicateCheckRun(client *github.Client, owner, repo, headSHA string, checkRun *github.CheckRun) (*github.CheckRun, error) {
	dup, _, err := client.Checks.CreateCheckRun(
		context.TODO(), owner, repo,
		github.CreateCheckRunOptions{
			Name:        p.checkRunName,
			HeadSHA:     headSHA,
			DetailsURL:  checkRun.DetailsURL,
			ExternalID:  checkRun.ExternalID,
			Status:      checkRun.Status,
			Conclusion:  checkRun.Conclusion,
			StartedAt:   checkRun.StartedAt,
			CompletedAt: checkRun.CompletedAt,
			Output:      checkRun.Output,
		},
	)
	if err != nil {
		return dup, fmt.Errorf("unable to duplicate check run: %w", err)
	}
	return dup, nil
}
