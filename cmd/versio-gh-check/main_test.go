package main

import (
	"errors"
	"testing"

	"github.com/google/go-github/v32/github"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/size"
)

func stringPointer(s string) *string { return &s }

func TestVerifyTitleKindAccepted(t *testing.T) {
	cfg := &config.ConfigFile{Sizes: map[string]size.Size{"feat": size.Minor, "fix": size.Patch}}
	validate := verifyTitleKind(cfg)

	pr := &github.PullRequest{Title: stringPointer("feat: add widget endpoint")}
	summary, _, err := validate(pr)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary == "" {
		t.Fatalf("expected a non-empty summary")
	}
}

func TestVerifyTitleKindRejectsUnknownKind(t *testing.T) {
	cfg := &config.ConfigFile{Sizes: map[string]size.Size{"feat": size.Minor, "fix": size.Patch}}
	validate := verifyTitleKind(cfg)

	pr := &github.PullRequest{Title: stringPointer("sparkle: add widget endpoint")}
	_, _, err := validate(pr)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized kind")
	}
	var detailed unknownKindError
	if !errors.As(err, &detailed) {
		t.Fatalf("expected an unknownKindError, got %T", err)
	}
	if detailed.kind != "sparkle" {
		t.Fatalf("expected kind %q, got %q", "sparkle", detailed.kind)
	}
}

func TestVerifyTitleKindRejectsMissingKind(t *testing.T) {
	cfg := &config.ConfigFile{Sizes: map[string]size.Size{"feat": size.Minor}}
	validate := verifyTitleKind(cfg)

	pr := &github.PullRequest{Title: stringPointer("bump version to 1.2.3")}
	_, _, err := validate(pr)
	if err == nil {
		t.Fatalf("expected an error when the title has no recognizable kind token")
	}
}
