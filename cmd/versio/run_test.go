package main

import (
	"testing"

	"github.com/versio-release/versio/internal/mutate"
)

func TestIsNoOpTrueForNoChangeOutcome(t *testing.T) {
	dec := &mutate.Decision{Projects: []mutate.ProjectPlan{
		{ProjectName: "api", Outcome: mutate.NoChange},
		{ProjectName: "lib", Outcome: mutate.Bumped},
	}}

	if !isNoOp(dec, "api") {
		t.Fatalf("expected api to be a no-op")
	}
	if isNoOp(dec, "lib") {
		t.Fatalf("expected lib not to be a no-op")
	}
}

func TestIsNoOpFalseForUnknownProject(t *testing.T) {
	dec := &mutate.Decision{Projects: []mutate.ProjectPlan{
		{ProjectName: "api", Outcome: mutate.NoChange},
	}}

	if isNoOp(dec, "nonexistent") {
		t.Fatalf("expected an unknown project name not to be treated as a no-op")
	}
}
