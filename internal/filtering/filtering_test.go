package filtering

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/matchdeck/internal/careerapi"
)

func TestCriteriaStepsAgreeWithPredicate(t *testing.T) {
	criteria := Criteria{Role: "engineer", Level: "senior", Tech: []string{"React"}}
	source := &careerapi.Matches{Items: sampleMatches()}

	got, err := New(NewCriteriaSteps(criteria), nil).RunFilters(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := criteria.Apply(source)
	if got.Len() != len(want) {
		t.Fatalf("pipeline kept %d, predicate kept %d", got.Len(), len(want))
	}
	for i := range want {
		if got.Items[i].ID != want[i].ID {
			t.Fatalf("pipeline order differs at %d: %s vs %s", i, got.Items[i].ID, want[i].ID)
		}
	}

	if source.Len() != len(sampleMatches()) {
		t.Fatalf("pipeline must not modify the source list")
	}
}

func TestRunFiltersLogsEnabledSteps(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	criteria := Criteria{Remote: boolPtr(true)}
	_, err := New(NewCriteriaSteps(criteria), zap.New(core)).RunFilters(context.Background(), &careerapi.Matches{Items: sampleMatches()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one enabled step to be logged, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["name"] != "remote" {
		t.Fatalf("unexpected step name: %v", ctx["name"])
	}
	if ctx["dropped"] != int64(2) || ctx["left"] != int64(2) {
		t.Fatalf("unexpected step counts: %v", ctx)
	}
}

func TestDescribeCriteriaSteps(t *testing.T) {
	t.Parallel()

	statuses := Describe(NewCriteriaSteps(Criteria{Location: "NYC", Remote: boolPtr(false)}))
	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}

	byName := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}

	if !byName["location"].Enabled || byName["location"].Details["value"] != "NYC" {
		t.Fatalf("unexpected location status: %+v", byName["location"])
	}
	if !byName["remote"].Enabled || byName["remote"].Details["value"] != "false" {
		t.Fatalf("unexpected remote status: %+v", byName["remote"])
	}
	if byName["role"].Enabled || byName["role"].Reason != "not set" {
		t.Fatalf("unexpected role status: %+v", byName["role"])
	}
}

func TestExcludeFileFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	excluded := (&careerapi.Matches{Items: []*careerapi.Match{{ID: "2"}, {ID: "4"}}}).ToExcluded(time.Now())
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	step := NewExcludeFile(path, zap.New(core))
	if !step.IsEnabled() {
		t.Fatalf("expected filter with a path to be enabled")
	}

	got, info, err := step.Apply(context.Background(), &careerapi.Matches{Items: sampleMatches()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Initial != 4 || info.Dropped != 2 || info.Left != 2 {
		t.Fatalf("unexpected step info: %+v", info)
	}
	if got.Items[0].ID != "1" || got.Items[1].ID != "3" {
		t.Fatalf("unexpected remaining ids: %v", got.IDs())
	}

	if observed.FilterMessage("excluding matches based on exclude file").Len() != 1 {
		t.Fatalf("expected exclusion to be logged")
	}
}

func TestExcludeFileFilterDisabledWithoutPath(t *testing.T) {
	t.Parallel()

	step := NewExcludeFile("  ", nil)
	if step.IsEnabled() {
		t.Fatalf("expected filter without a path to be disabled")
	}

	source := &careerapi.Matches{Items: sampleMatches()}
	got, err := New([]Filter{step}, nil).RunFilters(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != source.Len() {
		t.Fatalf("disabled filter must not drop anything")
	}
}
