package view

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/matchdeck/internal/careerapi"
	"github.com/spigell/matchdeck/internal/deck"
)

func sampleMatches() *careerapi.Matches {
	return &careerapi.Matches{Items: []*careerapi.Match{
		{
			ID:             "1",
			Title:          "Go Engineer",
			Company:        "Acme",
			Location:       "Berlin",
			Type:           "remote",
			Difficulty:     "Senior Level",
			MatchScore:     87.4,
			Headline:       "Build the matching pipeline",
			RequiredSkills: []string{"Go", "Postgres"},
			MatchReasons:   []string{"Strong Go background"},
			SkillGaps:      []string{"Kubernetes"},
			ScoreBreakdown: &careerapi.ScoreBreakdown{Skills: 90, Experience: 80},
			CultureFit:     &careerapi.CultureFit{Score: 75, Summary: "Small async team"},
		},
		{ID: "2", Title: "SRE", Company: "Globex"},
		{ID: "3", Title: "Data Engineer", Company: "Initech"},
		{ID: "4", Title: "Frontend Engineer", Company: "Umbrella"},
	}}
}

func newSession(t *testing.T) *deck.Session {
	t.Helper()

	s := deck.New(context.Background(), deck.Config{})
	s.Load(sampleMatches())
	return s
}

func TestDeckShowsTopCardAndEdges(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	out := New(80).Deck(s)

	for _, want := range []string{"Go Engineer", "87% match", "Acme", "[remote]", "[senior]", "Postgres", "SRE", "Data Engineer", "Applied 0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Frontend Engineer") {
		t.Fatalf("only three cards may be visible:\n%s", out)
	}
}

func TestDeckMarksAndBanner(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.Save(s.Top())

	out := New(80).Deck(s)
	if !strings.Contains(out, "[saved]") || !strings.Contains(out, "Saved Go Engineer") {
		t.Fatalf("expected saved mark and banner:\n%s", out)
	}
}

func TestDeckEmptyStates(t *testing.T) {
	t.Parallel()

	r := New(80)

	s := deck.New(context.Background(), deck.Config{})
	s.Load(&careerapi.Matches{})
	if out := r.Deck(s); !strings.Contains(out, "No matches yet") || !strings.Contains(out, "Try adjusting your filters.") {
		t.Fatalf("expected no-matches state:\n%s", out)
	}

	s.Load(&careerapi.Matches{Items: []*careerapi.Match{{ID: "1", Title: "Only"}}})
	s.Swipe(deck.Left)
	if out := r.Deck(s); !strings.Contains(out, "You're all caught up") {
		t.Fatalf("expected caught-up state:\n%s", out)
	}
}

func TestEmptyNoAssessmentLink(t *testing.T) {
	t.Parallel()

	r := New(80)
	r.AssessmentURL = "http://localhost:3000/assessment"

	out := r.Empty(NoAssessment)
	if !strings.Contains(out, "Complete your assessment") || !strings.Contains(out, r.AssessmentURL) {
		t.Fatalf("expected assessment call to action:\n%s", out)
	}

	if out := r.Empty(LoadFailed); !strings.Contains(out, "Could not load matches right now.") {
		t.Fatalf("expected load failure text:\n%s", out)
	}
}

func TestDetail(t *testing.T) {
	t.Parallel()

	m := sampleMatches().Items[0]
	out := New(100).Detail(m, nil)

	for _, want := range []string{"Why you match", "Strong Go background", "Skill gaps", "Kubernetes", "Score breakdown", "Culture fit 75", "Small async team"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in detail:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Negotiation plan") {
		t.Fatalf("absent sections must be skipped:\n%s", out)
	}
}

func TestHiddenGems(t *testing.T) {
	t.Parallel()

	r := New(80)
	if out := r.HiddenGems(nil); !strings.Contains(out, "No hidden gems") {
		t.Fatalf("unexpected output: %s", out)
	}

	gems := &careerapi.Matches{Items: []*careerapi.Match{{
		ID: "9", Title: "Platform Lead", Company: "Hooli", HiddenGemScore: 91, Urgency: "high",
		HiddenGemReasons: []string{"Under-posted role"},
	}}}
	out := r.HiddenGems(gems)
	for _, want := range []string{"Platform Lead", "gem 91", "[high]", "Under-posted role"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
