// Package view renders the match deck for the terminal.
package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/matchdeck/internal/careerapi"
	"github.com/spigell/matchdeck/internal/deck"
	"github.com/spigell/matchdeck/internal/utils"
)

const (
	defaultWidth = 64
	headlineLen  = 120
	skillsShown  = 6
)

// EmptyState is what the deck shows when there is no card to handle.
type EmptyState int

const (
	NoMatches EmptyState = iota
	CaughtUp
	NoAssessment
	LoadFailed
)

var emptyText = map[EmptyState][2]string{
	NoMatches:    {"No matches yet", "Try adjusting your filters."},
	CaughtUp:     {"You're all caught up", "New opportunities drop daily. Check back soon."},
	NoAssessment: {"No assessment yet", "Complete your assessment to unlock matches."},
	LoadFailed:   {"Could not load matches right now.", "Try refreshing in a moment."},
}

// Marker reports per-match session flags. *deck.Session implements it.
type Marker interface {
	IsSaved(id string) bool
	IsApplied(id string) bool
}

type Theme struct {
	Border lipgloss.Color
	Accent lipgloss.Color
	Faint  lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
}

var DefaultTheme = Theme{
	Border: lipgloss.Color("240"),
	Accent: lipgloss.Color("205"),
	Faint:  lipgloss.Color("245"),
	Good:   lipgloss.Color("42"),
	Warn:   lipgloss.Color("214"),
}

type Renderer struct {
	theme Theme
	width int
	// AssessmentURL is linked from the no-assessment state.
	AssessmentURL string
}

func New(width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{theme: DefaultTheme, width: width}
}

// Stack draws the top card in full and the cards beneath it as offset,
// narrower edges.
func (r *Renderer) Stack(layers []deck.Layer, marks Marker) string {
	if len(layers) == 0 {
		return ""
	}

	parts := make([]string, 0, len(layers))
	for _, layer := range layers {
		if layer.Interactive {
			parts = append(parts, r.Card(layer.Match, marks))
			continue
		}
		parts = append(parts, r.edge(layer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// edge renders a card below the top one. OffsetY is in pixels; every 8
// pixels become one column of indentation in the terminal.
func (r *Renderer) edge(layer deck.Layer) string {
	width := int(math.Round(float64(r.width) * layer.Scale))
	indent := layer.OffsetY / deck.LayerOffset

	style := lipgloss.NewStyle().
		Foreground(r.theme.Faint).
		MarginLeft(indent).
		Width(width - indent)

	label := fmt.Sprintf("└ %s · %s", layer.Match.Title, layer.Match.Company)
	return style.Render(utils.TruncateForLog(label, width-indent-4))
}

// Card renders the top card.
func (r *Renderer) Card(m *careerapi.Match, marks Marker) string {
	if m == nil {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Render(m.Title)
	score := lipgloss.NewStyle().Foreground(r.theme.Accent).Bold(true).
		Render(fmt.Sprintf("%d%% match", int(math.Round(m.MatchScore))))

	lines := []string{
		title + "  " + score,
		r.faint(joinNonEmpty(" · ", m.Company, m.Location, m.Salary)),
	}

	if badges := r.badges(m, marks); badges != "" {
		lines = append(lines, badges)
	}
	if m.Headline != "" {
		lines = append(lines, "", utils.TruncateForLog(m.Headline, headlineLen))
	}
	if len(m.RequiredSkills) > 0 {
		lines = append(lines, "", r.faint("Skills: ")+strings.Join(firstN(m.RequiredSkills, skillsShown), ", "))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.Border).
		Padding(0, 1).
		Width(r.width).
		Render(strings.Join(lines, "\n"))
}

func (r *Renderer) badges(m *careerapi.Match, marks Marker) string {
	var parts []string
	if m.IsRemote() {
		parts = append(parts, "remote")
	} else if m.Type != "" {
		parts = append(parts, m.Type)
	}
	if level := m.Level(); level != "" {
		parts = append(parts, level)
	}

	badge := lipgloss.NewStyle().Foreground(r.theme.Faint)
	out := make([]string, 0, len(parts)+2)
	for _, p := range parts {
		out = append(out, badge.Render("["+p+"]"))
	}

	if marks != nil {
		if marks.IsSaved(m.ID) {
			out = append(out, lipgloss.NewStyle().Foreground(r.theme.Warn).Render("[saved]"))
		}
		if marks.IsApplied(m.ID) {
			out = append(out, lipgloss.NewStyle().Foreground(r.theme.Good).Render("[applied]"))
		}
	}
	return strings.Join(out, " ")
}

func (r *Renderer) Counters(c deck.Counters) string {
	return r.faint(fmt.Sprintf("Applied %d · Saved %d · Passed %d", c.Applied, c.Saved, c.Passed))
}

// Banner shows the latest action. Empty text renders nothing.
func (r *Renderer) Banner(text string) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(r.theme.Good).Render("✓ " + text)
}

func (r *Renderer) Empty(state EmptyState) string {
	text, ok := emptyText[state]
	if !ok {
		text = emptyText[NoMatches]
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render(text[0]), r.faint(text[1])}
	if state == NoAssessment && r.AssessmentURL != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(r.theme.Accent).Underline(true).Render(r.AssessmentURL))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(r.theme.Border).
		Padding(1, 2).
		Width(r.width).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// Deck renders the whole screen for a session: banner, stack or empty
// state, counters.
func (r *Renderer) Deck(s *deck.Session) string {
	parts := []string{}
	if banner := r.Banner(s.LastAction()); banner != "" {
		parts = append(parts, banner)
	}

	switch {
	case len(s.Filtered()) == 0:
		parts = append(parts, r.Empty(NoMatches))
	case len(s.Visible()) == 0:
		parts = append(parts, r.Empty(CaughtUp))
	default:
		parts = append(parts, r.Stack(s.Layers(), s))
	}

	parts = append(parts, r.Counters(s.Counters()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r *Renderer) faint(s string) string {
	return lipgloss.NewStyle().Foreground(r.theme.Faint).Render(s)
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
