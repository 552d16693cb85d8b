package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/matchdeck/internal/careerapi"
)

// Detail renders the detail overlay of a match.
func (r *Renderer) Detail(m *careerapi.Match, marks Marker) string {
	if m == nil {
		return ""
	}

	heading := lipgloss.NewStyle().Bold(true).Foreground(r.theme.Accent)
	sections := []string{
		lipgloss.NewStyle().Bold(true).Render(m.Title) + "  " +
			heading.Render(fmt.Sprintf("%d", int(math.Round(m.MatchScore)))),
		r.faint(joinNonEmpty(" · ", m.Company, m.Location, m.Salary, m.PostedDate)),
	}
	if badges := r.badges(m, marks); badges != "" {
		sections = append(sections, badges)
	}
	if m.Headline != "" {
		sections = append(sections, "", m.Headline)
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sections = append(sections, "", heading.Render(title))
		for _, item := range items {
			sections = append(sections, "  • "+item)
		}
	}

	list("Why you match", m.MatchReasons)
	list("Required skills", m.RequiredSkills)
	list("Preferred skills", m.PreferredSkills)
	list("Skill gaps", m.SkillGaps)

	if b := m.ScoreBreakdown; b != nil {
		sections = append(sections, "", heading.Render("Score breakdown"),
			fmt.Sprintf("  skills %.0f · experience %.0f · culture %.0f · growth %.0f · compensation %.0f",
				b.Skills, b.Experience, b.Culture, b.Growth, b.Compensation))
	}

	if c := m.CultureFit; c != nil {
		sections = append(sections, "", heading.Render(fmt.Sprintf("Culture fit %.0f", c.Score)))
		if c.Summary != "" {
			sections = append(sections, "  "+c.Summary)
		}
		list("Highlights", c.Highlights)
		list("Watch outs", c.Watchouts)
	}

	if g := m.GrowthPotential; g != nil {
		sections = append(sections, "", heading.Render(fmt.Sprintf("Growth potential %.0f", g.Score)))
		if g.Narrative != "" {
			sections = append(sections, "  "+g.Narrative)
		}
		if signal := joinNonEmpty(" · ", g.Signal.CareerCeiling, g.Signal.TeamVisibility); signal != "" {
			sections = append(sections, r.faint("  "+signal))
		}
	}

	if n := m.NegotiationPlan; n != nil {
		sections = append(sections, "", heading.Render("Negotiation plan"))
		if n.SalaryAnchor != "" {
			sections = append(sections, "  Anchor: "+n.SalaryAnchor)
		}
		if n.CounterFloor != "" {
			sections = append(sections, "  Floor: "+n.CounterFloor)
		}
		list("Leverage", n.LeveragePoints)
		list("Risks", n.RiskFlags)
		if n.ClosingMove != "" {
			sections = append(sections, "  Close: "+n.ClosingMove)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(r.theme.Accent).
		Padding(0, 1).
		Width(r.width).
		Render(strings.Join(sections, "\n"))
}

// HiddenGems lists the hidden gem matches with their reasons.
func (r *Renderer) HiddenGems(gems *careerapi.Matches) string {
	if gems.Len() == 0 {
		return r.faint("No hidden gems right now.")
	}

	rows := make([]string, 0, gems.Len())
	for _, m := range gems.Items {
		row := fmt.Sprintf("%s · %s  %s", m.Title, m.Company,
			r.faint(fmt.Sprintf("gem %.0f", m.HiddenGemScore)))
		if m.Urgency != "" {
			row += " " + lipgloss.NewStyle().Foreground(r.theme.Warn).Render("["+m.Urgency+"]")
		}
		for _, reason := range m.HiddenGemReasons {
			row += "\n    " + r.faint(reason)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}
