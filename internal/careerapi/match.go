package careerapi

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const remoteType = "remote"

type Matches struct {
	Items []*Match
}

// Match is a single job match as served by the matches endpoint.
type Match struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Company         string           `json:"company"`
	Location        string           `json:"location"`
	Salary          string           `json:"salary,omitempty"`
	Headline        string           `json:"headline,omitempty"`
	Type            string           `json:"type,omitempty"`
	Difficulty      string           `json:"difficulty,omitempty"`
	Remote          *bool            `json:"remote,omitempty"`
	MatchScore      float64          `json:"match_score"`
	RequiredSkills  []string         `json:"required_skills,omitempty"`
	PreferredSkills []string         `json:"preferred_skills,omitempty"`
	MatchReasons    []string         `json:"match_reasons,omitempty"`
	SkillGaps       []string         `json:"skill_gaps,omitempty"`
	PostedDate      string           `json:"posted_date,omitempty"`
	CultureFit      *CultureFit      `json:"culture_fit,omitempty"`
	GrowthPotential *GrowthPotential `json:"growth_potential,omitempty"`
	NegotiationPlan *NegotiationPlan `json:"negotiation_plan,omitempty"`
	ScoreBreakdown  *ScoreBreakdown  `json:"score_breakdown,omitempty"`

	// Hidden gem annotations, present only on the hidden_gems list.
	HiddenGemScore   float64  `json:"hidden_gem_score,omitempty"`
	HiddenGemReasons []string `json:"hidden_gem_reasons,omitempty"`
	Urgency          string   `json:"urgency,omitempty"`
}

type CultureFit struct {
	Score      float64  `json:"score"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights,omitempty"`
	Watchouts  []string `json:"watchouts,omitempty"`
}

type GrowthPotential struct {
	Score     float64 `json:"score"`
	Narrative string  `json:"narrative"`
	Signal    struct {
		CareerCeiling  string `json:"career_ceiling,omitempty"`
		TeamVisibility string `json:"team_visibility,omitempty"`
	} `json:"signal"`
}

type NegotiationPlan struct {
	SalaryAnchor   string   `json:"salary_anchor"`
	CounterFloor   string   `json:"counter_floor"`
	LeveragePoints []string `json:"leverage_points,omitempty"`
	RiskFlags      []string `json:"risk_flags,omitempty"`
	ClosingMove    string   `json:"closing_move,omitempty"`
}

type ScoreBreakdown struct {
	Skills       float64 `json:"skills"`
	Experience   float64 `json:"experience"`
	Culture      float64 `json:"culture"`
	Growth       float64 `json:"growth"`
	Compensation float64 `json:"compensation"`
	Total        float64 `json:"total"`
}

// IsRemote reports the effective remote flag: the explicit flag or a "remote" type.
func (m *Match) IsRemote() bool {
	if m.Remote != nil && *m.Remote {
		return true
	}

	return strings.EqualFold(strings.TrimSpace(m.Type), remoteType)
}

// Level returns the normalized difficulty tier.
func (m *Match) Level() string {
	return NormalizeLevel(m.Difficulty)
}

// NormalizeLevel lowercases a tier name and drops the " level" suffix,
// so "Senior Level", "senior" and " SENIOR " compare equal.
func NormalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	level = strings.TrimSuffix(level, " level")

	return strings.TrimSpace(level)
}

func (m *Matches) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

func (m *Matches) FindByID(id string) *Match {
	for _, match := range m.Items {
		if match.ID == id {
			return match
		}
	}
	return nil
}

func (m *Matches) IDs() []string {
	ids := make([]string, 0, m.Len())
	for _, match := range m.Items {
		ids = append(ids, match.ID)
	}
	return ids
}

// Levels returns the distinct normalized difficulty tiers, sorted.
func (m *Matches) Levels() []string {
	seen := make(map[string]struct{})
	for _, match := range m.Items {
		if level := match.Level(); level != "" {
			seen[level] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Tech returns the distinct required skills, sorted.
func (m *Matches) Tech() []string {
	seen := make(map[string]struct{})
	for _, match := range m.Items {
		for _, skill := range match.RequiredSkills {
			if skill = strings.TrimSpace(skill); skill != "" {
				seen[skill] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// Without returns a new list with the given ids left out. The receiver is not modified.
func (m *Matches) Without(ids []string) (*Matches, []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := make([]*Match, 0, m.Len())
	var removed []string
	for _, match := range m.Items {
		if _, ok := drop[match.ID]; ok {
			removed = append(removed, match.ID)
			continue
		}
		kept = append(kept, match)
	}

	return &Matches{Items: kept}, removed
}

func (m *Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups a short description of every match by company name.
func (m *Matches) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, match := range m.Items {
		entry := map[string]string{
			"id":          match.ID,
			"title":       match.Title,
			"location":    match.Location,
			"salary":      match.Salary,
			"match_score": fmt.Sprintf("%.1f", match.MatchScore),
		}
		if match.Difficulty != "" {
			entry["level"] = match.Level()
		}
		if len(match.SkillGaps) > 0 {
			entry["skill_gaps"] = strings.Join(match.SkillGaps, ", ")
		}
		report[match.Company] = append(report[match.Company], entry)
	}
	return report
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
