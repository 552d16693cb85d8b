package filtering

import (
	"strings"

	"github.com/spigell/matchdeck/internal/careerapi"
)

const remoteKeyword = "remote"

// Criteria is the user's filter configuration. Zero values leave a rule unset.
type Criteria struct {
	Role     string   `mapstructure:"role"`
	Level    string   `mapstructure:"level"`
	Location string   `mapstructure:"location"`
	Remote   *bool    `mapstructure:"remote"`
	Tech     []string `mapstructure:"tech"`
}

// IsDirty reports whether any rule is active.
func (c Criteria) IsDirty() bool {
	return strings.TrimSpace(c.Role) != "" ||
		careerapi.NormalizeLevel(c.Level) != "" ||
		strings.TrimSpace(c.Location) != "" ||
		c.Remote != nil ||
		len(c.Tech) > 0
}

// ToggleTech adds the tag when absent and removes it otherwise.
func (c Criteria) ToggleTech(tag string) Criteria {
	tech := make([]string, 0, len(c.Tech)+1)
	found := false
	for _, t := range c.Tech {
		if strings.EqualFold(t, tag) {
			found = true
			continue
		}
		tech = append(tech, t)
	}
	if !found {
		tech = append(tech, tag)
	}

	c.Tech = tech
	return c
}

// Keep reports whether the match passes every active rule of the criteria.
func Keep(c Criteria, m *careerapi.Match) bool {
	if m == nil {
		return false
	}

	return keepRole(c.Role, m) &&
		keepLevel(c.Level, m) &&
		keepLocation(c.Location, m) &&
		keepRemote(c.Remote, m) &&
		keepTech(c.Tech, m)
}

// Apply returns the matches that pass the criteria, preserving order.
func (c Criteria) Apply(m *careerapi.Matches) []*careerapi.Match {
	kept := make([]*careerapi.Match, 0, m.Len())
	if m == nil {
		return kept
	}

	for _, match := range m.Items {
		if Keep(c, match) {
			kept = append(kept, match)
		}
	}
	return kept
}

func keepRole(role string, m *careerapi.Match) bool {
	q := strings.ToLower(strings.TrimSpace(role))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(m.Title), q)
}

func keepLevel(level string, m *careerapi.Match) bool {
	want := careerapi.NormalizeLevel(level)
	if want == "" {
		return true
	}

	return m.Level() == want
}

func keepLocation(location string, m *careerapi.Match) bool {
	q := strings.ToLower(strings.TrimSpace(location))
	if q == "" {
		return true
	}

	if strings.Contains(strings.ToLower(m.Location), q) {
		return true
	}

	return q == remoteKeyword && m.IsRemote()
}

func keepRemote(remote *bool, m *careerapi.Match) bool {
	if remote == nil {
		return true
	}

	return m.IsRemote() == *remote
}

// keepTech requires every tag to be one of the required skills.
func keepTech(tech []string, m *careerapi.Match) bool {
	for _, tag := range tech {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !hasSkill(m.RequiredSkills, tag) {
			return false
		}
	}

	return true
}

func hasSkill(skills []string, tag string) bool {
	for _, skill := range skills {
		if strings.EqualFold(strings.TrimSpace(skill), tag) {
			return true
		}
	}
	return false
}
