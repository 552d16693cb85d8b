package filtering

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/matchdeck/internal/careerapi"
)

type ruleFilter struct {
	name     string
	value    string
	disabled bool
	reason   string
	keep     func(*careerapi.Match) bool
}

// NewCriteriaSteps splits the criteria into one step per rule, so the
// pipeline can report how many matches each rule dropped. Unset rules are
// disabled.
func NewCriteriaSteps(c Criteria) []Filter {
	remote := ""
	if c.Remote != nil {
		remote = strconv.FormatBool(*c.Remote)
	}

	steps := []Filter{
		newRule("role", strings.TrimSpace(c.Role), func(m *careerapi.Match) bool { return keepRole(c.Role, m) }),
		newRule("level", careerapi.NormalizeLevel(c.Level), func(m *careerapi.Match) bool { return keepLevel(c.Level, m) }),
		newRule("location", strings.TrimSpace(c.Location), func(m *careerapi.Match) bool { return keepLocation(c.Location, m) }),
		newRule("remote", remote, func(m *careerapi.Match) bool { return keepRemote(c.Remote, m) }),
		newRule("tech", strings.Join(c.Tech, ","), func(m *careerapi.Match) bool { return keepTech(c.Tech, m) }),
	}

	return steps
}

func newRule(name, value string, keep func(*careerapi.Match) bool) *ruleFilter {
	f := &ruleFilter{name: name, value: value, keep: keep}
	if value == "" {
		f.Disable("not set")
	}
	return f
}

func (f *ruleFilter) Name() string { return f.name }

func (f *ruleFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *ruleFilter) IsEnabled() bool { return !f.disabled }

func (f *ruleFilter) Validate() error { return nil }

func (f *ruleFilter) Apply(_ context.Context, m *careerapi.Matches) (*careerapi.Matches, Step, error) {
	initial := m.Len()
	kept := make([]*careerapi.Match, 0, initial)
	for _, match := range m.Items {
		if f.keep(match) {
			kept = append(kept, match)
		}
	}

	return &careerapi.Matches{Items: kept}, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *ruleFilter) Status() Status {
	details := map[string]string{}
	if f.value != "" {
		details["value"] = f.value
	}
	return Status{Name: f.name, Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
