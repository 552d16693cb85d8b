package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/matchdeck/internal/filtering"
)

const (
	filterAny      = "any"
	filterYes      = "yes"
	filterNo       = "no"
	filterClearAll = "Clear all filters"
	filterReport   = "Show filter report"
	filterDone     = "done"
)

// editFilters lets the user change the criteria. Every change re-filters the deck.
func (b *browser) editFilters() error {
	for {
		c := b.session.Criteria()

		items := []string{
			"Role: " + orAny(c.Role),
			"Level: " + orAny(c.Level),
			"Location: " + orAny(c.Location),
			"Remote: " + remoteLabel(c.Remote),
			"Tech: " + orAny(strings.Join(c.Tech, ", ")),
		}
		if c.IsDirty() {
			items = append(items, filterClearAll)
		}
		items = append(items, filterReport, PromptBack)

		prompt := promptui.Select{
			Label: fmt.Sprintf("Filters (%d of %d matches shown)", len(b.session.Filtered()), b.session.Source().Len()),
			Items: items,
			Size:  len(items),
		}

		idx, selected, err := prompt.Run()
		if err != nil {
			return ignoreClosed(err)
		}

		switch {
		case selected == PromptBack:
			return nil
		case selected == filterClearAll:
			c = filtering.Criteria{}
		case selected == filterReport:
			b.reportFilters(c)
			continue
		case idx == 0:
			c.Role, err = promptText("Role", c.Role)
		case idx == 1:
			c.Level, err = b.pickLevel(c.Level)
		case idx == 2:
			c.Location, err = promptText("Location (or \"remote\")", c.Location)
		case idx == 3:
			c.Remote, err = pickRemote()
		case idx == 4:
			c, err = b.pickTech(c)
		}
		if err != nil {
			return ignoreClosed(err)
		}

		b.session.SetCriteria(c)
		b.logger.Debug("filters changed", zap.Any("criteria", c), zap.Int("filtered", len(b.session.Filtered())))
	}
}

func (b *browser) pickLevel(current string) (string, error) {
	items := append([]string{filterAny}, b.session.Source().Levels()...)

	prompt := promptui.Select{
		Label: fmt.Sprintf("Level (now %s)", orAny(current)),
		Items: items,
	}

	_, selected, err := prompt.Run()
	if err != nil || selected == filterAny {
		return "", err
	}
	return selected, nil
}

func pickRemote() (*bool, error) {
	prompt := promptui.Select{
		Label: "Remote",
		Items: []string{filterAny, filterYes, filterNo},
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return nil, err
	}

	switch selected {
	case filterYes:
		v := true
		return &v, nil
	case filterNo:
		v := false
		return &v, nil
	default:
		return nil, nil
	}
}

// pickTech toggles tags one at a time until the user is done.
func (b *browser) pickTech(c filtering.Criteria) (filtering.Criteria, error) {
	tags := b.session.Source().Tech()
	for _, t := range c.Tech {
		if !containsFold(tags, t) {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)

	for {
		items := make([]string, 0, len(tags)+1)
		items = append(items, filterDone)
		for _, t := range tags {
			mark := "[ ]"
			if containsFold(c.Tech, t) {
				mark = "[x]"
			}
			items = append(items, mark+" "+t)
		}

		prompt := promptui.Select{
			Label: "Toggle required tech",
			Items: items,
			Size:  min(len(items), 15),
		}

		idx, _, err := prompt.Run()
		if err != nil {
			return c, err
		}
		if idx == 0 {
			return c, nil
		}

		c = c.ToggleTech(tags[idx-1])
	}
}

// reportFilters runs every rule as a separate step over the loaded list, so
// the log shows how many matches each one drops.
func (b *browser) reportFilters(c filtering.Criteria) {
	steps := filtering.NewCriteriaSteps(c)

	for _, status := range filtering.Describe(steps) {
		fields := []zap.Field{zap.Bool("enabled", status.Enabled)}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}
		for k, v := range status.Details {
			fields = append(fields, zap.String(k, v))
		}
		b.logger.Info("filter "+status.Name, fields...)
	}

	left, err := filtering.New(steps, b.logger).RunFilters(b.ctx, b.session.Source())
	if err != nil {
		b.logger.Warn("running filters", zap.Error(err))
		return
	}
	b.logger.Info("filters applied", zap.Int("initial", b.session.Source().Len()), zap.Int("left", left.Len()))
}

func promptText(label, current string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   current,
		AllowEdit: true,
	}

	value, err := prompt.Run()
	if err != nil {
		return current, err
	}
	return strings.TrimSpace(value), nil
}

func orAny(v string) string {
	if strings.TrimSpace(v) == "" {
		return filterAny
	}
	return v
}

func remoteLabel(v *bool) string {
	switch {
	case v == nil:
		return filterAny
	case *v:
		return filterYes
	default:
		return filterNo
	}
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
