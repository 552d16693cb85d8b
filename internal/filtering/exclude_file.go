package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/matchdeck/internal/careerapi"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes matches listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &excludeFileFilter{
		path:   strings.TrimSpace(path),
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return f.path != "" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, m *careerapi.Matches) (*careerapi.Matches, Step, error) {
	initial := m.Len()

	excluded, err := careerapi.GetExcludedMatchesFromFile(f.path)
	if err != nil {
		return m, Step{}, fmt.Errorf("getting excluded matches from file: %w", err)
	}

	kept, removed := m.Without(excluded.IDs())
	if len(removed) > 0 {
		f.logger.Info("excluding matches based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_matches", removed),
			zap.Int("matches_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: kept.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}
