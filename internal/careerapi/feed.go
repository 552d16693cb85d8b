package careerapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const matchesPath = "/api/jobs/matches"

var (
	// ErrNoAssessment means the user has not completed the assessment yet.
	// It is an empty state, not a failure.
	ErrNoAssessment = errors.New("no assessment yet")
	// ErrUnavailable wraps every other failure to load the feed.
	ErrUnavailable = errors.New("matches unavailable")
)

// Feed is the payload of the matches endpoint.
type Feed struct {
	Matches       *Matches
	HiddenGems    *Matches
	HasAssessment bool
}

type feedResponse struct {
	Matches       []*Match `json:"matches"`
	HiddenGems    []*Match `json:"hidden_gems"`
	HasAssessment *bool    `json:"has_assessment"`
}

func (c *Client) getFeed(ctx context.Context, userID string) (*Feed, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnavailable)
	}

	apiURLMatches := fmt.Sprintf("%s%s/%s", strings.TrimRight(c.APIURL, "/"), matchesPath, url.PathEscape(userID))

	var raw map[string]any
	if err := c.getJSON(ctx, apiURLMatches, nil, &raw); err != nil {
		var status *statusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			return nil, ErrNoAssessment
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	response, err := decodeFeed(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode feed: %w", ErrUnavailable, err)
	}

	hasAssessment := response.HasAssessment == nil || *response.HasAssessment
	if !hasAssessment && len(response.Matches) == 0 {
		return nil, ErrNoAssessment
	}

	c.logger.Debug("got matches feed",
		zap.String("user_id", userID),
		zap.Int("matches", len(response.Matches)),
		zap.Int("hidden_gems", len(response.HiddenGems)),
	)

	return &Feed{
		Matches:       &Matches{Items: response.Matches},
		HiddenGems:    &Matches{Items: response.HiddenGems},
		HasAssessment: hasAssessment,
	}, nil
}

// decodeFeed maps the raw JSON document onto typed matches. Weak typing lets
// numeric ids from the API land in string fields.
func decodeFeed(raw map[string]any) (*feedResponse, error) {
	var response feedResponse
	cfg := &mapstructure.DecoderConfig{
		Result:           &response,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return &response, nil
}
