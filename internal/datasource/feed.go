package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/challenge-tracker/internal/models"
)

const feedDisabledMsg = "feed is disabled"

// BookmakerFeed implements OddsFeed against a bookmaker's challenge
// price endpoint. All six supported bookmakers expose the same JSON
// shape behind different base URLs, so one client covers them.
type BookmakerFeed struct {
	httpClient *RateLimitedHTTPClient
	source     models.Source
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// feedResponse is the wire format of a challenge price endpoint.
type feedResponse struct {
	Meeting       string      `json:"meeting"`
	ChallengeType string      `json:"challenge_type"`
	Runners       []feedEntry `json:"runners"`
}

type feedEntry struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Suspended bool    `json:"suspended"`
}

// NewBookmakerFeed creates a feed client for one bookmaker
func NewBookmakerFeed(httpClient *RateLimitedHTTPClient, source models.Source, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *BookmakerFeed {
	return &BookmakerFeed{
		httpClient: httpClient,
		source:     source,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchQuotes retrieves the current challenge prices for a meeting
func (c *BookmakerFeed) FetchQuotes(ctx context.Context, meeting string, ctype models.ChallengeType) ([]FeedQuote, error) {
	if !c.enabled {
		return nil, NewFeedError(string(c.source), ErrCodeDisabled, feedDisabledMsg, ErrFeedDisabled)
	}

	endpoint := fmt.Sprintf("%s/challenges?meeting=%s&type=%s",
		c.baseURL, url.QueryEscape(meeting), url.QueryEscape(string(ctype)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewFeedError(string(c.source), ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewFeedError(string(c.source), ErrCodeNetworkError, "failed to fetch quotes", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewFeedError(string(c.source), ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewFeedError(string(c.source), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	// Bookmakers that do not offer a market for this meeting return 404.
	// That is an absent source, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, NewFeedError(string(c.source), ErrCodeNotFound, "no challenge market for meeting", ErrMeetingNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewFeedError(string(c.source), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewFeedError(string(c.source), ErrCodeInvalidData, "failed to parse response", err)
	}

	quotes := make([]FeedQuote, 0, len(payload.Runners))
	for _, entry := range payload.Runners {
		if entry.Name == "" {
			continue
		}
		price := entry.Price
		if entry.Suspended {
			// A suspended runner keeps its row but carries no usable price.
			price = 0
		}
		quotes = append(quotes, FeedQuote{Name: entry.Name, Price: price})
	}

	return quotes, nil
}

// Source returns the bookmaker this feed reports for
func (c *BookmakerFeed) Source() models.Source {
	return c.source
}

// IsEnabled returns whether this feed is enabled
func (c *BookmakerFeed) IsEnabled() bool {
	return c.enabled
}
