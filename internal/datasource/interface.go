package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/challenge-tracker/internal/models"
)

// OddsFeed defines the interface for fetching challenge odds from one
// bookmaker provider.
type OddsFeed interface {
	// FetchQuotes retrieves the current challenge prices for a meeting
	FetchQuotes(ctx context.Context, meeting string, ctype models.ChallengeType) ([]FeedQuote, error)

	// Source returns the bookmaker this feed reports for
	Source() models.Source

	// IsEnabled returns whether this feed is currently enabled
	IsEnabled() bool
}

// FeedQuote is one participant price as reported by a bookmaker feed.
// Name is the raw display name from the provider; normalization happens
// when the quote is added to a sheet.
type FeedQuote struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// FeedError represents errors from bookmaker feed operations
type FeedError struct {
	Source  string // Bookmaker feed name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMeetingNotFound      = errors.New("meeting not offered")
	ErrInvalidData          = errors.New("invalid data format")
	ErrFeedDisabled         = errors.New("feed disabled")
)

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
