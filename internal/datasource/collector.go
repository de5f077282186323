package datasource

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/challenge-tracker/internal/metrics"
	"github.com/yourusername/challenge-tracker/internal/models"
)

// Collector fans a quote collection out across all configured bookmaker
// feeds and merges whatever comes back into a single sheet. A feed that
// errors or times out contributes nothing; the sheet is still usable as
// long as any feed reported.
type Collector struct {
	feeds      []OddsFeed
	perFeedMax time.Duration
	logger     *logrus.Logger
}

// NewCollector creates a collector over the given feeds
func NewCollector(feeds []OddsFeed, perFeedTimeout time.Duration, logger *logrus.Logger) *Collector {
	if perFeedTimeout <= 0 {
		perFeedTimeout = 15 * time.Second
	}
	return &Collector{
		feeds:      feeds,
		perFeedMax: perFeedTimeout,
		logger:     logger,
	}
}

type feedResult struct {
	source models.Source
	quotes []FeedQuote
	err    error
}

// Collect polls every enabled feed concurrently and assembles the
// responses into one QuoteSheet for the meeting.
func (c *Collector) Collect(ctx context.Context, meeting string, ctype models.ChallengeType) (*models.QuoteSheet, error) {
	start := time.Now()

	results := make(chan feedResult, len(c.feeds))
	var wg sync.WaitGroup

	for _, feed := range c.feeds {
		if !feed.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(feed OddsFeed) {
			defer wg.Done()

			feedCtx, cancel := context.WithTimeout(ctx, c.perFeedMax)
			defer cancel()

			quotes, err := feed.FetchQuotes(feedCtx, meeting, ctype)
			results <- feedResult{source: feed.Source(), quotes: quotes, err: err}
		}(feed)
	}

	wg.Wait()
	close(results)

	sheet := models.NewQuoteSheet(meeting, ctype)
	reporting := 0

	for res := range results {
		if res.err != nil {
			// A bookmaker simply not offering this meeting is routine.
			if errors.Is(res.err, ErrMeetingNotFound) {
				c.logger.WithFields(logrus.Fields{
					"source":  res.source,
					"meeting": meeting,
				}).Debug("Feed has no market for meeting")
				continue
			}
			metrics.FeedFetchErrorsTotal.WithLabelValues(string(res.source)).Inc()
			c.logger.WithError(res.err).WithFields(logrus.Fields{
				"source":  res.source,
				"meeting": meeting,
			}).Warn("Feed fetch failed")
			continue
		}

		for _, q := range res.quotes {
			sheet.Add(q.Name, res.source, q.Price)
		}
		reporting++
	}

	metrics.SourcesReporting.Set(float64(reporting))
	metrics.CollectionDuration.Observe(time.Since(start).Seconds())

	if reporting == 0 {
		return nil, NewFeedError("collector", ErrCodeNetworkError, "no feed returned data for "+meeting, nil)
	}

	// A key only one bookmaker knows usually means a spelling mismatch
	// upstream. Matching stays exact; this just makes the divergence
	// visible.
	if reporting >= 2 {
		for key, prices := range sheet.Quotes {
			if len(prices) == 1 {
				for src := range prices {
					c.logger.WithFields(logrus.Fields{
						"meeting":     meeting,
						"participant": key,
						"source":      src,
					}).Warn("Participant quoted by a single source")
				}
			}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"meeting":      meeting,
		"sources":      reporting,
		"participants": len(sheet.Quotes),
		"elapsed":      time.Since(start).Round(time.Millisecond),
	}).Info("Quote collection complete")

	return sheet, nil
}

// Sources lists the bookmakers this collector polls.
func (c *Collector) Sources() []models.Source {
	out := make([]models.Source, 0, len(c.feeds))
	for _, feed := range c.feeds {
		out = append(out, feed.Source())
	}
	return out
}
