package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/challenge-tracker/internal/config"
	"github.com/yourusername/challenge-tracker/internal/models"
)

// Factory creates OddsFeed implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new feed factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewFeed creates a single OddsFeed from its configuration
func (f *Factory) NewFeed(cfg config.FeedConfig, httpClient *RateLimitedHTTPClient) (OddsFeed, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	source := models.Source(cfg.Name)
	if !source.IsValid() {
		return nil, fmt.Errorf("unknown bookmaker feed: %s", cfg.Name)
	}

	return NewBookmakerFeed(httpClient, source, cfg.URL, cfg.APIKey, cfg.Enabled, f.logger), nil
}

// NewFeeds creates all enabled feeds from configuration
func (f *Factory) NewFeeds(feedsCfg config.FeedsConfig, httpClient *RateLimitedHTTPClient) ([]OddsFeed, error) {
	var feeds []OddsFeed

	for _, srcCfg := range feedsCfg.Sources {
		if !srcCfg.Enabled {
			if f.logger != nil {
				f.logger.WithField("source", srcCfg.Name).Info("Skipping disabled feed")
			}
			continue
		}

		feed, err := f.NewFeed(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create feed %s: %w", srcCfg.Name, err)
		}

		feeds = append(feeds, feed)
		if f.logger != nil {
			f.logger.WithField("source", srcCfg.Name).Info("Created bookmaker feed")
		}
	}

	if len(feeds) == 0 {
		return nil, fmt.Errorf("no enabled bookmaker feeds configured")
	}

	return feeds, nil
}
