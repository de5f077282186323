// Package service coordinates quote collection with the tracker store.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/challenge-tracker/internal/datasource"
	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/odds"
	"github.com/yourusername/challenge-tracker/internal/store"
)

// RefreshService drives the odds refresh cycle: collect a fresh sheet
// per active meeting, cache it, and push it into the tracker store.
type RefreshService struct {
	collector *datasource.Collector
	cache     *odds.QuoteCache
	store     *store.Store
	logger    *logrus.Logger
}

// NewRefreshService creates a new refresh service
func NewRefreshService(collector *datasource.Collector, cache *odds.QuoteCache, st *store.Store, logger *logrus.Logger) *RefreshService {
	return &RefreshService{
		collector: collector,
		cache:     cache,
		store:     st,
		logger:    logger,
	}
}

// RefreshMeeting collects quotes for one meeting and applies them to its
// tracker. The collected sheet is cached even if the tracker has been
// deleted in the meantime.
func (s *RefreshService) RefreshMeeting(ctx context.Context, meeting string, ctype models.ChallengeType) error {
	sheet, err := s.collector.Collect(ctx, meeting, ctype)
	if err != nil {
		return fmt.Errorf("collect quotes for %s: %w", meeting, err)
	}

	s.cache.Put(sheet)

	if _, err := s.store.RefreshOdds(ctx, meeting, sheet); err != nil {
		return fmt.Errorf("apply quotes to %s: %w", meeting, err)
	}
	return nil
}

// RefreshAll runs one collection pass over every meeting whose challenge
// is still in play. Individual meeting failures are collected rather
// than aborting the pass.
func (s *RefreshService) RefreshAll(ctx context.Context) error {
	summaries := s.store.ListActive(ctx)

	var failed []string
	refreshed := 0
	for _, sum := range summaries {
		if sum.Status == models.StatusCompleted {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.RefreshMeeting(ctx, sum.Meeting, sum.Type); err != nil {
			s.logger.WithError(err).WithField("meeting", sum.Meeting).Warn("Odds refresh failed for meeting")
			failed = append(failed, sum.Meeting)
			continue
		}
		refreshed++
	}

	if refreshed > 0 || len(failed) > 0 {
		s.logger.WithFields(logrus.Fields{
			"refreshed": refreshed,
			"failed":    len(failed),
		}).Info("Odds refresh pass complete")
	}

	if len(failed) > 0 {
		return fmt.Errorf("refresh failed for meetings: %s", strings.Join(failed, ", "))
	}
	return nil
}
