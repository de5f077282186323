// Package repository persists tracker state and the points ledger to
// PostgreSQL. The store treats these writes as best effort; nothing in
// the live path reads back from here.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/challenge-tracker/internal/models"
)

// TrackerRepository defines the interface for tracker state persistence
type TrackerRepository interface {
	SaveTracker(ctx context.Context, t *models.Tracker) error
	SaveLedger(ctx context.Context, entries []models.PointsLedgerEntry) error
	GetLedger(ctx context.Context, meeting string, meetingDate time.Time) ([]models.PointsLedgerEntry, error)
	DeleteTracker(ctx context.Context, meeting string) error
}
