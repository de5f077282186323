package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/challenge-tracker/internal/database"
	"github.com/yourusername/challenge-tracker/internal/models"
)

const errScanLedger = "failed to scan ledger row: %w"

// PostgresTrackerRepository implements TrackerRepository for PostgreSQL
type PostgresTrackerRepository struct {
	db *database.DB
}

// NewPostgresTrackerRepository creates a new tracker repository
func NewPostgresTrackerRepository(db *database.DB) TrackerRepository {
	return &PostgresTrackerRepository{db: db}
}

// InitSchema creates the archive tables if they do not exist
func (r *PostgresTrackerRepository) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS live_tracker_state (
			id UUID NOT NULL,
			meeting TEXT NOT NULL,
			meeting_date DATE NOT NULL,
			participant_type TEXT NOT NULL,
			total_races INT NOT NULL,
			races_completed INT NOT NULL,
			margin NUMERIC(4,2) NOT NULL,
			status TEXT NOT NULL,
			standings JSONB,
			history JSONB,
			merged_odds JSONB,
			opening_prices JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (meeting, meeting_date)
		);

		CREATE TABLE IF NOT EXISTS points_ledger (
			meeting TEXT NOT NULL,
			meeting_date DATE NOT NULL,
			participant TEXT NOT NULL,
			participant_type TEXT NOT NULL,
			race_number INT NOT NULL,
			position INT NOT NULL,
			points NUMERIC(6,2) NOT NULL,
			dead_heat BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (meeting, meeting_date, race_number, participant)
		);
	`
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// SaveTracker upserts the full tracker state for a meeting. Standings,
// history and odds are stored as JSONB documents; the row is keyed by
// meeting and meeting date so a track reappearing weeks later gets a
// fresh row.
func (r *PostgresTrackerRepository) SaveTracker(ctx context.Context, t *models.Tracker) error {
	standings, err := json.Marshal(t.Standings)
	if err != nil {
		return fmt.Errorf("failed to encode standings: %w", err)
	}
	history, err := json.Marshal(t.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	merged, err := json.Marshal(t.Merged)
	if err != nil {
		return fmt.Errorf("failed to encode merged odds: %w", err)
	}
	opening, err := json.Marshal(t.OpeningPrices)
	if err != nil {
		return fmt.Errorf("failed to encode opening prices: %w", err)
	}

	query := `
		INSERT INTO live_tracker_state (
			id, meeting, meeting_date, participant_type, total_races,
			races_completed, margin, status, standings, history,
			merged_odds, opening_prices, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (meeting, meeting_date) DO UPDATE SET
			races_completed = EXCLUDED.races_completed,
			margin = EXCLUDED.margin,
			status = EXCLUDED.status,
			standings = EXCLUDED.standings,
			history = EXCLUDED.history,
			merged_odds = EXCLUDED.merged_odds,
			opening_prices = EXCLUDED.opening_prices,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, query,
		t.ID, t.Meeting, t.CreatedAt.UTC().Truncate(24*time.Hour), t.Type, t.TotalRaces,
		t.RacesCompleted, t.Margin, t.Status, standings, history,
		merged, opening, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save tracker state: %w", err)
	}

	return nil
}

// SaveLedger upserts points ledger rows in a single transaction
func (r *PostgresTrackerRepository) SaveLedger(ctx context.Context, entries []models.PointsLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO points_ledger (
			meeting, meeting_date, participant, participant_type,
			race_number, position, points, dead_heat
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (meeting, meeting_date, race_number, participant) DO UPDATE SET
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			dead_heat = EXCLUDED.dead_heat
	`

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, e := range entries {
			_, err := tx.Exec(ctx, query,
				e.Meeting, e.MeetingDate.UTC().Truncate(24*time.Hour), e.Participant, e.Type,
				e.RaceNumber, e.Position, e.Points, e.DeadHeat,
			)
			if err != nil {
				return fmt.Errorf("failed to save ledger row for %s race %d: %w", e.Participant, e.RaceNumber, err)
			}
		}
		return nil
	})
}

// GetLedger retrieves the points ledger for a meeting ordered by race
func (r *PostgresTrackerRepository) GetLedger(ctx context.Context, meeting string, meetingDate time.Time) ([]models.PointsLedgerEntry, error) {
	query := `
		SELECT meeting, meeting_date, participant, participant_type,
		       race_number, position, points, dead_heat
		FROM points_ledger
		WHERE meeting = $1 AND meeting_date = $2
		ORDER BY race_number ASC, position ASC, participant ASC
	`

	rows, err := r.db.Query(ctx, query, models.MeetingKey(meeting), meetingDate.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to query points ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.PointsLedgerEntry
	for rows.Next() {
		var e models.PointsLedgerEntry
		err := rows.Scan(
			&e.Meeting, &e.MeetingDate, &e.Participant, &e.Type,
			&e.RaceNumber, &e.Position, &e.Points, &e.DeadHeat,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanLedger, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DeleteTracker removes the archived state and ledger for a meeting
func (r *PostgresTrackerRepository) DeleteTracker(ctx context.Context, meeting string) error {
	key := models.MeetingKey(meeting)
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM points_ledger WHERE meeting = $1`, key); err != nil {
			return fmt.Errorf("failed to delete points ledger: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM live_tracker_state WHERE meeting = $1`, key); err != nil {
			return fmt.Errorf("failed to delete tracker state: %w", err)
		}
		return nil
	})
}
