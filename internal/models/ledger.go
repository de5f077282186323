package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointsLedgerEntry is one participant's award for one race, kept for
// the optional persistence layer. The in-memory standings never read it
// back; it exists so a meeting's scoring can be audited after the fact.
type PointsLedgerEntry struct {
	Meeting     string          `db:"meeting" json:"meeting"`
	MeetingDate time.Time       `db:"meeting_date" json:"meeting_date"`
	Participant string          `db:"participant" json:"participant"`
	Type        ChallengeType   `db:"participant_type" json:"participant_type"`
	RaceNumber  int             `db:"race_number" json:"race_number"`
	Position    int             `db:"position" json:"position"`
	Points      decimal.Decimal `db:"points" json:"points"`
	DeadHeat    bool            `db:"dead_heat" json:"dead_heat"`
}
