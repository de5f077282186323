package standings

import (
	"time"

	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/points"
)

// Ledger expands one race result into per-participant ledger rows for
// the persistence layer. Only scored placings are recorded; unplaced
// runners earn nothing and leave no row.
func Ledger(meeting string, entry models.RaceResultEntry, ctype models.ChallengeType, meetingDate time.Time) []models.PointsLedgerEntry {
	groups := make(map[int][]models.Finisher)
	for _, f := range entry.Finishers {
		groups[f.Position] = append(groups[f.Position], f)
	}

	rows := make([]models.PointsLedgerEntry, 0, len(entry.Finishers))
	logicalSlot := 1
	for _, slot := range entry.Slots() {
		members := groups[slot]
		award := points.For(logicalSlot, len(members))
		if award.IsPositive() {
			for _, f := range members {
				rows = append(rows, models.PointsLedgerEntry{
					Meeting:     models.MeetingKey(meeting),
					Participant: f.Key(),
					Type:        ctype,
					MeetingDate: meetingDate,
					RaceNumber:  entry.RaceNumber,
					Position:    slot,
					Points:      award,
					DeadHeat:    len(members) > 1,
				})
			}
		}
		logicalSlot = points.NextSlot(logicalSlot, len(members))
	}
	return rows
}
