package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/challenge-tracker/internal/models"
)

func TestLedgerCleanRace(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	entry := race(4, fin(1, "A"), fin(2, "B"), fin(3, "C"), fin(4, "D"))

	rows := Ledger("rosehill", entry, models.JockeyChallenge, date)
	require.Len(t, rows, 3)

	assert.Equal(t, "ROSEHILL", rows[0].Meeting)
	assert.Equal(t, 4, rows[0].RaceNumber)
	assert.Equal(t, "A", rows[0].Participant)
	assert.True(t, rows[0].Points.Equal(dec("3")))
	assert.False(t, rows[0].DeadHeat)

	// D finished fourth and earns no row.
	for _, row := range rows {
		assert.NotEqual(t, "D", row.Participant)
	}
}

func TestLedgerDeadHeat(t *testing.T) {
	entry := race(2, fin(1, "A"), fin(1, "B"), fin(2, "C"))

	rows := Ledger("flemington", entry, models.JockeyChallenge, time.Now())
	require.Len(t, rows, 3)

	byName := make(map[string]models.PointsLedgerEntry)
	for _, row := range rows {
		byName[row.Participant] = row
	}

	assert.True(t, byName["A"].Points.Equal(dec("1.5")))
	assert.True(t, byName["A"].DeadHeat)
	assert.True(t, byName["B"].Points.Equal(dec("1.5")))
	// C's shared slot is 2 but the award comes from logical slot 3.
	assert.True(t, byName["C"].Points.Equal(dec("1")))
	assert.False(t, byName["C"].DeadHeat)
	assert.Equal(t, 2, byName["C"].Position)
}

func TestLedgerEmptyRace(t *testing.T) {
	rows := Ledger("rosehill", models.RaceResultEntry{RaceNumber: 1}, models.DriverChallenge, time.Now())
	assert.Empty(t, rows)
}
