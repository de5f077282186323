package odds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/challenge-tracker/internal/models"
)

func TestQuoteCachePutAndLatest(t *testing.T) {
	qc := NewQuoteCache(time.Minute)

	sheet := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	sheet.Add("J McDonald", models.SourceTAB, 2.5)
	qc.Put(sheet)

	got := qc.Latest("rosehill")
	require.NotNil(t, got)
	assert.Equal(t, "ROSEHILL", got.Meeting)
	assert.Contains(t, got.Quotes, "J MCDONALD")

	hits, misses := qc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(0), misses)
}

func TestQuoteCacheMiss(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	assert.Nil(t, qc.Latest("Nowhere Park"))

	hits, misses := qc.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestQuoteCacheReplaces(t *testing.T) {
	qc := NewQuoteCache(time.Minute)

	first := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	first.Add("A", models.SourceTAB, 2.0)
	qc.Put(first)

	second := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	second.Add("A", models.SourceTAB, 2.4)
	qc.Put(second)

	got := qc.Latest("Rosehill")
	require.NotNil(t, got)
	assert.Equal(t, 2.4, got.Quotes["A"][models.SourceTAB])
}

func TestQuoteCacheExpiry(t *testing.T) {
	qc := NewQuoteCache(20 * time.Millisecond)

	sheet := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	sheet.Add("A", models.SourceTAB, 2.0)
	qc.Put(sheet)

	require.NotNil(t, qc.Latest("Rosehill"))
	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, qc.Latest("Rosehill"))
}

func TestQuoteCacheMeetings(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	qc.Put(models.NewQuoteSheet("Rosehill", models.JockeyChallenge))
	qc.Put(models.NewQuoteSheet("Globe Derby", models.DriverChallenge))

	meetings := qc.Meetings()
	assert.Len(t, meetings, 2)
	assert.Contains(t, meetings, "ROSEHILL")
	assert.Contains(t, meetings, "GLOBE DERBY")
}

func TestQuoteCacheNilPut(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	qc.Put(nil)
	assert.Empty(t, qc.Meetings())
}
