package odds

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/challenge-tracker/internal/models"
)

// QuoteCache holds the latest collected quote sheet per meeting with a
// TTL, so trackers initialized after a collection cycle can pick up odds
// immediately. Only "latest known" is kept; stale sheets simply expire.
type QuoteCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewQuoteCache creates a cache whose sheets expire after ttl.
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Latest returns the freshest sheet for a meeting, or nil when none is
// known or the last one expired.
func (qc *QuoteCache) Latest(meeting string) *models.QuoteSheet {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if v, found := qc.cache.Get(models.MeetingKey(meeting)); found {
		if sheet, ok := v.(*models.QuoteSheet); ok {
			qc.hitCount++
			return sheet
		}
	}
	qc.missCount++
	return nil
}

// Put stores the latest sheet for a meeting, replacing any previous one.
func (qc *QuoteCache) Put(sheet *models.QuoteSheet) {
	if sheet == nil {
		return
	}
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.cache.Set(sheet.Meeting, sheet, qc.ttl)
}

// Meetings lists the meeting keys currently holding a live sheet.
func (qc *QuoteCache) Meetings() []string {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	items := qc.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns cumulative hit and miss counts.
func (qc *QuoteCache) Stats() (hits, misses uint64) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return qc.hitCount, qc.missCount
}
