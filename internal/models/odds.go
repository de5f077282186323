package models

import "time"

// Source identifies a bookmaker odds feed.
type Source string

const (
	SourceTAB       Source = "tab"
	SourceSportsbet Source = "sportsbet"
	SourceTABTouch  Source = "tabtouch"
	SourceLadbrokes Source = "ladbrokes"
	SourceElitebet  Source = "elitebet"
	SourcePointsbet Source = "pointsbet"
)

// DefaultSourcePriority is the fixed tie-break order used when two sources
// quote the same best price. Order reflects market liquidity.
var DefaultSourcePriority = []Source{
	SourceTAB,
	SourceSportsbet,
	SourceLadbrokes,
	SourceTABTouch,
	SourcePointsbet,
	SourceElitebet,
}

// IsValid reports whether the source is one of the configured bookmakers.
func (s Source) IsValid() bool {
	for _, known := range DefaultSourcePriority {
		if s == known {
			return true
		}
	}
	return false
}

// MinValidPrice is the lowest decimal price treated as a live quote.
// Anything at or below it is an absent or withdrawn market.
const MinValidPrice = 1.0

// QuoteSheet is the latest known set of per-source prices for one meeting.
// Quotes maps participant key to per-source decimal prices. A missing
// source entry means the bookmaker never quoted the participant; a zero
// price means the quote was withdrawn. Names preserves the display
// spelling first seen for each key.
type QuoteSheet struct {
	Meeting     string                        `json:"meeting"`
	Type        ChallengeType                 `json:"type"`
	Quotes      map[string]map[Source]float64 `json:"quotes"`
	Names       map[string]string             `json:"names"`
	CollectedAt time.Time                     `json:"collected_at"`
}

// NewQuoteSheet creates an empty sheet for a meeting.
func NewQuoteSheet(meeting string, ctype ChallengeType) *QuoteSheet {
	return &QuoteSheet{
		Meeting: MeetingKey(meeting),
		Type:    ctype,
		Quotes:  make(map[string]map[Source]float64),
		Names:   make(map[string]string),
	}
}

// Add records a price for a participant from one source. The latest quote
// per (participant, source) wins; no history is kept.
func (q *QuoteSheet) Add(name string, source Source, price float64) {
	key := ParticipantKey(name)
	if key == "" {
		return
	}
	if _, ok := q.Quotes[key]; !ok {
		q.Quotes[key] = make(map[Source]float64)
	}
	q.Quotes[key][source] = price
	if _, ok := q.Names[key]; !ok {
		q.Names[key] = NewParticipant(name, q.Type).DisplayName
	}
}

// ValueTier buckets an edge percentage.
type ValueTier string

const (
	TierNone ValueTier = "none"
	TierMild ValueTier = "mild"
	TierGood ValueTier = "good"
	TierHot  ValueTier = "hot"
)

// PriceMovement describes how a participant's best price has moved since
// the first merged sheet of the day.
type PriceMovement string

const (
	MovementFirming  PriceMovement = "firming"
	MovementDrifting PriceMovement = "drifting"
	MovementStable   PriceMovement = "stable"
)

// Movement carries opening-to-current price drift for display.
type Movement struct {
	Direction PriceMovement `json:"direction"`
	Change    float64       `json:"change"`
	PctChange float64       `json:"pct_change"`
	Opening   float64       `json:"opening"`
}

// MergedOdds is the reconciled market view for one participant: best
// available price across sources, the model fair price and the derived
// value classification.
type MergedOdds struct {
	Key          string             `json:"key"`
	Name         string             `json:"name"`
	BestPrice    float64            `json:"best_price"`
	BestSource   Source             `json:"best_source"`
	Prices       map[Source]float64 `json:"prices"`
	FairPrice    float64            `json:"fair_price"`
	Edge         float64            `json:"edge"`
	Tier         ValueTier          `json:"tier"`
	Value        bool               `json:"value"`
	Insufficient bool               `json:"insufficient_price_data"`
	Movement     Movement           `json:"movement"`
}

// HasPrice reports whether at least one source quoted the participant.
func (m MergedOdds) HasPrice() bool {
	return m.BestPrice > MinValidPrice
}
