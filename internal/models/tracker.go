package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackerStatus is the lifecycle state of a meeting tracker.
type TrackerStatus string

const (
	StatusInitializing TrackerStatus = "initializing"
	StatusInProgress   TrackerStatus = "in_progress"
	StatusCompleted    TrackerStatus = "completed"
)

// Margin bounds for fair-price derivation. 1.00 is a fair market; the
// default carries a typical jockey-challenge overround.
const (
	MinMargin     = 1.00
	MaxMargin     = 1.50
	DefaultMargin = 1.30
)

// Tracker is the aggregate root for one live meeting: the ordered race
// history, the roster registered so far, the last computed standings and
// merged odds, and the current margin. It is owned exclusively by the
// state store; callers only ever see snapshots.
type Tracker struct {
	ID             uuid.UUID
	Meeting        string
	Type           ChallengeType
	TotalRaces     int
	Margin         float64
	Status         TrackerStatus
	History        []RaceResultEntry
	Roster         map[string]Participant
	Standings      []Standing
	Merged         []MergedOdds
	LastQuotes     *QuoteSheet
	OpeningPrices  map[string]float64
	RacesCompleted int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTracker creates an empty tracker for a meeting.
func NewTracker(meeting string, ctype ChallengeType, totalRaces int, margin float64) *Tracker {
	now := time.Now().UTC()
	return &Tracker{
		ID:            uuid.New(),
		Meeting:       MeetingKey(meeting),
		Type:          ctype,
		TotalRaces:    totalRaces,
		Margin:        margin,
		Status:        StatusInitializing,
		Roster:        make(map[string]Participant),
		OpeningPrices: make(map[string]float64),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Register adds a participant to the roster if the key is new and
// returns the roster entry. Unknown names arriving in race results are
// registered on first sight; challenge rosters fill in incrementally.
func (t *Tracker) Register(name string) Participant {
	key := ParticipantKey(name)
	if p, ok := t.Roster[key]; ok {
		return p
	}
	p := NewParticipant(name, t.Type)
	t.Roster[key] = p
	return p
}

// IsActive reports whether the meeting still has races to run.
func (t *Tracker) IsActive() bool {
	return t.Status != StatusCompleted
}
