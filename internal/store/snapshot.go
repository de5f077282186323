package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/challenge-tracker/internal/models"
)

// Snapshot is the immutable read projection of one tracker, combining
// standings, merged odds and lifecycle fields for the presentation layer.
type Snapshot struct {
	Meeting        string                   `json:"meeting"`
	Type           models.ChallengeType     `json:"type"`
	Status         models.TrackerStatus     `json:"status"`
	Margin         float64                  `json:"margin"`
	TotalRaces     int                      `json:"total_races"`
	RacesCompleted int                      `json:"races_completed"`
	RacesRemaining int                      `json:"races_remaining"`
	Standings      []models.Standing        `json:"standings"`
	Leaderboard    []LeaderboardRow         `json:"leaderboard"`
	RaceResults    []RaceResultView         `json:"race_results"`
	Summary        Summary                  `json:"summary"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// LeaderboardRow joins a standing with the participant's merged market
// view in leaderboard order.
type LeaderboardRow struct {
	Rank           int                  `json:"rank"`
	Key            string               `json:"key"`
	Name           string               `json:"name"`
	Points         decimal.Decimal      `json:"points"`
	RidesRemaining int                  `json:"rides_remaining"`
	StartingOdds   float64              `json:"starting_odds"`
	BestPrice      float64              `json:"best_price"`
	BestSource     models.Source        `json:"best_source,omitempty"`
	FairPrice      float64              `json:"ai_price"`
	Edge           float64              `json:"edge"`
	Tier           models.ValueTier     `json:"value"`
	IsValue        bool                 `json:"is_value"`
	Movement       models.PriceMovement `json:"movement"`
}

// RaceResultView is one raced entry in the snapshot, with dead-heat
// slots made explicit for the presentation layer.
type RaceResultView struct {
	RaceNumber int               `json:"race"`
	Finishers  []models.Finisher `json:"results"`
	DeadHeats  map[int]int       `json:"dead_heats,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Summary carries per-meeting aggregate counts for the dashboard.
type Summary struct {
	Participants int                      `json:"participants"`
	ValueBets    int                      `json:"value_bets"`
	Tiers        map[models.ValueTier]int `json:"tiers"`
}

// TrackerSummary is the light listing entry for ListActive.
type TrackerSummary struct {
	Meeting        string               `json:"meeting"`
	Type           models.ChallengeType `json:"type"`
	Status         models.TrackerStatus `json:"status"`
	RacesCompleted int                  `json:"races_completed"`
	TotalRaces     int                  `json:"total_races"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// buildSnapshot projects a tracker into its read model. Caller holds at
// least a read lock on the tracker's entry; everything is copied so the
// snapshot stays consistent after the lock is released.
func buildSnapshot(t *models.Tracker) *Snapshot {
	snap := &Snapshot{
		Meeting:        t.Meeting,
		Type:           t.Type,
		Status:         t.Status,
		Margin:         t.Margin,
		TotalRaces:     t.TotalRaces,
		RacesCompleted: t.RacesCompleted,
		RacesRemaining: t.TotalRaces - t.RacesCompleted,
		Standings:      append([]models.Standing(nil), t.Standings...),
		RaceResults:    projectRaceResults(t.History),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}

	merged := make(map[string]models.MergedOdds, len(t.Merged))
	tiers := make(map[models.ValueTier]int)
	valueBets := 0
	for _, m := range t.Merged {
		merged[m.Key] = m
		tiers[m.Tier]++
		if m.Value {
			valueBets++
		}
	}

	snap.Leaderboard = make([]LeaderboardRow, 0, len(t.Standings))
	for _, st := range t.Standings {
		row := LeaderboardRow{
			Rank:           st.Rank,
			Key:            st.Key,
			Name:           st.Name,
			Points:         st.Points,
			RidesRemaining: st.RidesLeft,
			Tier:           models.TierNone,
			Movement:       models.MovementStable,
		}
		if m, ok := merged[st.Key]; ok {
			row.StartingOdds = t.OpeningPrices[st.Key]
			row.BestPrice = m.BestPrice
			row.BestSource = m.BestSource
			row.FairPrice = m.FairPrice
			row.Edge = m.Edge
			row.Tier = m.Tier
			row.IsValue = m.Value
			row.Movement = m.Movement.Direction
		}
		snap.Leaderboard = append(snap.Leaderboard, row)
	}

	snap.Summary = Summary{
		Participants: len(t.Roster),
		ValueBets:    valueBets,
		Tiers:        tiers,
	}
	return snap
}

func projectRaceResults(history []models.RaceResultEntry) []RaceResultView {
	out := make([]RaceResultView, 0, len(history))
	for i := range history {
		r := &history[i]
		view := RaceResultView{
			RaceNumber: r.RaceNumber,
			Finishers:  append([]models.Finisher(nil), r.Finishers...),
			RecordedAt: r.RecordedAt,
		}
		if heats := r.DeadHeats(); len(heats) > 0 {
			view.DeadHeats = heats
		}
		out = append(out, view)
	}
	return out
}

func summarize(t *models.Tracker) TrackerSummary {
	return TrackerSummary{
		Meeting:        t.Meeting,
		Type:           t.Type,
		Status:         t.Status,
		RacesCompleted: t.RacesCompleted,
		TotalRaces:     t.TotalRaces,
		UpdatedAt:      t.UpdatedAt,
	}
}
