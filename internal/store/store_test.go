package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/odds"
)

// stubQuotes is a QuoteProvider seeded with fixed sheets.
type stubQuotes struct {
	sheets map[string]*models.QuoteSheet
}

func (s *stubQuotes) Latest(meeting string) *models.QuoteSheet {
	return s.sheets[models.MeetingKey(meeting)]
}

// recordingArchiver captures archive writes for assertions.
type recordingArchiver struct {
	mu       sync.Mutex
	trackers []*models.Tracker
	ledgers  [][]models.PointsLedgerEntry
}

func (a *recordingArchiver) SaveTracker(ctx context.Context, t *models.Tracker) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackers = append(a.trackers, t)
	return nil
}

func (a *recordingArchiver) SaveLedger(ctx context.Context, entries []models.PointsLedgerEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ledgers = append(a.ledgers, entries)
	return nil
}

func (a *recordingArchiver) counts() (trackers, ledgers int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.trackers), len(a.ledgers)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestStore() *Store {
	return New(nil, odds.NewReconciler(nil), nil, quietLogger())
}

func result(number int, names ...string) models.RaceResultEntry {
	finishers := make([]models.Finisher, len(names))
	for i, n := range names {
		finishers[i] = models.Finisher{Position: i + 1, Name: n}
	}
	return models.RaceResultEntry{RaceNumber: number, Finishers: finishers}
}

func TestInitAndSnapshot(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	snap, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)
	assert.Equal(t, "ROSEHILL", snap.Meeting)
	assert.Equal(t, models.StatusInitializing, snap.Status)
	assert.Equal(t, 8, snap.RacesRemaining)
	assert.Equal(t, models.DefaultMargin, snap.Margin)

	got, err := s.Snapshot(ctx, "rosehill")
	require.NoError(t, err)
	assert.Equal(t, snap.Meeting, got.Meeting)
}

func TestInitValidation(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "   ", models.JockeyChallenge, 8, models.DefaultMargin)
	assert.ErrorIs(t, err, models.ErrInvalidTracker)

	_, err = s.Init(ctx, "Rosehill", models.ChallengeType("trainer"), 8, models.DefaultMargin)
	assert.ErrorIs(t, err, models.ErrInvalidTracker)

	_, err = s.Init(ctx, "Rosehill", models.JockeyChallenge, 0, models.DefaultMargin)
	assert.ErrorIs(t, err, models.ErrInvalidTracker)

	_, err = s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, 1.60)
	assert.ErrorIs(t, err, models.ErrInvalidMargin)
}

func TestInitDuplicate(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Same key after normalization.
	_, err = s.Init(ctx, "  rosehill ", models.JockeyChallenge, 8, models.DefaultMargin)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestInitPicksUpCachedQuotes(t *testing.T) {
	sheet := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	sheet.Add("J McDonald", models.SourceTAB, 2.5)
	sheet.Add("K McEvoy", models.SourceTAB, 4.0)
	quotes := &stubQuotes{sheets: map[string]*models.QuoteSheet{"ROSEHILL": sheet}}

	s := New(quotes, odds.NewReconciler(nil), nil, quietLogger())
	snap, err := s.Init(context.Background(), "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Summary.Participants)
	require.Len(t, snap.Leaderboard, 2)
	for _, row := range snap.Leaderboard {
		assert.Greater(t, row.BestPrice, 1.0)
	}
}

func TestSubmitRaceLifecycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 2, models.DefaultMargin)
	require.NoError(t, err)

	snap, err := s.SubmitRace(ctx, "Rosehill", result(1, "A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, snap.Status)
	assert.Equal(t, 1, snap.RacesCompleted)
	assert.Equal(t, 1, snap.RacesRemaining)

	snap, err = s.SubmitRace(ctx, "Rosehill", result(2, "B", "A", "C"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, snap.Status)
	assert.Equal(t, 0, snap.RacesRemaining)

	// Completed meetings accept nothing further.
	_, err = s.SubmitRace(ctx, "Rosehill", result(3, "A", "B", "C"))
	assert.ErrorIs(t, err, models.ErrInvalidRace)
}

func TestSubmitRaceOrdering(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Race 2 before race 1.
	_, err = s.SubmitRace(ctx, "Rosehill", result(2, "A", "B", "C"))
	assert.ErrorIs(t, err, models.ErrInvalidRace)

	_, err = s.SubmitRace(ctx, "Rosehill", result(1, "A", "B", "C"))
	require.NoError(t, err)

	// Resubmitting race 1 is rejected and the tracker is untouched.
	_, err = s.SubmitRace(ctx, "Rosehill", result(1, "A", "B", "C"))
	assert.ErrorIs(t, err, models.ErrInvalidRace)

	snap, err := s.Snapshot(ctx, "Rosehill")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RacesCompleted)
}

func TestSubmitRaceMalformed(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Duplicate finisher.
	entry := models.RaceResultEntry{RaceNumber: 1, Finishers: []models.Finisher{
		{Position: 1, Name: "A"}, {Position: 2, Name: "a"}, {Position: 3, Name: "C"},
	}}
	_, err = s.SubmitRace(ctx, "Rosehill", entry)
	assert.ErrorIs(t, err, models.ErrInvalidRace)

	// History unchanged.
	snap, _ := s.Snapshot(ctx, "Rosehill")
	assert.Zero(t, snap.RacesCompleted)
	assert.Equal(t, models.StatusInitializing, snap.Status)
}

func TestSubmitRaceNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.SubmitRace(context.Background(), "Nowhere", result(1, "A", "B", "C"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubmitRaceStandings(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Dead heat for first between A and B, C next.
	entry := models.RaceResultEntry{RaceNumber: 1, Finishers: []models.Finisher{
		{Position: 1, Name: "A"}, {Position: 1, Name: "B"}, {Position: 2, Name: "C"},
	}}
	snap, err := s.SubmitRace(ctx, "Rosehill", entry)
	require.NoError(t, err)

	require.Len(t, snap.Standings, 3)
	pts := make(map[string]decimal.Decimal)
	for _, st := range snap.Standings {
		pts[st.Key] = st.Points
	}
	half := decimal.RequireFromString("1.5")
	assert.True(t, pts["A"].Equal(half))
	assert.True(t, pts["B"].Equal(half))
	assert.True(t, pts["C"].Equal(decimal.NewFromInt(1)))

	// Both dead-heaters lead jointly.
	leaders := 0
	for _, st := range snap.Standings {
		if st.IsLeader {
			leaders++
		}
	}
	assert.Equal(t, 2, leaders)

	// The projected race results carry the shared slot explicitly.
	require.Len(t, snap.RaceResults, 1)
	assert.Equal(t, map[int]int{1: 2}, snap.RaceResults[0].DeadHeats)
}

func TestUpdateMargin(t *testing.T) {
	sheet := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	sheet.Add("A", models.SourceTAB, 2.0)
	sheet.Add("B", models.SourceTAB, 2.0)
	quotes := &stubQuotes{sheets: map[string]*models.QuoteSheet{"ROSEHILL": sheet}}

	s := New(quotes, odds.NewReconciler(nil), nil, quietLogger())
	ctx := context.Background()

	snap, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.MinMargin)
	require.NoError(t, err)
	require.Len(t, snap.Leaderboard, 2)
	assert.InDelta(t, 2.0, snap.Leaderboard[0].FairPrice, 1e-9)

	// Tightening the margin re-merges odds from the same quotes.
	snap, err = s.UpdateMargin(ctx, "Rosehill", 1.30)
	require.NoError(t, err)
	assert.InDelta(t, 2.6, snap.Leaderboard[0].FairPrice, 1e-9)
	assert.Equal(t, 1.30, snap.Margin)

	// Out-of-range margins leave the tracker untouched.
	_, err = s.UpdateMargin(ctx, "Rosehill", 0.99)
	assert.ErrorIs(t, err, models.ErrInvalidMargin)
	_, err = s.UpdateMargin(ctx, "Rosehill", 1.51)
	assert.ErrorIs(t, err, models.ErrInvalidMargin)

	snap, _ = s.Snapshot(ctx, "Rosehill")
	assert.Equal(t, 1.30, snap.Margin)
}

func TestRefreshOddsPartialSheet(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Only one source reporting is still a valid refresh.
	sheet := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	sheet.Add("A", models.SourceElitebet, 3.0)
	sheet.Add("B", models.SourceElitebet, 2.0)

	snap, err := s.RefreshOdds(ctx, "Rosehill", sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Summary.Participants)
	require.Len(t, snap.Leaderboard, 2)
	for _, row := range snap.Leaderboard {
		assert.Equal(t, models.SourceElitebet, row.BestSource)
	}
}

func TestRefreshOddsMovement(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	first := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	first.Add("A", models.SourceTAB, 3.0)
	first.Add("B", models.SourceTAB, 2.0)
	_, err = s.RefreshOdds(ctx, "Rosehill", first)
	require.NoError(t, err)

	// A drifts well past the band.
	second := models.NewQuoteSheet("Rosehill", models.JockeyChallenge)
	second.Add("A", models.SourceTAB, 4.0)
	second.Add("B", models.SourceTAB, 2.0)
	snap, err := s.RefreshOdds(ctx, "Rosehill", second)
	require.NoError(t, err)

	rows := make(map[string]LeaderboardRow)
	for _, row := range snap.Leaderboard {
		rows[row.Key] = row
	}
	assert.Equal(t, models.MovementDrifting, rows["A"].Movement)
	assert.Equal(t, 3.0, rows["A"].StartingOdds)
	assert.Equal(t, models.MovementStable, rows["B"].Movement)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	s.Delete(ctx, "Rosehill")
	_, err = s.Snapshot(ctx, "Rosehill")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Second delete is a no-op.
	s.Delete(ctx, "Rosehill")
	assert.Zero(t, s.Count())
}

func TestListActiveAndActiveMeetings(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 1, models.DefaultMargin)
	require.NoError(t, err)
	_, err = s.Init(ctx, "Globe Derby", models.DriverChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	// Complete Rosehill's single race.
	_, err = s.SubmitRace(ctx, "Rosehill", result(1, "A", "B", "C"))
	require.NoError(t, err)

	summaries := s.ListActive(ctx)
	require.Len(t, summaries, 2)
	assert.Equal(t, "GLOBE DERBY", summaries[0].Meeting)
	assert.Equal(t, "ROSEHILL", summaries[1].Meeting)
	assert.Equal(t, models.StatusCompleted, summaries[1].Status)

	// Only the unfinished meeting is refreshed.
	active := s.ActiveMeetings(ctx)
	assert.Equal(t, []string{"GLOBE DERBY"}, active)
}

func TestArchiverReceivesWrites(t *testing.T) {
	arch := &recordingArchiver{}
	s := New(nil, odds.NewReconciler(nil), arch, quietLogger())
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)
	_, err = s.SubmitRace(ctx, "Rosehill", result(1, "A", "B", "C"))
	require.NoError(t, err)

	// Archive writes are async; wait for both to land.
	require.Eventually(t, func() bool {
		trackers, ledgers := arch.counts()
		return trackers >= 2 && ledgers >= 1
	}, 2*time.Second, 10*time.Millisecond)

	arch.mu.Lock()
	defer arch.mu.Unlock()
	ledger := arch.ledgers[0]
	require.Len(t, ledger, 3)
	assert.Equal(t, "ROSEHILL", ledger[0].Meeting)
	assert.Equal(t, 1, ledger[0].RaceNumber)
}

func TestStoreErrorCarriesMeeting(t *testing.T) {
	s := newTestStore()
	_, err := s.Snapshot(context.Background(), "Nowhere Park")

	var storeErr *models.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "NOWHERE PARK", storeErr.Meeting)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConcurrentMeetingsAreIndependent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	meetings := []string{"Rosehill", "Flemington", "Eagle Farm", "Morphettville"}
	for _, m := range meetings {
		_, err := s.Init(ctx, m, models.JockeyChallenge, 8, models.DefaultMargin)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, m := range meetings {
		wg.Add(1)
		go func(meeting string) {
			defer wg.Done()
			for race := 1; race <= 8; race++ {
				_, err := s.SubmitRace(ctx, meeting, result(race,
					fmt.Sprintf("%s A", meeting), fmt.Sprintf("%s B", meeting), fmt.Sprintf("%s C", meeting)))
				assert.NoError(t, err)
				_, err = s.Snapshot(ctx, meeting)
				assert.NoError(t, err)
			}
		}(m)
	}
	wg.Wait()

	for _, m := range meetings {
		snap, err := s.Snapshot(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, snap.Status)
		assert.Equal(t, 8, snap.RacesCompleted)
	}
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Init(ctx, "Rosehill", models.JockeyChallenge, 8, models.DefaultMargin)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for race := 1; race <= 8; race++ {
			_, err := s.SubmitRace(ctx, "Rosehill", result(race, "A", "B", "C"))
			assert.NoError(t, err)
		}
	}()

	// Readers must always observe a consistent state: races completed
	// never exceeds total and standings points match the replay count.
	for i := 0; i < 200; i++ {
		snap, err := s.Snapshot(ctx, "Rosehill")
		require.NoError(t, err)
		assert.LessOrEqual(t, snap.RacesCompleted, 8)
		for _, st := range snap.Standings {
			assert.Equal(t, snap.RacesCompleted, st.RidesCompleted)
		}
	}
	<-done
}
