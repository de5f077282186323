// Package store owns the live tracker aggregates: a concurrency-safe
// keyed map of meeting trackers with per-key serialization of mutations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/challenge-tracker/internal/metrics"
	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/odds"
	"github.com/yourusername/challenge-tracker/internal/standings"
)

// QuoteProvider supplies the latest known quote sheet for a meeting, if
// any. The store consults it once at init so a tracker created after a
// collection cycle starts with odds populated.
type QuoteProvider interface {
	Latest(meeting string) *models.QuoteSheet
}

// Archiver persists tracker state out of band. Writes are best effort:
// the in-memory aggregate is always authoritative for the session.
type Archiver interface {
	SaveTracker(ctx context.Context, t *models.Tracker) error
	SaveLedger(ctx context.Context, entries []models.PointsLedgerEntry) error
}

const archiveTimeout = 5 * time.Second

// entry pairs a tracker with its own lock. Mutations on one meeting
// serialize on the entry lock; different meetings proceed in parallel.
type entry struct {
	mu sync.RWMutex
	t  *models.Tracker
}

// Store is the keyed tracker state store.
type Store struct {
	mu         sync.RWMutex
	trackers   map[string]*entry
	quotes     QuoteProvider
	reconciler *odds.Reconciler
	archive    Archiver
	logger     *logrus.Logger
}

// New creates a store. quotes and archive may be nil.
func New(quotes QuoteProvider, reconciler *odds.Reconciler, archive Archiver, logger *logrus.Logger) *Store {
	if reconciler == nil {
		reconciler = odds.NewReconciler(nil)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		trackers:   make(map[string]*entry),
		quotes:     quotes,
		reconciler: reconciler,
		archive:    archive,
		logger:     logger,
	}
}

// Init creates a tracker for a meeting. It fails with ErrAlreadyExists
// when the key is present. If the quote provider already knows the
// meeting, merged odds are populated immediately.
func (s *Store) Init(ctx context.Context, meeting string, ctype models.ChallengeType, totalRaces int, margin float64) (*Snapshot, error) {
	key := models.MeetingKey(meeting)
	if key == "" {
		return nil, models.NewStoreError(meeting, models.ErrInvalidTracker, "empty meeting name")
	}
	if !ctype.IsValid() {
		return nil, models.NewStoreError(key, models.ErrInvalidTracker, "unknown challenge type %q", ctype)
	}
	if totalRaces < 1 {
		return nil, models.NewStoreError(key, models.ErrInvalidTracker, "total races must be positive, got %d", totalRaces)
	}
	if err := validMargin(key, margin); err != nil {
		return nil, err
	}

	e := &entry{t: models.NewTracker(key, ctype, totalRaces, margin)}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	if _, exists := s.trackers[key]; exists {
		s.mu.Unlock()
		return nil, models.NewStoreError(key, models.ErrAlreadyExists, "tracker already initialized")
	}
	s.trackers[key] = e
	metrics.TrackersActive.Set(float64(len(s.trackers)))
	s.mu.Unlock()

	if s.quotes != nil {
		if sheet := s.quotes.Latest(key); sheet != nil {
			s.applyQuotes(e.t, sheet)
		}
	}
	s.recomputeStandings(e.t)

	s.logger.WithFields(logrus.Fields{
		"meeting":     key,
		"type":        ctype,
		"total_races": totalRaces,
		"margin":      margin,
	}).Info("Tracker initialized")

	s.archiveState(e.t, nil)
	return buildSnapshot(e.t), nil
}

// SubmitRace appends a race result to a tracker's history and recomputes
// the standings by full replay. Races must arrive strictly in order;
// resubmissions and skips are rejected with the tracker untouched.
func (s *Store) SubmitRace(ctx context.Context, meeting string, result models.RaceResultEntry) (*Snapshot, error) {
	e, err := s.get(meeting)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.t

	if result.RaceNumber != t.RacesCompleted+1 {
		metrics.SubmissionsRejectedTotal.WithLabelValues("out_of_order").Inc()
		return nil, models.NewStoreError(t.Meeting, models.ErrInvalidRace,
			"race %d out of order, expected %d", result.RaceNumber, t.RacesCompleted+1)
	}
	if result.RaceNumber > t.TotalRaces {
		metrics.SubmissionsRejectedTotal.WithLabelValues("completed").Inc()
		return nil, models.NewStoreError(t.Meeting, models.ErrInvalidRace,
			"meeting already completed after %d races", t.TotalRaces)
	}
	if err := standings.ValidateEntry(result); err != nil {
		metrics.SubmissionsRejectedTotal.WithLabelValues("malformed").Inc()
		return nil, &models.StoreError{Meeting: t.Meeting, Kind: err}
	}

	if result.RecordedAt.IsZero() {
		result.RecordedAt = time.Now().UTC()
	}
	for _, f := range result.Finishers {
		if _, known := t.Roster[f.Key()]; !known {
			// Rosters register incrementally; an unseen name is a
			// late-joining participant, not an operator error.
			s.logger.WithFields(logrus.Fields{
				"meeting":     t.Meeting,
				"participant": f.Key(),
				"race":        result.RaceNumber,
			}).Info("Registering participant first seen in race result")
		}
		t.Register(f.Name)
	}

	t.History = append(t.History, result)
	t.RacesCompleted = result.RaceNumber
	if t.RacesCompleted >= t.TotalRaces {
		t.Status = models.StatusCompleted
	} else {
		t.Status = models.StatusInProgress
	}
	t.UpdatedAt = time.Now().UTC()

	s.recomputeStandings(t)
	metrics.RacesRecordedTotal.Inc()

	s.logger.WithFields(logrus.Fields{
		"meeting":         t.Meeting,
		"race":            result.RaceNumber,
		"races_completed": t.RacesCompleted,
		"status":          t.Status,
		"dead_heats":      len(result.DeadHeats()),
	}).Info("Race result recorded")

	s.archiveState(t, standings.Ledger(t.Meeting, result, t.Type, t.CreatedAt))
	return buildSnapshot(t), nil
}

// UpdateMargin changes the market margin and recomputes merged odds from
// the last known quotes. Standings are never touched.
func (s *Store) UpdateMargin(ctx context.Context, meeting string, margin float64) (*Snapshot, error) {
	e, err := s.get(meeting)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.t

	if err := validMargin(t.Meeting, margin); err != nil {
		metrics.SubmissionsRejectedTotal.WithLabelValues("margin").Inc()
		return nil, err
	}

	t.Margin = margin
	t.UpdatedAt = time.Now().UTC()
	if t.LastQuotes != nil {
		s.mergeQuotes(t)
	}

	s.logger.WithFields(logrus.Fields{"meeting": t.Meeting, "margin": margin}).Info("Margin updated")
	s.archiveState(t, nil)
	return buildSnapshot(t), nil
}

// RefreshOdds replaces the tracker's quote sheet with freshly collected
// quotes and reruns the reconciliation pipeline. Partial sheets with only
// some sources reporting are valid input. Race history is untouched.
func (s *Store) RefreshOdds(ctx context.Context, meeting string, sheet *models.QuoteSheet) (*Snapshot, error) {
	e, err := s.get(meeting)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.t

	if sheet != nil {
		s.applyQuotes(t, sheet)
		s.recomputeStandings(t)
		t.UpdatedAt = time.Now().UTC()
		metrics.OddsRefreshesTotal.Inc()
	}
	return buildSnapshot(t), nil
}

// Delete removes a tracker. Deleting an absent meeting is not an error.
func (s *Store) Delete(ctx context.Context, meeting string) {
	key := models.MeetingKey(meeting)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[key]; ok {
		delete(s.trackers, key)
		metrics.ValueBetsCurrent.DeleteLabelValues(key)
		s.logger.WithField("meeting", key).Info("Tracker deleted")
	}
	metrics.TrackersActive.Set(float64(len(s.trackers)))
}

// Snapshot returns a read-only projection of a tracker. Reads run
// concurrently with each other and always observe a fully applied state.
func (s *Store) Snapshot(ctx context.Context, meeting string) (*Snapshot, error) {
	e, err := s.get(meeting)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return buildSnapshot(e.t), nil
}

// ListActive returns summaries for all trackers still in play, plus
// completed ones that have not been deleted, sorted by meeting key.
func (s *Store) ListActive(ctx context.Context) []TrackerSummary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.trackers))
	for _, e := range s.trackers {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	summaries := make([]TrackerSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		summaries = append(summaries, summarize(e.t))
		e.mu.RUnlock()
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Meeting < summaries[j].Meeting })
	return summaries
}

// ActiveMeetings returns the keys of trackers whose meetings are not yet
// completed, for the refresh scheduler.
func (s *Store) ActiveMeetings(ctx context.Context) []string {
	keys := make([]string, 0)
	for _, sum := range s.ListActive(ctx) {
		if sum.Status != models.StatusCompleted {
			keys = append(keys, sum.Meeting)
		}
	}
	return keys
}

// Count returns the number of meetings currently tracked, completed or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackers)
}

func (s *Store) get(meeting string) (*entry, error) {
	key := models.MeetingKey(meeting)
	s.mu.RLock()
	e, ok := s.trackers[key]
	s.mu.RUnlock()
	if !ok {
		return nil, models.NewStoreError(key, models.ErrNotFound, "no tracker for meeting")
	}
	return e, nil
}

// applyQuotes installs a new sheet on the tracker, registers any unseen
// participants and reruns the merge. Caller holds the entry lock.
func (s *Store) applyQuotes(t *models.Tracker, sheet *models.QuoteSheet) {
	t.LastQuotes = sheet
	for key := range sheet.Quotes {
		t.Register(sheet.Names[key])
	}
	s.mergeQuotes(t)
}

// mergeQuotes reruns reconciliation against the tracker's last quotes
// and records first-seen opening prices. Caller holds the entry lock.
func (s *Store) mergeQuotes(t *models.Tracker) {
	start := time.Now()
	t.Merged = s.reconciler.Merge(t.LastQuotes, t.Margin, t.OpeningPrices)
	metrics.MergeDuration.Observe(time.Since(start).Seconds())

	valueCount := 0
	for _, m := range t.Merged {
		if m.HasPrice() {
			if _, seen := t.OpeningPrices[m.Key]; !seen {
				t.OpeningPrices[m.Key] = m.BestPrice
			}
		}
		if m.Value {
			valueCount++
		}
	}
	metrics.ValueBetsCurrent.WithLabelValues(t.Meeting).Set(float64(valueCount))
}

// recomputeStandings replays the full history. Caller holds the entry lock.
func (s *Store) recomputeStandings(t *models.Tracker) {
	roster := make([]models.Participant, 0, len(t.Roster))
	for _, p := range t.Roster {
		roster = append(roster, p)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Key < roster[j].Key })

	start := time.Now()
	t.Standings = standings.Aggregate(t.History, roster, t.TotalRaces)
	metrics.AggregateDuration.Observe(time.Since(start).Seconds())
}

// archiveState hands the current aggregate to the archiver without
// blocking the mutation path. Caller holds the entry lock; the copy is
// taken before the goroutine starts.
func (s *Store) archiveState(t *models.Tracker, ledger []models.PointsLedgerEntry) {
	if s.archive == nil {
		return
	}
	snapshot := *t
	// Maps keep being mutated under the entry lock after this call
	// returns; the archive goroutine needs its own copies.
	snapshot.Roster = make(map[string]models.Participant, len(t.Roster))
	for k, v := range t.Roster {
		snapshot.Roster[k] = v
	}
	snapshot.OpeningPrices = make(map[string]float64, len(t.OpeningPrices))
	for k, v := range t.OpeningPrices {
		snapshot.OpeningPrices[k] = v
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.archive.SaveTracker(ctx, &snapshot); err != nil {
			s.logger.WithError(err).WithField("meeting", snapshot.Meeting).Warn("Tracker archive write failed")
		}
		if len(ledger) > 0 {
			if err := s.archive.SaveLedger(ctx, ledger); err != nil {
				s.logger.WithError(err).WithField("meeting", snapshot.Meeting).Warn("Points ledger write failed")
			}
		}
	}()
}

func validMargin(meeting string, margin float64) error {
	if margin < models.MinMargin || margin > models.MaxMargin {
		return models.NewStoreError(meeting, models.ErrInvalidMargin,
			"margin %.2f outside [%.2f, %.2f]", margin, models.MinMargin, models.MaxMargin)
	}
	return nil
}
