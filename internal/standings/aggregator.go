// Package standings replays an ordered race-result history into a ranked
// challenge leaderboard.
package standings

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/points"
)

// Aggregate replays history into a sorted leaderboard. It is a pure
// function: the same history and roster always produce identical output,
// which lets the store recompute from scratch after every submission
// instead of patching incrementally.
//
// roster seeds participants known before any race (registered from odds
// feeds); names appearing only in results are added as they are seen.
func Aggregate(history []models.RaceResultEntry, roster []models.Participant, totalRaces int) []models.Standing {
	acc := make(map[string]*models.Standing)
	order := make([]string, 0, len(roster))

	register := func(key, name string) *models.Standing {
		if s, ok := acc[key]; ok {
			return s
		}
		s := &models.Standing{
			Key:            key,
			Name:           name,
			Points:         decimal.Zero,
			LastRacePoints: decimal.Zero,
		}
		acc[key] = s
		order = append(order, key)
		return s
	}

	for _, p := range roster {
		register(p.Key, p.DisplayName)
	}

	for _, race := range history {
		applyRace(race, acc, register)
	}

	standings := make([]models.Standing, 0, len(order))
	racesDone := len(history)
	for _, key := range order {
		s := acc[key]
		s.RidesCompleted = racesDone
		s.RidesLeft = totalRaces - racesDone
		if s.RidesLeft < 0 {
			s.RidesLeft = 0
		}
		standings = append(standings, *s)
	}

	rank(standings)
	return standings
}

// applyRace folds one race into the accumulator. Dead heats share a rank
// slot in the entry; the group's award comes from its logical slot, which
// shifts past the slots consumed by earlier groups.
func applyRace(race models.RaceResultEntry, acc map[string]*models.Standing, register func(key, name string) *models.Standing) {
	// Reset last-race contribution for everyone; only this race's
	// finishers overwrite it below.
	for _, s := range acc {
		s.LastRacePoints = decimal.Zero
	}

	groups := make(map[int][]models.Finisher)
	for _, f := range race.Finishers {
		groups[f.Position] = append(groups[f.Position], f)
	}

	logicalSlot := 1
	for _, slot := range race.Slots() {
		members := groups[slot]
		award := points.For(logicalSlot, len(members))
		for _, f := range members {
			s := register(f.Key(), f.Name)
			s.Points = s.Points.Add(award)
			s.LastRacePoints = award
			countPlacing(s, slot)
		}
		logicalSlot = points.NextSlot(logicalSlot, len(members))
	}
}

// countPlacing increments the win/second/third counter for the shared
// rank slot. Every member of a tied group gets the counter: a two-way
// dead heat for first is a win for both.
func countPlacing(s *models.Standing, slot int) {
	switch slot {
	case 1:
		s.Wins++
	case 2:
		s.Seconds++
	case 3:
		s.Thirds++
	}
}

// rank sorts standings into leaderboard order and assigns ranks and
// leader flags. Order is points descending, then wins descending, then
// participant key ascending so ties resolve deterministically. Everyone
// matching the top entry on both points and wins is flagged leader;
// a genuinely shared lead shows as multiple leaders rather than an
// arbitrary pick.
func rank(standings []models.Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		if c := standings[i].Points.Cmp(standings[j].Points); c != 0 {
			return c > 0
		}
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].Key < standings[j].Key
	})

	for i := range standings {
		standings[i].Rank = i + 1
		standings[i].IsLeader = false
	}
	if len(standings) == 0 {
		return
	}
	top := standings[0]
	for i := range standings {
		if standings[i].Points.Equal(top.Points) && standings[i].Wins == top.Wins {
			standings[i].IsLeader = true
		} else {
			break
		}
	}
}

// ValidateEntry checks a race result before it joins a history: at least
// three distinct finishers, no duplicate participants, and contiguous
// rank slots starting at 1 with each dead-heat group occupying a single
// slot.
func ValidateEntry(entry models.RaceResultEntry) error {
	const minFinishers = 3

	seen := make(map[string]bool)
	for _, f := range entry.Finishers {
		key := f.Key()
		if key == "" {
			return fmt.Errorf("race %d: empty participant name: %w", entry.RaceNumber, models.ErrInvalidRace)
		}
		if seen[key] {
			return fmt.Errorf("race %d: duplicate finisher %s: %w", entry.RaceNumber, key, models.ErrInvalidRace)
		}
		seen[key] = true
	}
	if len(seen) < minFinishers {
		return fmt.Errorf("race %d: need at least %d distinct finishers, got %d: %w", entry.RaceNumber, minFinishers, len(seen), models.ErrInvalidRace)
	}

	for i, slot := range entry.Slots() {
		if slot != i+1 {
			return fmt.Errorf("race %d: rank slots must be contiguous from 1: %w", entry.RaceNumber, models.ErrInvalidRace)
		}
	}
	return nil
}
