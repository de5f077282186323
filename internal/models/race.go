package models

import (
	"sort"
	"time"
)

// Finisher is one scored runner in a race result. Position is a rank
// slot, not a raw finishing index: finishers sharing a slot form a dead
// heat, and slots are contiguous starting at 1.
type Finisher struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
}

// Key returns the finisher's normalized identity key.
func (f Finisher) Key() string {
	return ParticipantKey(f.Name)
}

// RaceResultEntry is a single race outcome in a meeting's ordered history.
type RaceResultEntry struct {
	RaceNumber int        `json:"race"`
	Finishers  []Finisher `json:"results"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// DeadHeats returns the rank slots shared by more than one finisher,
// mapped to group size.
func (r *RaceResultEntry) DeadHeats() map[int]int {
	counts := make(map[int]int)
	for _, f := range r.Finishers {
		counts[f.Position]++
	}
	heats := make(map[int]int)
	for pos, n := range counts {
		if n > 1 {
			heats[pos] = n
		}
	}
	return heats
}

// Slots returns the distinct rank slots present, ascending.
func (r *RaceResultEntry) Slots() []int {
	seen := make(map[int]bool)
	for _, f := range r.Finishers {
		seen[f.Position] = true
	}
	slots := make([]int, 0, len(seen))
	for pos := range seen {
		slots = append(slots, pos)
	}
	sort.Ints(slots)
	return slots
}
