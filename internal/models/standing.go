package models

import "github.com/shopspring/decimal"

// Standing is one participant's accumulated position in the challenge.
// It is derived purely from the replayed race history and never mutated
// in place. Points use decimal arithmetic so dead-heat fractions stay
// exact across replays.
type Standing struct {
	Key            string          `json:"key"`
	Name           string          `json:"name"`
	Points         decimal.Decimal `json:"points"`
	RidesCompleted int             `json:"rides_done"`
	RidesLeft      int             `json:"rides_left"`
	Wins           int             `json:"wins"`
	Seconds        int             `json:"seconds"`
	Thirds         int             `json:"thirds"`
	LastRacePoints decimal.Decimal `json:"last_race_points"`
	IsLeader       bool            `json:"is_leader"`
	Rank           int             `json:"rank"`
}
