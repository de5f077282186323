// Package pricing converts between decimal prices, implied probabilities
// and margin-adjusted fair prices, and tiers the resulting edge.
package pricing

import "math"

// MinFieldSize is the smallest number of validly priced participants a
// field needs before fair prices are defined. Below this, normalization
// is meaningless and every participant is excluded from classification.
const MinFieldSize = 2

// ImpliedProbability converts a decimal price to its implied win
// probability. Prices at or below zero yield zero, never a division
// fault.
func ImpliedProbability(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return 1.0 / price
}

// NormalizeProbabilities rescales raw implied probabilities so they sum
// to exactly one, stripping the bookmaker's aggregate overround. Zero
// entries (missing or withdrawn prices) are excluded from the sum and
// stay zero in the output. If fewer than MinFieldSize entries are valid
// the field is undefined and ok is false.
func NormalizeProbabilities(raw []float64) (fair []float64, ok bool) {
	total := 0.0
	valid := 0
	for _, p := range raw {
		if p > 0 {
			total += p
			valid++
		}
	}
	fair = make([]float64, len(raw))
	if valid < MinFieldSize || total <= 0 {
		return fair, false
	}
	for i, p := range raw {
		if p > 0 {
			fair[i] = p / total
		}
	}
	return fair, true
}

// FairPrice converts a normalized win probability into a modeled fair
// price under the configured market margin. A margin of 1.00 gives true
// odds; higher margins inflate the price the model demands before a
// quote counts as value.
func FairPrice(fairProbability, margin float64) float64 {
	if fairProbability <= 0 {
		return 0
	}
	return margin / fairProbability
}

// Edge returns the percentage by which the best market price beats the
// modeled fair price, rounded to one decimal place.
func Edge(bestPrice, fairPrice float64) float64 {
	if fairPrice <= 0 {
		return 0
	}
	return math.Round((bestPrice-fairPrice)/fairPrice*1000) / 10
}
