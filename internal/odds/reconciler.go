// Package odds merges per-bookmaker price quotes into a single market
// view per participant and caches the latest raw sheets.
package odds

import (
	"sort"

	"github.com/yourusername/challenge-tracker/internal/models"
	"github.com/yourusername/challenge-tracker/internal/pricing"
)

// Movement thresholds in price points, matching the drift/firm bands the
// odds history view has always used.
const movementBand = 0.5

// Reconciler merges quote sheets. Source priority is fixed at
// construction so tied best prices resolve the same way every run.
type Reconciler struct {
	priority []models.Source
}

// NewReconciler creates a reconciler with the given source tie-break
// order. An empty priority falls back to the default bookmaker order.
func NewReconciler(priority []models.Source) *Reconciler {
	if len(priority) == 0 {
		priority = models.DefaultSourcePriority
	}
	return &Reconciler{priority: priority}
}

// Merge reconciles a sheet into one MergedOdds per participant, sorted by
// participant key. The input is never mutated and identical input yields
// identical output. opening maps participant key to the first best price
// seen for the meeting; pass nil when no earlier merge exists.
func (r *Reconciler) Merge(sheet *models.QuoteSheet, margin float64, opening map[string]float64) []models.MergedOdds {
	if sheet == nil {
		return nil
	}

	keys := make([]string, 0, len(sheet.Quotes))
	for key := range sheet.Quotes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make([]models.MergedOdds, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, r.mergeParticipant(key, sheet))
	}

	r.applyFairPrices(merged, margin)
	applyMovement(merged, opening)
	return merged
}

// mergeParticipant picks the best present price for one participant.
// Quotes at or below 1.0 are withdrawn or absent markets and never win.
// A strictly greater price replaces the best; on equal prices the source
// earlier in the priority order keeps it.
func (r *Reconciler) mergeParticipant(key string, sheet *models.QuoteSheet) models.MergedOdds {
	quotes := sheet.Quotes[key]
	m := models.MergedOdds{
		Key:    key,
		Name:   sheet.Names[key],
		Prices: make(map[models.Source]float64, len(quotes)),
		Tier:   models.TierNone,
	}
	if m.Name == "" {
		m.Name = key
	}

	for _, source := range r.orderedSources(quotes) {
		price := quotes[source]
		m.Prices[source] = price
		if price <= models.MinValidPrice {
			continue
		}
		if price > m.BestPrice {
			m.BestPrice = price
			m.BestSource = source
		}
	}
	return m
}

// orderedSources lists the participant's quoted sources in tie-break
// order: the configured priority first, then any remaining sources
// alphabetically. A feed missing from the priority list still competes
// for best price; it only loses ties.
func (r *Reconciler) orderedSources(quotes map[models.Source]float64) []models.Source {
	ordered := make([]models.Source, 0, len(quotes))
	seen := make(map[models.Source]bool, len(quotes))
	for _, source := range r.priority {
		if _, ok := quotes[source]; ok && !seen[source] {
			ordered = append(ordered, source)
			seen[source] = true
		}
	}
	rest := make([]models.Source, 0, len(quotes))
	for source := range quotes {
		if !seen[source] {
			rest = append(rest, source)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ordered, rest...)
}

// applyFairPrices normalizes the field's implied probabilities, derives
// each fair price from the margin and classifies the edge. When fewer
// than two participants carry a valid price the whole field is excluded:
// fair prices are undefined and every entry reports insufficient data.
func (r *Reconciler) applyFairPrices(merged []models.MergedOdds, margin float64) {
	raw := make([]float64, len(merged))
	for i := range merged {
		if merged[i].HasPrice() {
			raw[i] = pricing.ImpliedProbability(merged[i].BestPrice)
		}
	}

	fair, ok := pricing.NormalizeProbabilities(raw)
	if !ok {
		for i := range merged {
			merged[i].Insufficient = true
		}
		return
	}

	for i := range merged {
		if fair[i] <= 0 {
			merged[i].Insufficient = true
			continue
		}
		merged[i].FairPrice = pricing.FairPrice(fair[i], margin)
		merged[i].Edge = pricing.Edge(merged[i].BestPrice, merged[i].FairPrice)
		merged[i].Tier = pricing.Classify(merged[i].Edge)
		merged[i].Value = merged[i].Edge > 0
	}
}

// applyMovement classifies best-price drift against the opening price.
func applyMovement(merged []models.MergedOdds, opening map[string]float64) {
	for i := range merged {
		m := &merged[i]
		open := m.BestPrice
		if prev, ok := opening[m.Key]; ok && prev > 0 {
			open = prev
		}
		mv := models.Movement{Opening: open, Direction: models.MovementStable}
		if m.HasPrice() && open > 0 {
			mv.Change = m.BestPrice - open
			mv.PctChange = mv.Change / open * 100
			switch {
			case mv.Change > movementBand:
				mv.Direction = models.MovementDrifting
			case mv.Change < -movementBand:
				mv.Direction = models.MovementFirming
			}
		}
		m.Movement = mv
	}
}
