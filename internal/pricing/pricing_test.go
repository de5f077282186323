package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/challenge-tracker/internal/models"
)

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.5, ImpliedProbability(2.0), 1e-12)
	assert.InDelta(t, 0.25, ImpliedProbability(4.0), 1e-12)
	assert.InDelta(t, 1.0, ImpliedProbability(1.0), 1e-12)
	assert.Zero(t, ImpliedProbability(0))
	assert.Zero(t, ImpliedProbability(-3.5))
}

func TestNormalizeProbabilities(t *testing.T) {
	t.Run("strips overround", func(t *testing.T) {
		// A typical book: prices 2.0, 3.0, 4.0 imply 0.5+0.333+0.25 > 1.
		raw := []float64{
			ImpliedProbability(2.0),
			ImpliedProbability(3.0),
			ImpliedProbability(4.0),
		}
		fair, ok := NormalizeProbabilities(raw)
		require.True(t, ok)

		sum := 0.0
		for _, p := range fair {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)

		// Relative ordering is preserved.
		assert.Greater(t, fair[0], fair[1])
		assert.Greater(t, fair[1], fair[2])
	})

	t.Run("zero entries stay zero", func(t *testing.T) {
		raw := []float64{0.5, 0, 0.25}
		fair, ok := NormalizeProbabilities(raw)
		require.True(t, ok)
		assert.Zero(t, fair[1])
		assert.InDelta(t, 1.0, fair[0]+fair[2], 1e-9)
	})

	t.Run("single valid price is undefined", func(t *testing.T) {
		fair, ok := NormalizeProbabilities([]float64{0.5, 0, 0})
		assert.False(t, ok)
		for _, p := range fair {
			assert.Zero(t, p)
		}
	})

	t.Run("empty field is undefined", func(t *testing.T) {
		fair, ok := NormalizeProbabilities(nil)
		assert.False(t, ok)
		assert.Empty(t, fair)
	})

	t.Run("all zero is undefined", func(t *testing.T) {
		_, ok := NormalizeProbabilities([]float64{0, 0, 0})
		assert.False(t, ok)
	})
}

func TestFairPrice(t *testing.T) {
	// At margin 1.00 a probability of exactly 0.5 prices at evens.
	assert.InDelta(t, 2.0, FairPrice(0.5, 1.0), 1e-12)
	// The default jockey-challenge margin of 1.30 inflates the same
	// probability to 2.6.
	assert.InDelta(t, 2.6, FairPrice(0.5, 1.3), 1e-12)
	assert.Zero(t, FairPrice(0, 1.3))
	assert.Zero(t, FairPrice(-0.1, 1.3))
}

func TestFairPriceRoundTrip(t *testing.T) {
	// fairPrice(margin/p) composed with impliedProbability recovers p/margin.
	p := 0.4
	margin := 1.25
	price := FairPrice(p, margin)
	assert.InDelta(t, p/margin, ImpliedProbability(price), 1e-12)
}

func TestEdge(t *testing.T) {
	tests := []struct {
		name      string
		bestPrice float64
		fairPrice float64
		expected  float64
	}{
		{"value price", 5.5, 5.0, 10.0},
		{"no value", 4.5, 5.0, -10.0},
		{"exact fair", 5.0, 5.0, 0.0},
		{"rounds to one decimal", 3.0, 2.85, 5.3},
		{"undefined fair price", 5.0, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Edge(tt.bestPrice, tt.fairPrice), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		edge     float64
		expected models.ValueTier
	}{
		{-5.0, models.TierNone},
		{0.0, models.TierNone},
		{0.1, models.TierMild},
		{9.9, models.TierMild},
		{10.0, models.TierGood},
		{19.9, models.TierGood},
		{20.0, models.TierHot},
		{45.0, models.TierHot},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.edge), "edge %.1f", tt.edge)
	}
}
