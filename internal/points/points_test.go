package points

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	assert.True(t, Base(1).Equal(decimal.NewFromInt(3)))
	assert.True(t, Base(2).Equal(decimal.NewFromInt(2)))
	assert.True(t, Base(3).Equal(decimal.NewFromInt(1)))
	assert.True(t, Base(4).IsZero())
	assert.True(t, Base(0).IsZero())
}

func TestFor(t *testing.T) {
	tests := []struct {
		name      string
		position  int
		groupSize int
		expected  string
	}{
		{"outright win", 1, 1, "3"},
		{"outright second", 2, 1, "2"},
		{"outright third", 3, 1, "1"},
		{"fourth scores nothing", 4, 1, "0"},
		{"two-way dead heat for first", 1, 2, "1.5"},
		{"three-way dead heat for first", 1, 3, "1"},
		{"two-way dead heat for second", 2, 2, "1"},
		{"two-way dead heat for third", 3, 2, "0.5"},
		{"three-way dead heat for third", 3, 3, "0.3333333333333333"},
		{"invalid position", 0, 1, "0"},
		{"invalid group size", 1, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, err := decimal.NewFromString(tt.expected)
			assert.NoError(t, err)
			got := For(tt.position, tt.groupSize)
			assert.True(t, got.Equal(expected), "For(%d,%d) = %s, want %s", tt.position, tt.groupSize, got, expected)
		})
	}
}

func TestForDeadHeatSplitsSumToBase(t *testing.T) {
	// An n-way dead heat pays each member base/n. Non-terminating shares
	// (thirds) are truncated at decimal.DivisionPrecision, so the group
	// total is checked within that precision rather than exactly.
	tolerance := decimal.New(1, -12)
	for position := 1; position <= 3; position++ {
		for n := 2; n <= 4; n++ {
			share := For(position, n)
			total := share.Mul(decimal.NewFromInt(int64(n)))
			diff := total.Sub(Base(position)).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"position %d group %d: total %s != base %s", position, n, total, Base(position))
		}
	}
}

func TestNextSlot(t *testing.T) {
	// A 2-way dead heat at slot 1 consumes slots 1 and 2.
	assert.Equal(t, 3, NextSlot(1, 2))
	assert.Equal(t, 2, NextSlot(1, 1))
	assert.Equal(t, 4, NextSlot(1, 3))
	assert.Equal(t, 5, NextSlot(3, 2))
	assert.Equal(t, 2, NextSlot(1, 0))
}

func TestRaceTotal(t *testing.T) {
	assert.True(t, RaceTotal().Equal(decimal.NewFromInt(6)))
}
