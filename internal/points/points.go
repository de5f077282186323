// Package points awards challenge points for race finishing positions,
// including dead-heat splitting.
package points

import "github.com/shopspring/decimal"

// Base points per rank slot: 1st=3, 2nd=2, 3rd=1, nothing below.
var baseTable = map[int]int64{
	1: 3,
	2: 2,
	3: 1,
}

// Base returns the whole-number points for a rank slot.
func Base(position int) decimal.Decimal {
	return decimal.NewFromInt(baseTable[position])
}

// For returns the points one participant earns for finishing at the given
// rank slot in a dead-heat group of the given size. Each member of an
// n-way dead heat receives base(position)/n; fractions are kept exact and
// never rounded in stored state.
//
// Slot consumption: a dead heat occupies as many logical slots as it has
// members, so a 2-way dead heat at slot 1 leaves the next finisher at
// slot 3, not slot 2. Callers walk slots with NextSlot.
func For(position, groupSize int) decimal.Decimal {
	if position < 1 || groupSize < 1 {
		return decimal.Zero
	}
	base := Base(position)
	if groupSize == 1 {
		return base
	}
	return base.Div(decimal.NewFromInt(int64(groupSize)))
}

// NextSlot returns the logical rank slot following a group of the given
// size at the given slot.
func NextSlot(position, groupSize int) int {
	if groupSize < 1 {
		groupSize = 1
	}
	return position + groupSize
}

// RaceTotal is the maximum points a race with no dead heat pays out
// across all placings (3+2+1).
func RaceTotal() decimal.Decimal {
	return decimal.NewFromInt(6)
}
