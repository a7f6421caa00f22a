package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapCondComparisonsAreInclusive(t *testing.T) {
	// Both bounds must be non-strict: a stay touching another stay's
	// boundary counts as a conflict.
	assert.Contains(t, overlapCond, "check_in <= ?")
	assert.Contains(t, overlapCond, "check_out >= ?")
	assert.Contains(t, overlapCond, "status <> 'cancelled'")
}

func TestOverlapArgsBindNewStayReversed(t *testing.T) {
	checkIn := day(2026, 9, 10)
	checkOut := day(2026, 9, 12)

	args := overlapArgs(7, 2, checkIn, checkOut)

	require.Len(t, args, 4)
	assert.Equal(t, uint64(7), args[0])
	assert.Equal(t, uint64(2), args[1])
	// stored check_in is compared to the NEW check-out, and stored
	// check_out to the NEW check-in
	assert.Equal(t, checkOut, args[2])
	assert.Equal(t, checkIn, args[3])
}

// evalOverlap applies overlapCond the way MySQL will, with the stored
// stay's dates on the left and the bound arguments on the right.
func evalOverlap(t *testing.T, storedIn, storedOut, newIn, newOut time.Time) bool {
	t.Helper()
	args := overlapArgs(7, 2, newIn, newOut)
	boundToCheckIn := args[2].(time.Time)
	boundToCheckOut := args[3].(time.Time)
	return !storedIn.After(boundToCheckIn) && !storedOut.Before(boundToCheckOut)
}

func TestOverlapPredicateBoundaries(t *testing.T) {
	storedIn := day(2026, 9, 10)
	storedOut := day(2026, 9, 12)

	cases := []struct {
		name           string
		newIn, newOut  time.Time
		wantConflicted bool
	}{
		{"identical range", day(2026, 9, 10), day(2026, 9, 12), true},
		{"contained inside", day(2026, 9, 10), day(2026, 9, 11), true},
		{"surrounds stored", day(2026, 9, 8), day(2026, 9, 20), true},
		{"partial overlap at start", day(2026, 9, 8), day(2026, 9, 10), true},
		{"partial overlap at end", day(2026, 9, 12), day(2026, 9, 14), true},
		{"back-to-back after stored", day(2026, 9, 12), day(2026, 9, 13), true},
		{"back-to-back before stored", day(2026, 9, 9), day(2026, 9, 10), true},
		{"clear before stored", day(2026, 9, 1), day(2026, 9, 5), false},
		{"clear after stored", day(2026, 9, 13), day(2026, 9, 15), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evalOverlap(t, storedIn, storedOut, tc.newIn, tc.newOut)
			assert.Equal(t, tc.wantConflicted, got)
		})
	}
}
