// Package pricing derives a reservation's cost from its stay length and
// the room's nightly rate.
package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// Nights returns the whole-day difference between check-in and check-out,
// rounded to the nearest day and clamped at zero. Callers must reject
// inverted date ranges themselves; the clamp only guarantees the result
// is never negative.
func Nights(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn).Hours() / hoursPerDay

	nights := int(math.Round(diff))
	if nights < 0 {
		return 0
	}

	return nights
}

// Total multiplies the nightly rate by the number of nights and rounds
// half-up to two decimal places.
func Total(nights int, nightlyRate decimal.Decimal) decimal.Decimal {
	return nightlyRate.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}
