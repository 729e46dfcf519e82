package entities

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber coerces spreadsheet text to a number. Blank, non-numeric and
// out-of-range text reports ok=false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if !IsFinite(v) {
		return 0, false
	}
	return v, true
}

// NumberOrZero is ParseNumber with non-numeric text read as 0.
func NumberOrZero(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}

// ParseOptionalNumber returns nil for text that is not a number.
func ParseOptionalNumber(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteOrZero replaces NaN and ±Inf with 0.
func FiniteOrZero(v float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	return v
}

// Round2 rounds half-to-even to two decimals. Non-finite values are returned
// unchanged.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}
