package money

import (
	"math"
	"strconv"
	"strings"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// maxUnits is the largest integer part that still fits in minor units.
const maxUnits = (math.MaxInt64 - 99) / 100

// Parse converts a textual amount as received from the backend (or typed by a
// waiter) into minor units. Invalid, empty, or missing input yields 0; Parse
// never fails. Fractions beyond two digits round half-up.
func Parse(text string) Money {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	negative := false
	switch trimmed[0] {
	case '-':
		negative = true
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}

	intPart := trimmed
	fracPart := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		intPart = trimmed[:idx]
		fracPart = trimmed[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0
	}

	var units int64
	if intPart != "" {
		parsed, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0
		}
		units = parsed
	}
	if units > maxUnits {
		// units*100 would wrap past MaxInt64
		return 0
	}

	cents := fracCents(fracPart)
	total := units*100 + cents
	if negative {
		return -total
	}
	return total
}

// Format renders the amount with exactly two fractional digits for display.
func Format(amount Money) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + strconv.FormatInt(amount/100, 10) + "." + pad2(amount%100)
}

func fracCents(frac string) int64 {
	if frac == "" {
		return 0
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0
	}
	// third digit decides the half-up rounding
	if frac[2] >= '5' {
		cents++
	}
	return cents
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
