// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package pricing

import (
	"fmt"
	"math"
)

// FreeWithUnlimited replaces "$0.00" wherever a price is shown.
const FreeWithUnlimited = "FREE WITH UNLIMITED"

// Format renders an amount as dollars with two decimals. This is the only
// place amounts are rounded.
func Format(amount float64) string {
	// Round half away from zero at the cent, then let fmt print exactly.
	cents := math.Round(amount * 100)
	if cents == 0 {
		cents = 0 // normalize -0
	}
	return fmt.Sprintf("$%.2f", cents/100)
}

// Label renders a unit price for display. A price of exactly zero reads
// [FreeWithUnlimited].
func Label(amount float64) string {
	if amount == 0 {
		return FreeWithUnlimited
	}
	return Format(amount)
}
