// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package pricing

import "strings"

// BillingCycle is how often a subscription renews.
type BillingCycle string

const (
	Monthly BillingCycle = "MONTHLY"
	Yearly  BillingCycle = "YEARLY"
)

// ParseBillingCycle normalizes a cycle; ok is false for unknown values.
func ParseBillingCycle(raw string) (BillingCycle, bool) {
	switch cycle := BillingCycle(strings.ToUpper(strings.TrimSpace(raw))); cycle {
	case Monthly, Yearly:
		return cycle, true
	default:
		return "", false
	}
}

// planPrices lists the subscription price for each tier and cycle.
var planPrices = map[Tier]map[BillingCycle]float64{
	TierPremium:   {Monthly: 4.99, Yearly: 49.99},
	TierUnlimited: {Monthly: 14.99, Yearly: 159.99},
}

// PlanPrice returns the subscription price of a tier; ok is false for
// [TierNone] or an unknown cycle.
func PlanPrice(tier Tier, cycle BillingCycle) (float64, bool) {
	price, ok := planPrices[tier][cycle]
	return price, ok
}
