// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package pricing is the subscription-aware price calculator.

Prices are plain float64 dollars. Internal arithmetic never rounds; rounding
to cents happens only in [Format] and [Label], so multi-item totals do not
accumulate rounding error.

Discount table (multiplier of the base price):

	tier       ORIGINAL  DIGITAL
	none       1.00      0.75
	premium    0.50      0.75
	unlimited  0.50      0.00
*/
package pricing

import (
	"strings"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/pkg/slice"
)

// # Domain Enums

// PurchaseType is the format a comic is bought in.
type PurchaseType string

const (
	Original PurchaseType = "ORIGINAL"
	Digital  PurchaseType = "DIGITAL"
)

// ParsePurchaseType normalizes a wire value. Anything but DIGITAL is ORIGINAL.
func ParsePurchaseType(raw string) PurchaseType {
	if strings.EqualFold(strings.TrimSpace(raw), string(Digital)) {
		return Digital
	}
	return Original
}

// Tier is the subscriber tier that drives discounts.
type Tier string

const (
	TierNone      Tier = "NONE"
	TierPremium   Tier = "PREMIUM"
	TierUnlimited Tier = "UNLIMITED"
)

// TierFor maps a subscription type from the session (case-insensitive) to a
// tier. Unknown or empty values are [TierNone].
func TierFor(subscriptionType string) Tier {
	switch Tier(strings.ToUpper(strings.TrimSpace(subscriptionType))) {
	case TierPremium:
		return TierPremium
	case TierUnlimited:
		return TierUnlimited
	default:
		return TierNone
	}
}

// # Unit Prices

// UnitPrice applies the tier discount table to a base price.
func UnitPrice(basePrice float64, purchaseType PurchaseType, tier Tier) float64 {
	switch purchaseType {
	case Digital:
		if tier == TierUnlimited {
			return 0
		}
		return basePrice * 0.75
	default:
		if tier == TierPremium || tier == TierUnlimited {
			return basePrice * 0.5
		}
		return basePrice
	}
}

// EffectivePurchaseType coerces requests for digital exclusives to DIGITAL.
func EffectivePurchaseType(comicType catalog.ComicType, requested PurchaseType) PurchaseType {
	if comicType.IsDigitalExclusive() {
		return Digital
	}
	if requested == Digital {
		return Digital
	}
	return Original
}

// ComicPrice prices a comic in the requested format, after coercion.
func ComicPrice(comic catalog.Comic, requested PurchaseType, tier Tier) float64 {
	return UnitPrice(comic.BasePrice(), EffectivePurchaseType(comic.ComicType, requested), tier)
}

// Option is one purchasable format of a comic with its price.
type Option struct {
	PurchaseType PurchaseType `json:"purchaseType"`
	Price        float64      `json:"price"`
}

// Quote lists the formats a comic is offered in for a tier.
type Quote struct {
	ComicID   int64    `json:"comicId"`
	BasePrice float64  `json:"basePrice"`
	Options   []Option `json:"options"`
}

// QuoteComic returns the offered options. Digital exclusives only offer DIGITAL.
func QuoteComic(comic catalog.Comic, tier Tier) Quote {
	base := comic.BasePrice()
	quote := Quote{ComicID: comic.ID, BasePrice: base}

	if !comic.IsDigitalExclusive() {
		quote.Options = append(quote.Options, Option{PurchaseType: Original, Price: UnitPrice(base, Original, tier)})
	}
	quote.Options = append(quote.Options, Option{PurchaseType: Digital, Price: UnitPrice(base, Digital, tier)})

	return quote
}

// Price returns the price of the given option, and whether it is offered.
func (q Quote) Price(purchaseType PurchaseType) (float64, bool) {
	for _, option := range q.Options {
		if option.PurchaseType == purchaseType {
			return option.Price, true
		}
	}
	return 0, false
}

// # Totals

// Line is a priced quantity, typically a cart item.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Subtotal returns unit × quantity, unrounded.
func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Total sums the subtotals without intermediate rounding.
func Total(lines []Line) float64 {
	return slice.Reduce(lines, 0.0, func(sum float64, line Line) float64 {
		return sum + line.Subtotal()
	})
}
