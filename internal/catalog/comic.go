// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package catalog defines the comic entity of the storefront and the pure
facet engine that turns a raw catalog snapshot into browsable views.

Core Responsibility:

  - Model: the [Comic] as served by GET /api/comics.
  - Facets: series, character and creator option lists with their "All"
    sentinels.
  - Views: search/facet/digital-only filtering and the unfiltered home
    sections (new arrivals, digital reads, everything).

Everything except [Service] is a synchronous pure function over an
in-memory snapshot.
*/
package catalog

import (
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// DefaultBasePrice is the base price of a comic that carries no explicit price.
const DefaultBasePrice = 4.99

// # Domain Enums

// ComicType tells whether a comic also exists in print.
type ComicType string

const (
	// TypePhysicalCopy can be bought as an original print or as a digital copy.
	TypePhysicalCopy ComicType = "PHYSICAL_COPY"

	// TypeOnlyDigital is a digital exclusive.
	TypeOnlyDigital ComicType = "ONLY_DIGITAL"
)

// IsDigitalExclusive reports whether t forbids print purchases.
func (t ComicType) IsDigitalExclusive() bool {
	return strings.EqualFold(string(t), string(TypeOnlyDigital))
}

// # Domain Entities

// Category is the genre bucket a comic belongs to.
type Category struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Condition grades a print copy ("Near Mint", "Good", ...).
type Condition struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// Comic is a catalog entry. Optional fields are pointers so an absent value
// stays distinguishable from an empty one.
type Comic struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        *string    `json:"author,omitempty"`
	Description   *string    `json:"description,omitempty"`
	MainCharacter *string    `json:"mainCharacter,omitempty"`
	Series        *string    `json:"series,omitempty"`
	Image         *string    `json:"image,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	Isbn          *string    `json:"isbn,omitempty"`
	PublishedYear *int       `json:"publishedYear,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	Condition     *Condition `json:"condition,omitempty"`
	ComicType     ComicType  `json:"comicType,omitempty"`
	Redacted      bool       `json:"redacted,omitempty"`
	CreatedAt     *string    `json:"createdAt,omitempty"`
	UpdatedAt     *string    `json:"updatedAt,omitempty"`
}

// BasePrice returns the comic's price, defaulting to [DefaultBasePrice].
func (c Comic) BasePrice() float64 {
	return pointer.Fallback(c.Price, DefaultBasePrice)
}

// IsDigitalExclusive reports whether the comic is ONLY_DIGITAL.
func (c Comic) IsDigitalExclusive() bool {
	return c.ComicType.IsDigitalExclusive()
}

// CreatedTime parses CreatedAt. Missing or unparsable values yield the epoch.
func (c Comic) CreatedTime() time.Time {
	return ParseInstant(pointer.Val(c.CreatedAt))
}

// CategoryName returns the category name or "".
func (c Comic) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

// # Timestamps

// instantLayouts are tried in order. Zone-less layouts are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant reads an ISO-like timestamp. Blank or unparsable input
// returns the Unix epoch, so such comics sort as the oldest possible.
func ParseInstant(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Unix(0, 0).UTC()
}
