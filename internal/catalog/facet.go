// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
	"github.com/dentuss/Bazinga-Comics/pkg/slice"
)

// # Facets

// FacetType names a filterable catalog dimension.
type FacetType string

const (
	FacetNone      FacetType = "none"
	FacetSeries    FacetType = "series"
	FacetCharacter FacetType = "character"
	FacetCreator   FacetType = "creator"
)

// Sentinel options prepended to each facet list. Selecting one clears the facet.
const (
	AllSeries     = "All Series"
	AllCharacters = "All Characters"
	AllCreators   = "All Creators"
)

// FacetSelection is the facet currently picked in the UI.
type FacetSelection struct {
	Type  FacetType `json:"type"`
	Value string    `json:"value"`
}

// NoFacet is the inert selection.
var NoFacet = FacetSelection{Type: FacetNone}

// Active reports whether the selection narrows the catalog. Blank values and
// values starting with "All" (the sentinels) match everything.
func (s FacetSelection) Active() bool {
	switch s.Type {
	case FacetSeries, FacetCharacter, FacetCreator:
	default:
		return false
	}
	value := strings.TrimSpace(s.Value)
	return value != "" && !strings.HasPrefix(value, "All")
}

// field extracts the facet's value from a comic.
func (t FacetType) field(comic Comic) string {
	switch t {
	case FacetSeries:
		return pointer.Val(comic.Series)
	case FacetCharacter:
		return pointer.Val(comic.MainCharacter)
	case FacetCreator:
		return pointer.Val(comic.Author)
	default:
		return ""
	}
}

// Facets holds the option lists shown in the browse filters.
type Facets struct {
	Series     []string `json:"series"`
	Characters []string `json:"characters"`
	Creators   []string `json:"creators"`
}

// BuildFacets collects the distinct non-blank values of each facet, sorted,
// each list headed by its "All" sentinel.
func BuildFacets(comics []Comic) Facets {
	return Facets{
		Series:     facetOptions(comics, FacetSeries, AllSeries),
		Characters: facetOptions(comics, FacetCharacter, AllCharacters),
		Creators:   facetOptions(comics, FacetCreator, AllCreators),
	}
}

func facetOptions(comics []Comic, facet FacetType, sentinel string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0, len(comics))

	for _, comic := range comics {
		value := facet.field(comic)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}

	sort.Strings(values)
	return append([]string{sentinel}, values...)
}

// # Filtering

// Query is the filter state of the browse screen.
type Query struct {
	Search      string         `json:"search"`
	Facet       FacetSelection `json:"facet"`
	DigitalOnly bool           `json:"digitalOnly"`
}

// IsFiltered reports whether any filter is in effect.
func (q Query) IsFiltered() bool {
	return strings.TrimSpace(q.Search) != "" || q.DigitalOnly || q.Facet.Active()
}

// DigitalExclusive returns the ONLY_DIGITAL comics in catalog order.
func DigitalExclusive(comics []Comic) []Comic {
	return orEmpty(slice.Filter(comics, Comic.IsDigitalExclusive))
}

// Filter applies the digital-only switch, the free-text search and the facet
// selection, in that order. Catalog order is preserved.
func Filter(comics []Comic, query Query) []Comic {
	matches := comics
	if query.DigitalOnly {
		matches = DigitalExclusive(comics)
	}

	// Casers carry state, so each call gets its own.
	folder := cases.Fold()

	if needle := strings.TrimSpace(query.Search); needle != "" {
		needle = folder.String(needle)
		matches = slice.Filter(matches, func(comic Comic) bool {
			for _, field := range searchableFields(comic) {
				if strings.Contains(folder.String(field), needle) {
					return true
				}
			}
			return false
		})
	}

	if query.Facet.Active() {
		facet := query.Facet
		want := strings.TrimSpace(facet.Value)
		matches = slice.Filter(matches, func(comic Comic) bool {
			got := facet.Type.field(comic)
			if facet.Type == FacetCreator {
				return folder.String(got) == folder.String(want)
			}
			return got == want
		})
	}

	return orEmpty(matches)
}

func searchableFields(comic Comic) []string {
	return []string{
		comic.Title,
		pointer.Val(comic.Author),
		pointer.Val(comic.Series),
		pointer.Val(comic.MainCharacter),
	}
}

// # Views

// Sections are the fixed home-screen rails shown when nothing is filtered.
type Sections struct {
	NewArrivals  []Comic `json:"newArrivals"`
	DigitalReads []Comic `json:"digitalReads"`
	All          []Comic `json:"all"`
}

// View is what the browse screen renders: either filter results or sections.
type View struct {
	Filtered bool      `json:"filtered"`
	Results  []Comic   `json:"results,omitempty"`
	Sections *Sections `json:"sections,omitempty"`
}

// Browse builds the browse view for a catalog snapshot and filter state.
func Browse(comics []Comic, query Query) View {
	if query.IsFiltered() {
		return View{Filtered: true, Results: Filter(comics, query)}
	}

	digital := DigitalExclusive(comics)
	if len(digital) > constants.DigitalReadsLimit {
		digital = digital[:constants.DigitalReadsLimit]
	}

	return View{
		Sections: &Sections{
			NewArrivals:  NewArrivals(comics, constants.NewArrivalsLimit),
			DigitalReads: digital,
			All:          orEmpty(comics),
		},
	}
}

// NewArrivals returns up to limit comics, newest first. Ties (including
// every comic without a usable timestamp) keep catalog order.
func NewArrivals(comics []Comic, limit int) []Comic {
	sorted := make([]Comic, len(comics))
	copy(sorted, comics)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedTime().After(sorted[j].CreatedTime())
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func orEmpty(comics []Comic) []Comic {
	if comics == nil {
		return []Comic{}
	}
	return comics
}
