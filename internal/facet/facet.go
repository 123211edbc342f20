// Package facet derives filter options from a search result set.
package facet

import (
	"slices"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

// Derive scans the full, unpaginated rows and returns the distinct non-empty
// value of every facet dimension, sorted ascending, plus the observed price
// range. An empty input yields empty lists and a zero range.
func Derive(rows []domain.SearchResultRow) domain.FacetOptions {
	categories := newValueSet()
	metals := newValueSet()
	styles := newValueSet()
	shapes := newValueSet()
	gemstoneTypes := newValueSet()

	var pr domain.PriceRange
	for i := range rows {
		r := &rows[i]
		categories.add(r.Category)
		metals.add(r.Metal)
		styles.add(r.Style)
		shapes.add(r.Shape)
		gemstoneTypes.add(r.GemstoneType)

		if i == 0 || r.Price < pr.Min {
			pr.Min = r.Price
		}
		if i == 0 || r.Price > pr.Max {
			pr.Max = r.Price
		}
	}

	return domain.FacetOptions{
		Categories:    categories.sorted(),
		Metals:        metals.sorted(),
		Styles:        styles.sorted(),
		Shapes:        shapes.sorted(),
		GemstoneTypes: gemstoneTypes.sorted(),
		PriceRange:    pr,
	}
}

type valueSet map[string]struct{}

func newValueSet() valueSet { return make(valueSet) }

func (s valueSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s valueSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
