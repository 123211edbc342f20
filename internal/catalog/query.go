package catalog

import (
	"strings"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
)

// profile describes how a category's documents are searched.
type profile struct {
	category domain.Category

	// aliases are whole queries naming the category itself. They select the
	// category without a text clause.
	aliases map[string]struct{}

	// textFields are matched against the expanded free-text terms.
	textFields []string

	// Facet field names. An empty name means the category does not expose
	// the facet and ignores selections for it.
	styleField        string
	typeField         string
	shapeField        string
	metalField        string
	gemstoneTypeField string
}

func newAliases(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Category returns the category the profile describes.
func (p *profile) Category() domain.Category {
	return p.category
}

// IsAlias reports whether q, trimmed and lowercased, names the category.
func (p *profile) IsAlias(q string) bool {
	_, ok := p.aliases[strings.ToLower(strings.TrimSpace(q))]
	return ok
}

// BuildQuery translates the filter state into a store filter. Metal and price
// selections of variant categories depend on the chosen option and are left
// to expansion.
func (p *profile) BuildQuery(fs domain.FilterState) store.Filter {
	var f store.Filter

	if fs.AvailableOnly {
		f.Equals = append(f.Equals, store.Equal{Field: p.category.AvailabilityField(), Value: true})
	}

	if !p.IsAlias(fs.Query) {
		if terms := ExpandTerms(fs.Query); len(terms) > 0 {
			f.Text = &store.Text{
				Fields:  p.textFields,
				Pattern: Pattern(terms),
				Terms:   terms,
			}
		}
	}

	f.In = appendIn(f.In, p.styleField, fs.Styles)
	f.In = appendIn(f.In, p.typeField, fs.Types)
	f.In = appendIn(f.In, p.shapeField, fs.Shapes)
	f.In = appendIn(f.In, p.gemstoneTypeField, fs.GemstoneTypes)

	if !p.category.HasMetalOptions() {
		f.In = appendIn(f.In, p.metalField, fs.Metals)

		if fs.PriceBounded() {
			minPrice, maxPrice := fs.MinPrice, fs.MaxPrice
			f.Ranges = append(f.Ranges, store.Range{
				Field: domain.FieldPrice,
				Min:   &minPrice,
				Max:   &maxPrice,
			})
		}
	}

	return f
}

func appendIn(in []store.In, field string, values []string) []store.In {
	if field == "" || len(values) == 0 {
		return in
	}
	return append(in, store.In{Field: field, Values: values})
}
