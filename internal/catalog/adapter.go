package catalog

import (
	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
)

// Adapter translates search inputs into a store query for one category and
// flattens that category's records into result rows.
type Adapter interface {
	// Category returns the category the adapter serves.
	Category() domain.Category

	// BuildQuery translates the filter state into a store filter for the
	// category's collection.
	BuildQuery(fs domain.FilterState) store.Filter

	// Expand converts one stored record into zero or more result rows.
	Expand(rec domain.ProductRecord, fs domain.FilterState) []domain.SearchResultRow
}

// Registry holds the category adapters in query order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry over the given adapters. Order is kept.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// DefaultRegistry returns a registry with one adapter per catalog category.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewSettingsAdapter(),
		NewWeddingRingsAdapter(),
		NewEngagementRingsAdapter(),
		NewDiamondsAdapter(),
		NewGemstonesAdapter(),
		NewBraceletsAdapter(),
		NewEarringsAdapter(),
		NewNecklacesAdapter(),
		NewMensJewelryAdapter(),
	)
}

// Adapters returns every registered adapter.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// Lookup returns the adapter serving the category.
func (r *Registry) Lookup(c domain.Category) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Category() == c {
			return a, true
		}
	}
	return nil, false
}

// Included returns the adapters selected by a category filter. Names may be
// labels, slugs or collection names. An empty filter selects every adapter;
// unknown names are ignored.
func (r *Registry) Included(names []string) []Adapter {
	if len(names) == 0 {
		return r.adapters
	}

	wanted := make(map[domain.Category]struct{}, len(names))
	for _, n := range names {
		if c, ok := domain.ParseCategory(n); ok {
			wanted[c] = struct{}{}
		}
	}

	included := make([]Adapter, 0, len(wanted))
	for _, a := range r.adapters {
		if _, ok := wanted[a.Category()]; ok {
			included = append(included, a)
		}
	}
	return included
}
