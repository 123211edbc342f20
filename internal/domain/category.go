package domain

import "strings"

// Category identifies one of the catalog collections.
type Category string

// Catalog categories, in the order the aggregator queries them.
const (
	CategorySettings        Category = "settings"
	CategoryWeddingRings    Category = "wedding_rings"
	CategoryEngagementRings Category = "engagement_rings"
	CategoryDiamonds        Category = "diamonds"
	CategoryGemstones       Category = "gemstones"
	CategoryBracelets       Category = "bracelets"
	CategoryEarrings        Category = "earrings"
	CategoryNecklaces       Category = "necklaces"
	CategoryMensJewelry     Category = "mens_jewelry"
)

// AllCategories returns every catalog category in query order.
func AllCategories() []Category {
	return []Category{
		CategorySettings,
		CategoryWeddingRings,
		CategoryEngagementRings,
		CategoryDiamonds,
		CategoryGemstones,
		CategoryBracelets,
		CategoryEarrings,
		CategoryNecklaces,
		CategoryMensJewelry,
	}
}

var categoryLabels = map[Category]string{
	CategorySettings:        "Settings",
	CategoryWeddingRings:    "Rings",
	CategoryEngagementRings: "Engagement Rings",
	CategoryDiamonds:        "Diamonds",
	CategoryGemstones:       "Gemstones",
	CategoryBracelets:       "Bracelets",
	CategoryEarrings:        "Earrings",
	CategoryNecklaces:       "Necklaces",
	CategoryMensJewelry:     "Men's Jewelry",
}

var productTypes = map[Category]string{
	CategorySettings:        "setting",
	CategoryWeddingRings:    "wedding-ring",
	CategoryEngagementRings: "engagement-ring",
	CategoryDiamonds:        "diamond",
	CategoryGemstones:       "gemstone",
	CategoryBracelets:       "bracelet",
	CategoryEarrings:        "earring",
	CategoryNecklaces:       "necklace",
	CategoryMensJewelry:     "mens-jewelry",
}

// Collection returns the storage collection name for the category.
func (c Category) Collection() string { return string(c) }

// Slug returns the URL path segment for the category.
func (c Category) Slug() string { return strings.ReplaceAll(string(c), "_", "-") }

// Label returns the display label used in results and the category filter.
func (c Category) Label() string { return categoryLabels[c] }

// ProductType returns the productType tag carried by result rows.
func (c Category) ProductType() string { return productTypes[c] }

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// HasMetalOptions reports whether records of the category carry a metal
// option set and expand into one row per option.
func (c Category) HasMetalOptions() bool {
	switch c {
	case CategorySettings, CategoryWeddingRings, CategoryEngagementRings:
		return true
	default:
		return false
	}
}

// AvailabilityField returns the document field holding the category's
// availability flag.
func (c Category) AvailabilityField() string {
	if c.HasMetalOptions() {
		return FieldIsActive
	}
	return FieldIsAvailable
}

// ParseCategory resolves a label, slug or collection name to a category.
// Matching is case-insensitive.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range AllCategories() {
		if strings.EqualFold(s, c.Label()) || strings.EqualFold(s, c.Slug()) || strings.EqualFold(s, c.Collection()) {
			return c, true
		}
	}
	return "", false
}
