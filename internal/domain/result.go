package domain

// SearchResultRow is a flattened, display-ready projection of one sellable
// item. Variant products contribute one row per metal option.
type SearchResultRow struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image"`
	Video         string  `json:"video,omitempty"`
	Category      string  `json:"category"`
	ProductType   string  `json:"productType"`
	Style         string  `json:"style,omitempty"`
	Type          string  `json:"type,omitempty"`
	Metal         string  `json:"metal,omitempty"`
	Karat         string  `json:"karat,omitempty"`
	Shape         string  `json:"shape,omitempty"`
	GemstoneType  string  `json:"gemstoneType,omitempty"`
	Carat         float64 `json:"carat,omitempty"`
}

// PriceRange is the observed price span of a result set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FacetOptions lists the distinct facet values present in a full,
// unpaginated result set.
type FacetOptions struct {
	Categories    []string   `json:"categories"`
	Metals        []string   `json:"metals"`
	Styles        []string   `json:"styles"`
	Shapes        []string   `json:"shapes"`
	GemstoneTypes []string   `json:"gemstoneTypes"`
	PriceRange    PriceRange `json:"priceRange"`
}

// SearchResponse is the body returned by the search endpoint.
type SearchResponse struct {
	Products         []SearchResultRow `json:"products"`
	TotalCount       int               `json:"totalCount"`
	HasMore          bool              `json:"hasMore"`
	Filters          FacetOptions      `json:"filters"`
	FailedCategories []string          `json:"failedCategories,omitempty"`
}
