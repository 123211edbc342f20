package domain

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/pagination"
)

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
)

// Defaults applied when a parameter is absent from the query string.
const (
	DefaultPage      = 1
	DefaultLimit     = 20
	MaxLimit         = 100
	MaxPriceSentinel = 999999
)

// Query string parameter names.
const (
	ParamQuery        = "q"
	ParamPage         = "page"
	ParamLimit        = "limit"
	ParamSortBy       = "sortBy"
	ParamCategory     = "category"
	ParamType         = "type"
	ParamMetal        = "metal"
	ParamStyle        = "style"
	ParamShape        = "shape"
	ParamGemstoneType = "gemstoneType"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamAvailability = "availability"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceLow, SortPriceHigh, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	return slices.Contains(ValidSortOptions(), sort)
}

// FilterState is the full set of search inputs: free text, facet selections,
// price bounds, availability, sort and paging. It round-trips through the URL
// query string so a search can be bookmarked or shared.
type FilterState struct {
	Query         string   `json:"q"`
	Page          int      `json:"page" validate:"gte=1"`
	Limit         int      `json:"limit" validate:"gte=1,lte=100"`
	SortBy        string   `json:"sortBy" validate:"oneof=relevance price-low price-high newest"`
	Categories    []string `json:"category,omitempty"`
	Types         []string `json:"type,omitempty"`
	Styles        []string `json:"style,omitempty"`
	Metals        []string `json:"metal,omitempty"`
	Shapes        []string `json:"shape,omitempty"`
	GemstoneTypes []string `json:"gemstoneType,omitempty"`
	MinPrice      float64  `json:"minPrice" validate:"gte=0"`
	MaxPrice      float64  `json:"maxPrice" validate:"gte=0,gtefield=MinPrice"`
	AvailableOnly bool     `json:"availability"`
}

// DefaultFilterState returns an empty search with default paging and bounds.
func DefaultFilterState() FilterState {
	return FilterState{
		Page:          DefaultPage,
		Limit:         DefaultLimit,
		SortBy:        SortRelevance,
		MaxPrice:      MaxPriceSentinel,
		AvailableOnly: true,
	}
}

// ParseFilterState decodes a FilterState from URL query values. List
// parameters accept comma-separated values and may be repeated. Absent
// parameters take their defaults; malformed numbers or booleans return an
// invalid input error.
func ParseFilterState(v url.Values) (FilterState, error) {
	fs := DefaultFilterState()
	fs.Query = strings.TrimSpace(v.Get(ParamQuery))

	var err error
	if fs.Page, err = parseInt(v, ParamPage, fs.Page); err != nil {
		return FilterState{}, err
	}
	if fs.Limit, err = parseInt(v, ParamLimit, fs.Limit); err != nil {
		return FilterState{}, err
	}
	if s := strings.TrimSpace(v.Get(ParamSortBy)); s != "" {
		fs.SortBy = s
	}
	if fs.MinPrice, err = parseFloat(v, ParamMinPrice, fs.MinPrice); err != nil {
		return FilterState{}, err
	}
	if fs.MaxPrice, err = parseFloat(v, ParamMaxPrice, fs.MaxPrice); err != nil {
		return FilterState{}, err
	}
	if s := strings.TrimSpace(v.Get(ParamAvailability)); s != "" {
		b, perr := strconv.ParseBool(s)
		if perr != nil {
			return FilterState{}, apperrors.InvalidInput(ParamAvailability + " must be true or false")
		}
		fs.AvailableOnly = b
	}

	fs.Categories = parseList(v, ParamCategory)
	fs.Types = parseList(v, ParamType)
	fs.Styles = parseList(v, ParamStyle)
	fs.Metals = parseList(v, ParamMetal)
	fs.Shapes = parseList(v, ParamShape)
	fs.GemstoneTypes = parseList(v, ParamGemstoneType)

	return fs, nil
}

// Encode serializes the state into canonical query values: lists are sorted
// and deduplicated and parameters equal to their default are omitted. Two
// states selecting the same results encode identically.
func (f FilterState) Encode() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set(ParamQuery, f.Query)
	}
	if f.Page != DefaultPage {
		v.Set(ParamPage, strconv.Itoa(f.Page))
	}
	if f.Limit != DefaultLimit {
		v.Set(ParamLimit, strconv.Itoa(f.Limit))
	}
	if f.SortBy != "" && f.SortBy != SortRelevance {
		v.Set(ParamSortBy, f.SortBy)
	}
	setList(v, ParamCategory, f.Categories)
	setList(v, ParamType, f.Types)
	setList(v, ParamStyle, f.Styles)
	setList(v, ParamMetal, f.Metals)
	setList(v, ParamShape, f.Shapes)
	setList(v, ParamGemstoneType, f.GemstoneTypes)
	if f.MinPrice != 0 {
		v.Set(ParamMinPrice, strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != MaxPriceSentinel {
		v.Set(ParamMaxPrice, strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if !f.AvailableOnly {
		v.Set(ParamAvailability, "false")
	}
	return v
}

// Clear drops the query and every facet selection. Page size and sort order
// are kept.
func (f FilterState) Clear() FilterState {
	cleared := DefaultFilterState()
	cleared.Limit = f.Limit
	cleared.SortBy = f.SortBy
	return cleared
}

// Skip returns the number of rows preceding the requested page.
func (f FilterState) Skip() int {
	return pagination.NewParams(f.Page, f.Limit).Skip
}

// PriceBounded reports whether the caller narrowed the default price bounds.
func (f FilterState) PriceBounded() bool {
	return f.MinPrice > 0 || f.MaxPrice < MaxPriceSentinel
}

// InPriceRange reports whether price lies within the requested bounds. With
// the default bounds every price passes, matching the store queries, which
// add no price clause unless PriceBounded.
func (f FilterState) InPriceRange(price float64) bool {
	if !f.PriceBounded() {
		return true
	}
	return price >= f.MinPrice && price <= f.MaxPrice
}

func parseInt(v url.Values, key string, def int) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput(key + " must be a valid integer")
	}
	return n, nil
}

func parseFloat(v url.Values, key string, def float64) (float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.InvalidInput(key + " must be a valid number")
	}
	return n, nil
}

func parseList(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setList(v url.Values, key string, values []string) {
	if len(values) == 0 {
		return
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	v.Set(key, strings.Join(slices.Compact(sorted), ","))
}
