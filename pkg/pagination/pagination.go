package pagination

import "math"

// Limits applied by NewParams.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds resolved page/limit parameters.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Skip:  0,
	}
}

// NewParams resolves page and limit, falling back to defaults for values
// out of range. Skip saturates instead of overflowing for huge pages.
func NewParams(page, limit int) Params {
	p := DefaultParams()
	if page > 0 {
		p.Page = page
	}
	if limit > 0 && limit <= MaxLimit {
		p.Limit = limit
	}
	if p.Page-1 > (math.MaxInt-p.Limit)/p.Limit {
		p.Skip = math.MaxInt - p.Limit
	} else {
		p.Skip = (p.Page - 1) * p.Limit
	}
	return p
}

// Result is one page of a fully materialized list.
type Result[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"totalCount"`
	HasMore    bool `json:"hasMore"`
}

// Paginate slices items to the requested page. HasMore reports whether rows
// remain after the page. A page past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, params Params) Result[T] {
	total := len(items)
	start := min(max(params.Skip, 0), total)
	end := start + min(max(params.Limit, 0), total-start)

	page := make([]T, end-start)
	copy(page, items[start:end])

	return Result[T]{
		Items:      page,
		TotalCount: total,
		HasMore:    end < total,
	}
}
