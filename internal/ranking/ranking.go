// Package ranking orders merged search rows.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

// Score weights. Bonuses are additive, so an exact title match also earns
// the prefix and contains bonuses.
const (
	WeightExactTitle  = 100
	WeightTitlePrefix = 50
	WeightTitle       = 25
	WeightCategory    = 10
	WeightType        = 10
	WeightDescription = 5
)

// Score returns the relevance of row for query q. Matching is
// case-insensitive on the whole trimmed query. An empty query scores zero.
func Score(row *domain.SearchResultRow, q string) int {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return 0
	}

	title := strings.ToLower(row.Title)
	score := 0
	if title == q {
		score += WeightExactTitle
	}
	if strings.HasPrefix(title, q) {
		score += WeightTitlePrefix
	}
	if strings.Contains(title, q) {
		score += WeightTitle
	}
	if strings.Contains(strings.ToLower(row.Category), q) {
		score += WeightCategory
	}
	if strings.Contains(strings.ToLower(row.Type), q) {
		score += WeightType
	}
	if strings.Contains(strings.ToLower(row.Description), q) {
		score += WeightDescription
	}
	return score
}

// Sort orders rows in place. Price sorts compare resolved prices, relevance
// applies only to a non-empty query, and newest keeps store order. Equal
// keys keep their relative order.
func Sort(rows []domain.SearchResultRow, sortBy, q string) {
	switch sortBy {
	case domain.SortPriceLow:
		slices.SortStableFunc(rows, func(a, b domain.SearchResultRow) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(rows, func(a, b domain.SearchResultRow) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case domain.SortRelevance:
		if strings.TrimSpace(q) == "" {
			return
		}
		scored := make([]scoredRow, len(rows))
		for i := range rows {
			scored[i] = scoredRow{row: rows[i], score: Score(&rows[i], q)}
		}
		slices.SortStableFunc(scored, func(a, b scoredRow) int {
			return cmp.Compare(b.score, a.score)
		})
		for i := range scored {
			rows[i] = scored[i].row
		}
	}
}

type scoredRow struct {
	row   domain.SearchResultRow
	score int
}
