package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

func TestDerive_Empty(t *testing.T) {
	got := Derive(nil)

	assert.Empty(t, got.Categories)
	assert.NotNil(t, got.Categories)
	assert.Empty(t, got.Metals)
	assert.Equal(t, domain.PriceRange{}, got.PriceRange)
}

func TestDerive_DistinctSortedValues(t *testing.T) {
	rows := []domain.SearchResultRow{
		{Category: "Settings", Metal: "Yellow Gold", Style: "Solitaire", Shape: "Round", Price: 600},
		{Category: "Settings", Metal: "White Gold", Style: "Halo", Shape: "Round", Price: 650},
		{Category: "Gemstones", GemstoneType: "Sapphire", Shape: "Oval", Price: 1200},
		{Category: "Diamonds", Shape: "Cushion", Price: 300},
		{Category: "Gemstones", GemstoneType: "Emerald", Price: 2400},
		{Category: "Necklaces", Metal: "White Gold", Style: "Pendant", Price: 450},
	}

	got := Derive(rows)

	assert.Equal(t, []string{"Diamonds", "Gemstones", "Necklaces", "Settings"}, got.Categories)
	assert.Equal(t, []string{"White Gold", "Yellow Gold"}, got.Metals)
	assert.Equal(t, []string{"Halo", "Pendant", "Solitaire"}, got.Styles)
	assert.Equal(t, []string{"Cushion", "Oval", "Round"}, got.Shapes)
	assert.Equal(t, []string{"Emerald", "Sapphire"}, got.GemstoneTypes)
	assert.Equal(t, domain.PriceRange{Min: 300, Max: 2400}, got.PriceRange)
}

func TestDerive_SingleRowRange(t *testing.T) {
	got := Derive([]domain.SearchResultRow{{Category: "Earrings", Price: 75}})
	assert.Equal(t, domain.PriceRange{Min: 75, Max: 75}, got.PriceRange)
}
