package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/AsimRauf/jewellery-store-sub002/internal/catalog"
	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
)

func ptr(f float64) *float64 { return &f }

func TestToBSON_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, toBSON(store.Filter{}))
}

func TestToBSON_Clauses(t *testing.T) {
	f := store.Filter{
		Equals: []store.Equal{{Field: domain.FieldIsAvailable, Value: true}},
		In: []store.In{
			{Field: domain.FieldType, Values: []string{"Sapphire", "Ruby"}},
			{Field: domain.FieldID, Values: []string{"g-1"}},
		},
		Ranges: []store.Range{{Field: domain.FieldPrice, Min: ptr(10), Max: ptr(99)}},
		Text: &store.Text{
			Fields:  []string{domain.FieldTitle, domain.FieldColor},
			Pattern: "(?i)(blue|sapphire)",
		},
	}

	re := bson.Regex{Pattern: "(blue|sapphire)", Options: "i"}
	assert.Equal(t, bson.M{
		"isAvailable": true,
		"type":        bson.M{"$in": bson.A{exactFold("Sapphire"), exactFold("Ruby")}},
		"_id":         bson.M{"$in": bson.A{exactFold("g-1")}},
		"price":       bson.M{"$gte": 10.0, "$lte": 99.0},
		"$or":         bson.A{bson.M{"title": re}, bson.M{"color": re}},
	}, toBSON(f))
}

func TestExactFold(t *testing.T) {
	assert.Equal(t, bson.Regex{Pattern: `^Rose Gold \(18K\)$`, Options: "i"}, exactFold("Rose Gold (18K)"))
}

func TestToBSON_OpenRange(t *testing.T) {
	got := toBSON(store.Filter{Ranges: []store.Range{{Field: domain.FieldPrice, Min: ptr(5)}}})
	assert.Equal(t, bson.M{"price": bson.M{"$gte": 5.0}}, got)
}

func TestToBSON_FromGemstoneQuery(t *testing.T) {
	fs := domain.DefaultFilterState()
	fs.Query = "blue"
	fs.GemstoneTypes = []string{"Sapphire"}

	got := toBSON(catalog.NewGemstonesAdapter().BuildQuery(fs))

	assert.Equal(t, true, got["isAvailable"])
	assert.Equal(t, bson.M{"$in": bson.A{bson.Regex{Pattern: "^Sapphire$", Options: "i"}}}, got["type"])
	or, ok := got["$or"].(bson.A)
	if assert.True(t, ok) {
		assert.Len(t, or, 5)
	}
}

func TestProductRecordBSONRoundTrip(t *testing.T) {
	sale := 80.0
	rec := domain.ProductRecord{
		ID:        "set-1",
		Title:     "Halo",
		IsActive:  true,
		Price:     100,
		SalePrice: &sale,
		MetalOptions: []domain.MetalOption{
			{Karat: "14K", Color: "Rose Gold", Price: 900, IsDefault: true},
		},
		ColorImages: map[string][]string{"Rose Gold": {"rose.jpg"}},
	}

	data, err := bson.Marshal(rec)
	assert.NoError(t, err)

	var raw bson.M
	assert.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "set-1", raw["_id"])

	var back domain.ProductRecord
	assert.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, rec.MetalOptions, back.MetalOptions)
	assert.Equal(t, 80.0, *back.SalePrice)
}
