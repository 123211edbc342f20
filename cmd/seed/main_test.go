package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

type call struct {
	category string
	ids      []string
}

func recorder(calls *[]call) upsertFunc {
	return func(_ context.Context, category string, records []domain.ProductRecord) error {
		c := call{category: category}
		for _, r := range records {
			c.ids = append(c.ids, r.ID)
		}
		*calls = append(*calls, c)
		return nil
	}
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFixture(t *testing.T) {
	fixture, err := loadFixture("../../fixtures/catalog.json")
	require.NoError(t, err)

	assert.Len(t, fixture, len(domain.AllCategories()))
	assert.Len(t, fixture[domain.CategoryDiamonds], 3)
}

func TestLoadFixture_AcceptsLabelsAndSlugs(t *testing.T) {
	path := writeFixture(t, `{"Men's Jewelry":[{"id":"m-1"}],"wedding-rings":[{"id":"w-1"}]}`)

	fixture, err := loadFixture(path)
	require.NoError(t, err)
	assert.Len(t, fixture[domain.CategoryMensJewelry], 1)
	assert.Len(t, fixture[domain.CategoryWeddingRings], 1)
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := loadFixture(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read fixture")

	_, err = loadFixture(writeFixture(t, `[]`))
	assert.ErrorContains(t, err, "decode fixture")

	_, err = loadFixture(writeFixture(t, `{"watches":[{"id":"w-1"}]}`))
	assert.ErrorContains(t, err, `unknown category "watches"`)
}

func TestApply_CategoryOrderAndBatches(t *testing.T) {
	bracelets := make([]domain.ProductRecord, batchSize+2)
	for i := range bracelets {
		bracelets[i] = domain.ProductRecord{ID: fmt.Sprintf("b-%d", i)}
	}
	fixture := map[domain.Category][]domain.ProductRecord{
		domain.CategoryBracelets: bracelets,
		domain.CategorySettings:  {{ID: "s-1"}},
	}

	var calls []call
	n, err := apply(context.Background(), fixture, recorder(&calls))
	require.NoError(t, err)

	assert.Equal(t, batchSize+3, n)
	require.Len(t, calls, 3)
	assert.Equal(t, "settings", calls[0].category)
	assert.Equal(t, "bracelets", calls[1].category)
	assert.Len(t, calls[1].ids, batchSize)
	assert.Equal(t, []string{fmt.Sprintf("b-%d", batchSize), fmt.Sprintf("b-%d", batchSize+1)}, calls[2].ids)
}

func TestApply_StopsOnError(t *testing.T) {
	fixture := map[domain.Category][]domain.ProductRecord{
		domain.CategorySettings: {{ID: "s-1"}},
		domain.CategoryDiamonds: {{ID: "d-1"}},
	}
	cause := errors.New("store down")
	failing := func(_ context.Context, category string, _ []domain.ProductRecord) error {
		if category == "diamonds" {
			return cause
		}
		return nil
	}

	n, err := apply(context.Background(), fixture, failing)
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "seed diamonds")
	assert.Equal(t, 1, n)
}
