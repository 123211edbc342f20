package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store/memory"
	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/validator"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// countingCache records invalidations and can be made to fail them.
type countingCache struct {
	invalidations int
	err           error
}

func (c *countingCache) Get(context.Context, domain.FilterState) (*domain.SearchResponse, int64, bool) {
	return nil, 0, false
}

func (c *countingCache) Set(context.Context, int64, domain.FilterState, *domain.SearchResponse) {}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return c.err
}

func newTestCatalog(st store.Store, rc ResponseCache) *CatalogService {
	svc := NewCatalogService(st, rc, newTestLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func findAll(t *testing.T, st store.Store, collection string) []domain.ProductRecord {
	t.Helper()
	recs, err := st.Collection(collection).Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	return recs
}

// --- Upsert Tests ---

func TestCatalogService_Upsert(t *testing.T) {
	st := memory.New()
	rc := &countingCache{}
	svc := newTestCatalog(st, rc)

	n, err := svc.Upsert(context.Background(), "Necklaces", []domain.ProductRecord{
		{ID: "n-1", Title: "Lariat", Price: 450, IsAvailable: true},
		{ID: "n-2", Title: "Choker", Price: 300, IsAvailable: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, rc.invalidations)

	recs := findAll(t, st, "necklaces")
	require.Len(t, recs, 2)
	assert.Equal(t, fixedNow, recs[0].CreatedAt)
	assert.Equal(t, fixedNow, recs[0].UpdatedAt)
}

func TestCatalogService_Upsert_KeepsCreatedAt(t *testing.T) {
	st := memory.New()
	svc := newTestCatalog(st, nil)
	created := fixedNow.Add(-48 * time.Hour)

	_, err := svc.Upsert(context.Background(), "earrings", []domain.ProductRecord{
		{ID: "e-1", Title: "Hoops", Price: 200, CreatedAt: created},
	})
	require.NoError(t, err)

	recs := findAll(t, st, "earrings")
	require.Len(t, recs, 1)
	assert.Equal(t, created, recs[0].CreatedAt)
	assert.Equal(t, fixedNow, recs[0].UpdatedAt)
}

func TestCatalogService_Upsert_AcceptsSlugAndCollection(t *testing.T) {
	st := memory.New()
	svc := newTestCatalog(st, nil)

	for _, name := range []string{"mens-jewelry", "mens_jewelry", "Men's Jewelry"} {
		_, err := svc.Upsert(context.Background(), name, []domain.ProductRecord{{ID: "m-1", Title: "Signet"}})
		require.NoError(t, err, name)
	}
	assert.Len(t, findAll(t, st, "mens_jewelry"), 1)
}

func TestCatalogService_Upsert_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		category   string
		records    []domain.ProductRecord
		wantStatus int
	}{
		{
			name:       "unknown category",
			category:   "watches",
			records:    []domain.ProductRecord{{ID: "w-1"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no records",
			category:   "bracelets",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate id",
			category:   "bracelets",
			records:    []domain.ProductRecord{{ID: "b-1"}, {ID: "b-1"}},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &countingCache{}
			svc := newTestCatalog(memory.New(), rc)

			_, err := svc.Upsert(context.Background(), tt.category, tt.records)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.HTTPStatus(err))
			assert.Zero(t, rc.invalidations)
		})
	}
}

func TestCatalogService_Upsert_ValidatesRecords(t *testing.T) {
	svc := newTestCatalog(memory.New(), nil)

	_, err := svc.Upsert(context.Background(), "gemstones", []domain.ProductRecord{
		{ID: "g-1", Price: 100},
		{Title: "Missing id", Price: -5},
	})
	var valErr *validator.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "record 1")
}

func TestCatalogService_Upsert_InvalidationFailureIsNotFatal(t *testing.T) {
	rc := &countingCache{err: errors.New("redis down")}
	svc := newTestCatalog(memory.New(), rc)

	n, err := svc.Upsert(context.Background(), "diamonds", []domain.ProductRecord{{ID: "d-1", Price: 4000}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, rc.invalidations)
}

// --- Delete Tests ---

func TestCatalogService_Delete(t *testing.T) {
	st := memory.New()
	rc := &countingCache{}
	svc := newTestCatalog(st, rc)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "settings", []domain.ProductRecord{{ID: "s-1"}, {ID: "s-2"}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "settings", "s-1"))
	require.NoError(t, svc.Delete(ctx, "settings", "missing"))

	recs := findAll(t, st, "settings")
	require.Len(t, recs, 1)
	assert.Equal(t, "s-2", recs[0].ID)
	assert.Equal(t, 3, rc.invalidations)
}

func TestCatalogService_Delete_Rejections(t *testing.T) {
	svc := newTestCatalog(memory.New(), nil)

	err := svc.Delete(context.Background(), "watches", "w-1")
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))

	err = svc.Delete(context.Background(), "settings", "")
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}
