package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/validator"
)

// CatalogService writes catalog records and keeps the search cache coherent
// with them.
type CatalogService struct {
	store  store.Store
	cache  ResponseCache
	logger *slog.Logger
	now    func() time.Time
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(st store.Store, cache ResponseCache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ResolveCategory maps a label, slug or collection name to a category.
func ResolveCategory(name string) (domain.Category, error) {
	c, ok := domain.ParseCategory(name)
	if !ok {
		return "", apperrors.NotFound("category", name)
	}
	return c, nil
}

// Upsert validates and stores records in the category's collection. New
// records are stamped with a creation time; every record gets a fresh update
// time. It returns the number of records written.
func (s *CatalogService) Upsert(ctx context.Context, category string, records []domain.ProductRecord) (int, error) {
	c, err := ResolveCategory(category)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, apperrors.InvalidInput("at least one record is required")
	}

	now := s.now()
	seen := make(map[string]struct{}, len(records))
	stamped := make([]domain.ProductRecord, len(records))
	for i, rec := range records {
		if err := validator.Validate(rec); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return 0, apperrors.InvalidInput("duplicate record id " + strconv.Quote(rec.ID))
		}
		seen[rec.ID] = struct{}{}

		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		stamped[i] = rec
	}

	if err := s.store.Collection(c.Collection()).Upsert(ctx, stamped); err != nil {
		return 0, apperrors.Wrap(err, "upsert "+c.Collection())
	}
	catalogWrites.WithLabelValues(c.Collection(), "upsert").Add(float64(len(stamped)))
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "catalog records upserted",
		slog.String("category", c.Collection()),
		slog.Int("count", len(stamped)),
	)
	return len(stamped), nil
}

// Delete removes a record from the category's collection. Deleting a missing
// record succeeds.
func (s *CatalogService) Delete(ctx context.Context, category, id string) error {
	c, err := ResolveCategory(category)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("id is required")
	}

	if err := s.store.Collection(c.Collection()).Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, "delete "+c.Collection()+"/"+id)
	}
	catalogWrites.WithLabelValues(c.Collection(), "delete").Inc()
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "catalog record deleted",
		slog.String("category", c.Collection()),
		slog.String("id", id),
	)
	return nil
}

// invalidate drops cached searches. A failure leaves stale entries that
// expire with their TTL, so it is logged rather than returned.
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "search cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
