package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AsimRauf/jewellery-store-sub002/internal/catalog"
	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/facet"
	"github.com/AsimRauf/jewellery-store-sub002/internal/ranking"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/pagination"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/tracing"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/validator"
)

const tracerName = "github.com/AsimRauf/jewellery-store-sub002/internal/service"

// ResponseCache caches complete search responses by filter state. Get
// reports the cache generation it read; Set stores into that generation so
// an invalidation during the search discards the result.
type ResponseCache interface {
	Get(ctx context.Context, fs domain.FilterState) (*domain.SearchResponse, int64, bool)
	Set(ctx context.Context, generation int64, fs domain.FilterState, resp *domain.SearchResponse)
	Invalidate(ctx context.Context) error
}

// SearchConfig tunes the category fan-out.
type SearchConfig struct {
	// Concurrency caps the number of categories queried at once. Values
	// below 1 query categories one at a time.
	Concurrency int

	// CategoryTimeout bounds a single category query. Zero disables it.
	CategoryTimeout time.Duration
}

// SearchService aggregates the catalog categories into one ranked, faceted
// and paginated result list.
type SearchService struct {
	registry *catalog.Registry
	store    store.Store
	cache    ResponseCache
	cfg      SearchConfig
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewSearchService creates a new search service. cache may be nil.
func NewSearchService(registry *catalog.Registry, st store.Store, cache ResponseCache, cfg SearchConfig, logger *slog.Logger) *SearchService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &SearchService{
		registry: registry,
		store:    st,
		cache:    cache,
		cfg:      cfg,
		tracer:   tracing.Tracer(tracerName),
		logger:   logger,
	}
}

// categoryResult holds one category's rows, or the error that emptied them.
type categoryResult struct {
	rows []domain.SearchResultRow
	err  error
}

// Search runs the filter state against every included category. A failing
// category is logged and reported in FailedCategories; it never fails the
// search as a whole.
func (s *SearchService) Search(ctx context.Context, fs domain.FilterState) (*domain.SearchResponse, error) {
	start := time.Now()
	defer func() { searchDuration.Observe(time.Since(start).Seconds()) }()

	if err := validator.Validate(fs); err != nil {
		searchRequests.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	var generation int64
	if s.cache != nil {
		resp, gen, ok := s.cache.Get(ctx, fs)
		if ok {
			searchRequests.WithLabelValues(outcomeCacheHit).Inc()
			return resp, nil
		}
		generation = gen
	}

	adapters := s.registry.Included(fs.Categories)
	results := make([]categoryResult, len(adapters))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, a := range adapters {
		g.Go(func() error {
			rows, err := s.searchCategory(ctx, a, fs)
			results[i] = categoryResult{rows: rows, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		searchRequests.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("search: %w", err)
	}

	var (
		rows   []domain.SearchResultRow
		failed []string
	)
	for i, res := range results {
		if res.err != nil {
			c := adapters[i].Category()
			categoryFailures.WithLabelValues(c.Collection()).Inc()
			s.logger.ErrorContext(ctx, "category search failed",
				slog.String("category", c.Collection()),
				slog.String("error", res.err.Error()),
			)
			failed = append(failed, c.Label())
			continue
		}
		rows = append(rows, res.rows...)
	}

	ranking.Sort(rows, fs.SortBy, fs.Query)
	page := pagination.Paginate(rows, pagination.NewParams(fs.Page, fs.Limit))

	resp := &domain.SearchResponse{
		Products:         page.Items,
		TotalCount:       page.TotalCount,
		HasMore:          page.HasMore,
		Filters:          facet.Derive(rows),
		FailedCategories: failed,
	}

	if len(failed) > 0 {
		searchRequests.WithLabelValues(outcomePartial).Inc()
	} else {
		searchRequests.WithLabelValues(outcomeOK).Inc()
		if s.cache != nil {
			s.cache.Set(ctx, generation, fs, resp)
		}
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", fs.Query),
		slog.Int("categories", len(adapters)),
		slog.Int("total", resp.TotalCount),
		slog.Int("failed", len(failed)),
	)

	return resp, nil
}

// searchCategory queries one category's collection and expands the matching
// records into rows in store order.
func (s *SearchService) searchCategory(ctx context.Context, a catalog.Adapter, fs domain.FilterState) ([]domain.SearchResultRow, error) {
	c := a.Category()
	ctx, span := s.tracer.Start(ctx, "search.category",
		trace.WithAttributes(attribute.String("search.category", c.Collection())),
	)
	defer span.End()

	if s.cfg.CategoryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CategoryTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := s.store.Collection(c.Collection()).Find(ctx, a.BuildQuery(fs))
	categoryDuration.WithLabelValues(c.Collection()).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find %s: %w", c.Collection(), err)
	}

	var rows []domain.SearchResultRow
	for _, rec := range records {
		rows = append(rows, a.Expand(rec, fs)...)
	}

	span.SetAttributes(
		attribute.Int("search.records", len(records)),
		attribute.Int("search.rows", len(rows)),
	)
	return rows, nil
}
