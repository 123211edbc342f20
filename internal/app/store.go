package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AsimRauf/jewellery-store-sub002/internal/config"
	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	esstore "github.com/AsimRauf/jewellery-store-sub002/internal/store/elasticsearch"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store/memory"
	mongostore "github.com/AsimRauf/jewellery-store-sub002/internal/store/mongo"
	pgstore "github.com/AsimRauf/jewellery-store-sub002/internal/store/postgres"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
)

// OpenStore connects the configured store backend and prepares its schema.
// Unless disabled, every collection is guarded by a circuit breaker.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	st, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog store initialized", slog.String("backend", cfg.StoreBackend))

	if !cfg.Breaker.Enabled {
		return st, nil
	}
	return store.NewBreakerStore(st, cfg.Breaker, logger), nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		if err := pgstore.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, cfg.ServiceName); err != nil {
			logger.Warn("postgres pool metrics not registered", slog.String("error", err.Error()))
		}
		return pgstore.New(pool), nil

	case config.BackendMongo:
		st, err := mongostore.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("init mongo store: %w", err)
		}
		return st, nil

	case config.BackendElasticsearch:
		st, err := esstore.New(cfg.Elasticsearch)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch store: %w", err)
		}
		err = database.Retry(ctx, "ensure elasticsearch indices", logger, func() error {
			return st.EnsureIndices(ctx, collectionNames()...)
		})
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch store: %w", err)
		}
		return st, nil

	default:
		st := memory.New()
		if cfg.FixturePath != "" {
			n, err := st.LoadFixture(ctx, cfg.FixturePath)
			if err != nil {
				return nil, fmt.Errorf("init memory store: %w", err)
			}
			logger.Info("catalog fixture loaded",
				slog.String("path", cfg.FixturePath),
				slog.Int("records", n),
			)
		}
		return st, nil
	}
}

func collectionNames() []string {
	cats := domain.AllCategories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Collection())
	}
	return names
}
