package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AsimRauf/jewellery-store-sub002/internal/cache"
	"github.com/AsimRauf/jewellery-store-sub002/internal/catalog"
	"github.com/AsimRauf/jewellery-store-sub002/internal/config"
	"github.com/AsimRauf/jewellery-store-sub002/internal/event"
	handler "github.com/AsimRauf/jewellery-store-sub002/internal/handler/http"
	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/health"
	pkgkafka "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/middleware"
)

// App wires together all dependencies and runs the catalog search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      store.Store
	redis      *redis.Client
	producer   *pkgkafka.Producer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger, store: st}

	healthHandler := health.NewHandler()
	healthHandler.Register("store", st.Ping)

	// Redis backs the search cache and event deduplication.
	var responseCache service.ResponseCache
	if cfg.CacheEnabled {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			_ = a.close()
			return nil, fmt.Errorf("init search cache: %w", err)
		}
		sc := cache.NewSearchCache(a.redis, cfg.CacheTTL, logger)
		responseCache = sc
		healthHandler.Register("redis", sc.Ping)
		logger.Info("search cache enabled", slog.Duration("ttl", cfg.CacheTTL))
	}

	searchService := service.NewSearchService(catalog.DefaultRegistry(), st, responseCache, service.SearchConfig{
		Concurrency:     cfg.SearchConcurrency,
		CategoryTimeout: cfg.SearchCategoryTimeout,
	}, logger)
	catalogService := service.NewCatalogService(st, responseCache, logger)

	if cfg.KafkaEnabled {
		a.initConsumers(catalogService)
		healthHandler.Register("kafka", a.producer.Ping)
	}

	router := handler.NewRouter(searchService, catalogService, healthHandler, handler.RouterConfig{
		ServiceName:     cfg.ServiceName,
		RequestTimeout:  cfg.HTTPRequestTimeout,
		SearchMaxAge:    cfg.SearchCacheMaxAge,
		CORS:            corsConfig(cfg),
		AdminToken:      cfg.AdminToken,
		AdminJWTSecret:  cfg.AdminJWTSecret,
		SearchRateLimit: cfg.SearchRateLimit,
		SearchRateBurst: cfg.SearchRateBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPRequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// initConsumers subscribes the catalog change consumer. Handler failures are
// retried, then dead-lettered through the producer.
func (a *App) initConsumers(catalogService *service.CatalogService) {
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)

	var idem pkgkafka.IdempotencyStore
	if a.redis != nil {
		idem = pkgkafka.NewRedisIdempotencyStore(a.redis, a.cfg.ServiceName+":events:", a.cfg.KafkaIdempotencyTTL)
	} else {
		idem = pkgkafka.NewMemoryIdempotencyStore(a.cfg.KafkaIdempotencyTTL)
	}

	eventConsumer := event.NewConsumer(catalogService, a.logger)
	consumerCfg := pkgkafka.ConsumerConfig{
		Brokers:  a.cfg.KafkaBrokers,
		GroupID:  a.cfg.KafkaGroupID,
		Topics:   event.Topics(),
		MinBytes: 1,
		MaxBytes: 10e6, // 10 MB
	}
	if a.cfg.KafkaDeadLetter {
		consumerCfg.DeadLetter = a.producer
	}

	handle := pkgkafka.IdempotentHandler(idem, eventConsumer.Handle, a.logger)
	a.consumers = append(a.consumers, pkgkafka.NewConsumer(consumerCfg, handle, a.logger))

	a.logger.Info("kafka consumer initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.Any("topics", consumerCfg.Topics),
		slog.String("group", consumerCfg.GroupID),
	)
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		c.AllowedOrigins = cfg.CORSAllowedOrigins
	}
	return c
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases consumers, the producer and the data stores.
func (a *App) close() error {
	var errs []error
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("store close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
