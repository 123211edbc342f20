// Command seed loads a catalog fixture into the configured store, or
// publishes it as catalog change events for a running service to consume.
//
// Run: go run ./cmd/seed -file fixtures/catalog.json [-publish]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/AsimRauf/jewellery-store-sub002/internal/app"
	"github.com/AsimRauf/jewellery-store-sub002/internal/cache"
	"github.com/AsimRauf/jewellery-store-sub002/internal/config"
	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/event"
	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
	pkgkafka "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/logger"
)

// batchSize matches the admin endpoint's per-request record limit.
const batchSize = 500

// upsertFunc writes one batch of a category's records.
type upsertFunc func(ctx context.Context, category string, records []domain.ProductRecord) error

func main() {
	file := flag.String("file", "fixtures/catalog.json", "path to the catalog fixture")
	publish := flag.Bool("publish", false, "publish catalog.upserted events instead of writing the store")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName+"-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *file, *publish, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, publish bool, log *slog.Logger) error {
	fixture, err := loadFixture(path)
	if err != nil {
		return err
	}

	var upsert upsertFunc
	if publish {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
		defer producer.Close()
		pub := event.NewPublisher(producer, cfg.ServiceName+"-seed")
		upsert = pub.PublishUpserted
	} else {
		st, err := app.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		var rc service.ResponseCache
		if cfg.CacheEnabled {
			client, err := database.NewRedisClient(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer client.Close()
			rc = cache.NewSearchCache(client, cfg.CacheTTL, log)
		}

		svc := service.NewCatalogService(st, rc, log)
		upsert = func(ctx context.Context, category string, records []domain.ProductRecord) error {
			_, err := svc.Upsert(ctx, category, records)
			return err
		}
	}

	n, err := apply(ctx, fixture, upsert)
	if err != nil {
		return err
	}
	log.Info("catalog seeded",
		slog.String("file", path),
		slog.Bool("published", publish),
		slog.Int("records", n),
	)
	return nil
}

// loadFixture reads a JSON object mapping collection names to records.
// Every key must name a catalog category.
func loadFixture(path string) (map[domain.Category][]domain.ProductRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var raw map[string][]domain.ProductRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	fixture := make(map[domain.Category][]domain.ProductRecord, len(raw))
	for name, records := range raw {
		c, ok := domain.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("fixture: unknown category %q", name)
		}
		fixture[c] = append(fixture[c], records...)
	}
	return fixture, nil
}

// apply writes the fixture in category order, batchSize records at a time.
func apply(ctx context.Context, fixture map[domain.Category][]domain.ProductRecord, upsert upsertFunc) (int, error) {
	total := 0
	for _, c := range domain.AllCategories() {
		for batch := range slices.Chunk(fixture[c], batchSize) {
			if err := upsert(ctx, c.Collection(), batch); err != nil {
				return total, fmt.Errorf("seed %s: %w", c.Collection(), err)
			}
			total += len(batch)
		}
	}
	return total, nil
}
