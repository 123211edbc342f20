package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	pkgkafka "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
)

// Catalog change topics. The event type of each message equals its topic.
var (
	TopicCatalogUpserted = pkgkafka.Topic("catalog", "upserted")
	TopicCatalogDeleted  = pkgkafka.Topic("catalog", "deleted")
)

// Topics returns every topic the consumer subscribes to.
func Topics() []string {
	return []string{TopicCatalogUpserted, TopicCatalogDeleted}
}

// UpsertedData is the payload of a catalog.upserted event.
type UpsertedData struct {
	Category string                 `json:"category"`
	Records  []domain.ProductRecord `json:"records"`
}

// DeletedData is the payload of a catalog.deleted event.
type DeletedData struct {
	Category string `json:"category"`
	ID       string `json:"id"`
}

// CatalogWriter applies catalog changes.
type CatalogWriter interface {
	Upsert(ctx context.Context, category string, records []domain.ProductRecord) (int, error)
	Delete(ctx context.Context, category, id string) error
}

// Consumer applies catalog change events to the catalog store.
type Consumer struct {
	catalog CatalogWriter
	logger  *slog.Logger
}

// NewConsumer creates a new catalog event consumer.
func NewConsumer(catalog CatalogWriter, logger *slog.Logger) *Consumer {
	return &Consumer{
		catalog: catalog,
		logger:  logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.Type {
	case TopicCatalogUpserted:
		return c.handleUpserted(ctx, event)
	case TopicCatalogDeleted:
		return c.handleDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID),
		)
		return nil
	}
}

func (c *Consumer) handleUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data UpsertedData
	if err := event.DecodeData(&data); err != nil {
		return fmt.Errorf("decode catalog.upserted data: %w", err)
	}

	n, err := c.catalog.Upsert(ctx, data.Category, data.Records)
	if err != nil {
		return fmt.Errorf("apply catalog.upserted event: %w", err)
	}

	c.logger.InfoContext(ctx, "applied catalog upsert event",
		slog.String("event_id", event.ID),
		slog.String("category", data.Category),
		slog.Int("count", n),
	)
	return nil
}

func (c *Consumer) handleDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data DeletedData
	if err := event.DecodeData(&data); err != nil {
		return fmt.Errorf("decode catalog.deleted data: %w", err)
	}

	if err := c.catalog.Delete(ctx, data.Category, data.ID); err != nil {
		return fmt.Errorf("apply catalog.deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "applied catalog delete event",
		slog.String("event_id", event.ID),
		slog.String("category", data.Category),
		slog.String("id", data.ID),
	)
	return nil
}
