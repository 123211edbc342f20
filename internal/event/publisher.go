package event

import (
	"context"
	"fmt"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	pkgkafka "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
)

// EventPublisher sends an event to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Publisher emits catalog change events.
type Publisher struct {
	producer EventPublisher
	source   string
}

// NewPublisher creates a publisher tagging events with source.
func NewPublisher(producer EventPublisher, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

// PublishUpserted emits one upsert event for a batch of records. The
// category is the message key so a category's changes stay ordered.
func (p *Publisher) PublishUpserted(ctx context.Context, category string, records []domain.ProductRecord) error {
	ev, err := pkgkafka.NewEvent(TopicCatalogUpserted, category, p.source, UpsertedData{
		Category: category,
		Records:  records,
	})
	if err != nil {
		return fmt.Errorf("build catalog.upserted event: %w", err)
	}
	return p.producer.Publish(ctx, TopicCatalogUpserted, ev)
}

// PublishDeleted emits a delete event for one record.
func (p *Publisher) PublishDeleted(ctx context.Context, category, id string) error {
	ev, err := pkgkafka.NewEvent(TopicCatalogDeleted, category, p.source, DeletedData{
		Category: category,
		ID:       id,
	})
	if err != nil {
		return fmt.Errorf("build catalog.deleted event: %w", err)
	}
	return p.producer.Publish(ctx, TopicCatalogDeleted, ev)
}
