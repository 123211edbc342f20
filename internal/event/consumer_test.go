package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store/memory"
	pkgkafka "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingProducer keeps published events in order.
type recordingProducer struct {
	topics []string
	events []*pkgkafka.Event
	err    error
}

func (p *recordingProducer) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

// stubWriter records catalog calls and fails with err when set.
type stubWriter struct {
	upserts []UpsertedData
	deletes []DeletedData
	err     error
}

func (w *stubWriter) Upsert(_ context.Context, category string, records []domain.ProductRecord) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.upserts = append(w.upserts, UpsertedData{Category: category, Records: records})
	return len(records), nil
}

func (w *stubWriter) Delete(_ context.Context, category, id string) error {
	if w.err != nil {
		return w.err
	}
	w.deletes = append(w.deletes, DeletedData{Category: category, ID: id})
	return nil
}

func ids(recs []domain.ProductRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

// --- Consumer Tests ---

func TestConsumer_HandleUpserted(t *testing.T) {
	w := &stubWriter{}
	c := NewConsumer(w, newTestLogger())

	ev, err := pkgkafka.NewEvent(TopicCatalogUpserted, "bracelets", "test", UpsertedData{
		Category: "bracelets",
		Records:  []domain.ProductRecord{{ID: "b-1", Title: "Cuff", Price: 300}},
	})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), ev))
	require.Len(t, w.upserts, 1)
	assert.Equal(t, "bracelets", w.upserts[0].Category)
	assert.Equal(t, []string{"b-1"}, ids(w.upserts[0].Records))
}

func TestConsumer_HandleDeleted(t *testing.T) {
	w := &stubWriter{}
	c := NewConsumer(w, newTestLogger())

	ev, err := pkgkafka.NewEvent(TopicCatalogDeleted, "diamonds", "test", DeletedData{Category: "diamonds", ID: "d-9"})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), ev))
	assert.Equal(t, []DeletedData{{Category: "diamonds", ID: "d-9"}}, w.deletes)
}

func TestConsumer_UnknownTypeIsIgnored(t *testing.T) {
	w := &stubWriter{}
	c := NewConsumer(w, newTestLogger())

	err := c.Handle(context.Background(), &pkgkafka.Event{ID: "e-1", Type: "jewelry.order.created", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Empty(t, w.upserts)
	assert.Empty(t, w.deletes)
}

func TestConsumer_Errors(t *testing.T) {
	t.Run("malformed payload", func(t *testing.T) {
		c := NewConsumer(&stubWriter{}, newTestLogger())
		err := c.Handle(context.Background(), &pkgkafka.Event{Type: TopicCatalogUpserted, Data: json.RawMessage(`[1,2]`)})
		assert.ErrorContains(t, err, "decode catalog.upserted data")
	})

	t.Run("empty payload", func(t *testing.T) {
		c := NewConsumer(&stubWriter{}, newTestLogger())
		err := c.Handle(context.Background(), &pkgkafka.Event{Type: TopicCatalogDeleted})
		assert.ErrorIs(t, err, pkgkafka.ErrInvalidEvent)
	})

	t.Run("writer failure", func(t *testing.T) {
		cause := errors.New("store unavailable")
		c := NewConsumer(&stubWriter{err: cause}, newTestLogger())
		ev, err := pkgkafka.NewEvent(TopicCatalogDeleted, "settings", "test", DeletedData{Category: "settings", ID: "s-1"})
		require.NoError(t, err)
		assert.ErrorIs(t, c.Handle(context.Background(), ev), cause)
	})
}

// --- Publisher Tests ---

func TestPublisher_EventsRoundTripThroughConsumer(t *testing.T) {
	ctx := context.Background()
	prod := &recordingProducer{}
	pub := NewPublisher(prod, "seed")

	require.NoError(t, pub.PublishUpserted(ctx, "necklaces", []domain.ProductRecord{
		{ID: "n-1", Title: "Lariat", Price: 450, IsAvailable: true},
		{ID: "n-2", Title: "Choker", Price: 300, IsAvailable: true},
	}))
	require.NoError(t, pub.PublishDeleted(ctx, "necklaces", "n-1"))

	assert.Equal(t, []string{TopicCatalogUpserted, TopicCatalogDeleted}, prod.topics)
	assert.Equal(t, "necklaces", prod.events[0].Key)
	assert.Equal(t, "seed", prod.events[0].Source)

	st := memory.New()
	c := NewConsumer(service.NewCatalogService(st, nil, newTestLogger()), newTestLogger())
	handle := pkgkafka.IdempotentHandler(pkgkafka.NewMemoryIdempotencyStore(time.Hour), c.Handle, newTestLogger())

	for _, ev := range prod.events {
		raw, err := ev.Marshal()
		require.NoError(t, err)
		decoded, err := pkgkafka.UnmarshalEvent(raw)
		require.NoError(t, err)
		require.NoError(t, handle(ctx, decoded))
	}
	// Redelivery of the upsert is skipped, so n-1 stays deleted.
	require.NoError(t, handle(ctx, prod.events[0]))

	recs, err := st.Collection("necklaces").Find(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n-2"}, ids(recs))
}

func TestPublisher_ProducerFailure(t *testing.T) {
	cause := errors.New("broker unreachable")
	pub := NewPublisher(&recordingProducer{err: cause}, "seed")

	assert.ErrorIs(t, pub.PublishDeleted(context.Background(), "gemstones", "g-1"), cause)
}
