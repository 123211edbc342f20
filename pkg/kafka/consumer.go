package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxAttempts = 3
	defaultRetryWait   = 100 * time.Millisecond
	tracerName         = "github.com/AsimRauf/jewellery-store-sub002/pkg/kafka"
)

// Handler processes one event. A returned error triggers a retry.
type Handler func(ctx context.Context, event *Event) error

// DeadLetterPublisher receives messages whose handler kept failing.
type DeadLetterPublisher interface {
	PublishDeadLetter(ctx context.Context, original kafka.Message, cause error, group string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int

	// MaxAttempts bounds handler attempts per message. Zero means three.
	MaxAttempts int

	// RetryWait is the base wait between attempts, growing linearly.
	RetryWait time.Duration

	// DeadLetter, when set, receives messages that exhaust their attempts.
	DeadLetter DeadLetterPublisher
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads events from a consumer group and dispatches them to a
// handler. Every message is committed once handled, rejected or dead-lettered,
// so a poison message never blocks its partition.
type Consumer struct {
	reader      messageReader
	group       string
	topics      []string
	handler     Handler
	logger      *slog.Logger
	maxAttempts int
	retryWait   time.Duration
	deadLetter  DeadLetterPublisher
	closeOnce   sync.Once
}

// NewConsumer creates a consumer subscribed to cfg.Topics.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return newConsumer(r, cfg, handler, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	c := &Consumer{
		reader:      r,
		group:       cfg.GroupID,
		topics:      cfg.Topics,
		handler:     handler,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		retryWait:   cfg.RetryWait,
		deadLetter:  cfg.DeadLetter,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.retryWait <= 0 {
		c.retryWait = defaultRetryWait
	}
	return c
}

// Start consumes messages until ctx is canceled or the reader is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.Any("topics", c.topics),
		slog.String("group", c.group),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles one message. It never returns an error; the outcome is
// logged and counted and the caller commits the message either way.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctx = ExtractTrace(ctx, &msg)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "kafka.consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.consumer.group.name", c.group),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		ConsumerProcessingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "failed to decode event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		ConsumerMessages.WithLabelValues(msg.Topic, c.group, resultInvalid).Inc()
		c.sendDeadLetter(ctx, msg, err)
		return
	}
	span.SetAttributes(attribute.String("event.type", event.Type))

	if err := c.handleWithRetry(ctx, msg, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "handler failed after all attempts",
			slog.String("event_type", event.Type),
			slog.String("key", event.Key),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		ConsumerMessages.WithLabelValues(msg.Topic, c.group, resultFailed).Inc()
		c.sendDeadLetter(ctx, msg, err)
		return
	}

	ConsumerMessages.WithLabelValues(msg.Topic, c.group, resultProcessed).Inc()
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.handler(ctx, event); err == nil {
			return nil
		}
		if attempt == c.maxAttempts {
			break
		}

		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.Type),
			slog.String("key", event.Key),
			slog.String("topic", msg.Topic),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryWait):
		}
	}
	return err
}

func (c *Consumer) sendDeadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.deadLetter == nil {
		return
	}
	if err := c.deadLetter.PublishDeadLetter(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "failed to dead-letter message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	ConsumerMessages.WithLabelValues(msg.Topic, c.group, resultDeadLetter).Inc()
}

// Close closes the underlying reader. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
