package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumer message outcomes.
const (
	resultProcessed  = "processed"
	resultFailed     = "failed"
	resultInvalid    = "invalid"
	resultDeadLetter = "dead_letter"
)

var (
	// ConsumerMessages counts fetched messages by outcome.
	ConsumerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_messages_total",
			Help: "Total number of Kafka messages consumed, by outcome",
		},
		[]string{"topic", "consumer_group", "result"},
	)

	// ConsumerProcessingDuration observes handler execution time including retries.
	ConsumerProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Duration of Kafka message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic", "consumer_group"},
	)

	// ConsumerDuplicates counts events skipped by IdempotentHandler.
	ConsumerDuplicates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_duplicates_total",
			Help: "Total number of duplicate events skipped by the idempotency guard",
		},
		[]string{"event_type"},
	)

	// ProducerMessages counts publish attempts by outcome.
	ProducerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_messages_total",
			Help: "Total number of Kafka publish attempts, by outcome",
		},
		[]string{"topic", "result"},
	)

	// ProducerPublishDuration observes the duration of publish operations.
	ProducerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)
