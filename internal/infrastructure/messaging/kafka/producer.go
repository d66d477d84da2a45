package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/complyhub/gst-sentinel/internal/application/assessment"
	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// ErrProducerClosed is returned for publishes after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "kafka producer is closed")

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes assessment events.  It satisfies the application
// layer's EventPublisher contract.
type Producer struct {
	writer  writerInterface
	source  string
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	closed  atomic.Bool
}

// NewProducer builds a producer for the configured brokers.  Messages are
// keyed by client ID, so one client's events stay ordered on one partition.
func NewProducer(cfg config.KafkaConfig, source string, logger logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return newProducer(writer, source, logger, metrics)
}

func newProducer(writer writerInterface, source string, logger logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Producer{writer: writer, source: source, logger: logger, metrics: metrics}
}

// PublishAssessmentCompleted emits one event for a persisted assessment.
func (p *Producer) PublishAssessmentCompleted(ctx context.Context, event assessment.CompletedEvent) error {
	return p.publish(ctx, TopicAssessmentCompleted, event.ClientID, event)
}

// PublishCheckRequest asks the worker to run a portfolio-wide check.
func (p *Producer) PublishCheckRequest(ctx context.Context, requestedBy string) error {
	payload := CheckRequestPayload{RequestedBy: requestedBy, RequestedAt: time.Now().UTC()}
	return p.publish(ctx, TopicCheckRequest, requestedBy, payload)
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	envelope, err := NewEnvelope(topic, p.source, payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  envelope.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish event")
	}

	p.metrics.EventsPublished.WithLabelValues(topic, "success").Inc()
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", envelope.EventID),
	)
	return nil
}

// Close flushes and shuts down the writer.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
