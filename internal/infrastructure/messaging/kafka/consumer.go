package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// ErrConsumerRunning is returned when Start is called twice.
var ErrConsumerRunning = errors.New(errors.ErrCodeConflict, "kafka consumer already running")

// BatchTrigger starts one portfolio-wide compliance check.  The batch runner
// satisfies it; a run already in flight is not an error from the consumer's
// point of view.
type BatchTrigger interface {
	Run(ctx context.Context, triggeredBy string) (*joblog.JobLog, error)
}

// readerInterface abstracts kafka.Reader for testing.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CheckRequestConsumer consumes on-demand check requests and hands them to
// the batch runner.  Offsets are committed after handling, so a crashed
// worker re-reads the request rather than losing it.
type CheckRequestConsumer struct {
	reader  readerInterface
	trigger BatchTrigger
	logger  logging.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCheckRequestConsumer builds a group consumer on the check-request topic.
func NewCheckRequestConsumer(cfg config.KafkaConfig, trigger BatchTrigger, logger logging.Logger) *CheckRequestConsumer {
	startOffset := kafka.LastOffset
	if cfg.AutoOffsetReset == "earliest" {
		startOffset = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       TopicCheckRequest,
		StartOffset: startOffset,
	})
	return newCheckRequestConsumer(reader, trigger, logger)
}

func newCheckRequestConsumer(reader readerInterface, trigger BatchTrigger, logger logging.Logger) *CheckRequestConsumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CheckRequestConsumer{reader: reader, trigger: trigger, logger: logger}
}

// Start launches the consume loop.  It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (c *CheckRequestConsumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrConsumerRunning
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeLoop(ctx)
	}()

	c.logger.Info("check request consumer started", logging.String("topic", TopicCheckRequest))
	return nil
}

func (c *CheckRequestConsumer) consumeLoop(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to fetch message", logging.Err(err))
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit offset",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err),
			)
		}
	}
}

func (c *CheckRequestConsumer) handle(ctx context.Context, msg kafka.Message) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// A malformed request is logged and skipped; replaying it would
		// fail the same way forever.
		c.logger.Warn("skipping undecodable check request",
			logging.Int64("offset", msg.Offset), logging.Err(err))
		return
	}
	var payload CheckRequestPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		c.logger.Warn("skipping check request with bad payload",
			logging.String("event_id", envelope.EventID), logging.Err(err))
		return
	}
	if payload.RequestedBy == "" {
		payload.RequestedBy = "kafka"
	}

	job, err := c.trigger.Run(ctx, payload.RequestedBy)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeJobAlreadyRunning) {
			c.logger.Info("check request ignored, a run is already in flight",
				logging.String("event_id", envelope.EventID))
			return
		}
		c.logger.Error("requested compliance check failed",
			logging.String("event_id", envelope.EventID), logging.Err(err))
		return
	}
	c.logger.Info("requested compliance check finished",
		logging.String("event_id", envelope.EventID),
		logging.String("requested_by", payload.RequestedBy),
		logging.String("job_id", job.ID.String()),
		logging.Int("processed", job.ProcessedCount),
		logging.Int("failed", job.FailedCount),
	)
}

// Stop cancels the loop and closes the reader.
func (c *CheckRequestConsumer) Stop() error {
	if !c.running.Swap(false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.reader.Close()
}
