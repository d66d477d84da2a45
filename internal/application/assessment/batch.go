package assessment

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// ClientAssessor runs one client assessment; implemented by Service.
type ClientAssessor interface {
	AssessClient(ctx context.Context, clientID common.ID, assessedBy string) (*domain.ClientRiskRecord, error)
}

// BatchConfig tunes a batch run.
type BatchConfig struct {
	// Concurrency is the number of clients assessed in parallel.
	Concurrency int

	// MaxRetries is the run-level retry budget.  Per-client failures never
	// consume it; only paging or cancellation failures do.
	MaxRetries int

	// RetryBackoff is the pause between run attempts.
	RetryBackoff time.Duration

	// ClientPageSize is how many client IDs are fetched per page.
	ClientPageSize int
}

// BatchRunner executes one compliance check over every assessable client,
// recording progress in a JobLog.
type BatchRunner struct {
	assessor   ClientAssessor
	clientRepo client.Repository
	jobRepo    joblog.Repository
	cfg        BatchConfig
	metrics    *prometheus.AppMetrics
	logger     logging.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewBatchRunner wires a BatchRunner.  Zero config fields get safe defaults.
func NewBatchRunner(
	assessor ClientAssessor,
	clientRepo client.Repository,
	jobRepo joblog.Repository,
	cfg BatchConfig,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
) *BatchRunner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 8
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.ClientPageSize < 1 {
		cfg.ClientPageSize = 500
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BatchRunner{
		assessor:   assessor,
		clientRepo: clientRepo,
		jobRepo:    jobRepo,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger.Named("batch"),
		now:        func() time.Time { return time.Now().UTC() },
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run executes one batch compliance check and returns its JobLog.  Only one
// compliance check may be active at a time; a second request is rejected with
// ErrCodeJobAlreadyRunning.
func (r *BatchRunner) Run(ctx context.Context, triggeredBy string) (*joblog.JobLog, error) {
	active, err := r.jobRepo.HasActive(ctx, joblog.JobTypeComplianceCheck)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, errors.New(errors.ErrCodeJobAlreadyRunning,
			"a compliance check is already in progress")
	}

	job, err := joblog.New(joblog.JobTypeComplianceCheck, r.cfg.MaxRetries, triggeredBy)
	if err != nil {
		return nil, err
	}
	if err := r.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	for {
		if err := job.Start(r.now()); err != nil {
			return job, err
		}
		if err := r.jobRepo.Update(ctx, job); err != nil {
			return job, err
		}
		started := r.now()

		runErr := r.runAttempt(ctx, job)
		r.metrics.BatchRunDuration.WithLabelValues().Observe(r.now().Sub(started).Seconds())

		if runErr == nil {
			if err := job.Complete(r.now()); err != nil {
				return job, err
			}
			r.finish(ctx, job)
			return job, nil
		}

		status, failErr := job.Fail(r.now(), runErr)
		if failErr != nil {
			return job, failErr
		}
		r.finish(ctx, job)
		if status == joblog.StatusFailed {
			r.logger.Error("compliance check failed",
				logging.String("job_id", job.ID.String()),
				logging.Int("retries", job.RetryCount),
				logging.Err(runErr),
			)
			return job, runErr
		}

		r.logger.Warn("compliance check attempt failed, retrying",
			logging.String("job_id", job.ID.String()),
			logging.Int("attempt", job.RetryCount),
			logging.Err(runErr),
		)
		if err := r.sleep(ctx, r.cfg.RetryBackoff); err != nil {
			return job, err
		}
	}
}

// runAttempt walks every assessable client once.  Per-client failures are
// counted and isolated; only paging errors or cancellation abort the attempt.
func (r *BatchRunner) runAttempt(ctx context.Context, job *joblog.JobLog) error {
	var (
		mu      sync.Mutex
		afterID common.ID
	)
	r.metrics.BatchActiveWorkers.WithLabelValues().Set(float64(r.cfg.Concurrency))
	defer r.metrics.BatchActiveWorkers.WithLabelValues().Set(0)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids, err := r.clientRepo.ListAssessable(ctx, afterID, r.cfg.ClientPageSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		afterID = ids[len(ids)-1]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Concurrency)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				_, assessErr := r.assessor.AssessClient(gctx, id, "batch:"+string(job.JobType))
				if assessErr != nil {
					r.logger.Warn("client assessment failed",
						logging.String("client_id", id.String()),
						logging.String("job_id", job.ID.String()),
						logging.Err(assessErr),
					)
				}
				mu.Lock()
				recordErr := job.RecordClientResult(assessErr == nil)
				mu.Unlock()
				return recordErr
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := r.jobRepo.Update(ctx, job); err != nil {
			return err
		}
	}

	r.publishCounters(job)
	return nil
}

func (r *BatchRunner) finish(ctx context.Context, job *joblog.JobLog) {
	r.publishCounters(job)
	r.metrics.BatchRunsTotal.WithLabelValues(string(job.Status)).Inc()
	if err := r.jobRepo.Update(ctx, job); err != nil {
		r.logger.Error("job log update failed",
			logging.String("job_id", job.ID.String()), logging.Err(err))
	}
	r.logger.Info("compliance check finished",
		logging.String("job_id", job.ID.String()),
		logging.String("status", string(job.Status)),
		logging.Int("processed", job.ProcessedCount),
		logging.Int("successful", job.SuccessfulCount),
		logging.Int("failed", job.FailedCount),
	)
}

func (r *BatchRunner) publishCounters(job *joblog.JobLog) {
	r.metrics.BatchClientsGauge.WithLabelValues("processed").Set(float64(job.ProcessedCount))
	r.metrics.BatchClientsGauge.WithLabelValues("successful").Set(float64(job.SuccessfulCount))
	r.metrics.BatchClientsGauge.WithLabelValues("failed").Set(float64(job.FailedCount))
}
