package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

const jobColumns = `id, job_type, status, triggered_by, retry_count, max_retries,
	processed_count, successful_count, failed_count,
	started_at, completed_at, error_message, error_stack,
	created_at, updated_at, version`

// JobLogRepository is the PostgreSQL implementation of joblog.Repository.
type JobLogRepository struct {
	baseRepo
}

// NewJobLogRepository constructs a JobLogRepository.
func NewJobLogRepository(conn *postgres.Connection, logger logging.Logger, metrics *prometheus.AppMetrics) *JobLogRepository {
	return &JobLogRepository{baseRepo: newBaseRepo(conn.DB(), logger, metrics)}
}

// Create inserts a queued job log.
func (r *JobLogRepository) Create(ctx context.Context, j *joblog.JobLog) error {
	defer r.observe("joblog_create", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_logs (
			id, job_type, status, triggered_by, retry_count, max_retries,
			processed_count, successful_count, failed_count,
			started_at, completed_at, error_message, error_stack,
			created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		j.ID, j.JobType, j.Status, j.TriggeredBy, j.RetryCount, j.MaxRetries,
		j.ProcessedCount, j.SuccessfulCount, j.FailedCount,
		j.StartedAt, j.CompletedAt, j.ErrorMessage, j.ErrorStack,
		j.CreatedAt, j.UpdatedAt, j.Version,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert job log")
	}
	return nil
}

// GetByID returns the job log or ErrCodeJobNotFound.
func (r *JobLogRepository) GetByID(ctx context.Context, id common.ID) (*joblog.JobLog, error) {
	defer r.observe("joblog_get_by_id", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_logs WHERE id = $1`, id)
	return scanJobLog(row)
}

// Update rewrites the job's lifecycle fields.  Job logs are written only by
// their owning runner, so no optimistic version guard is applied.
func (r *JobLogRepository) Update(ctx context.Context, j *joblog.JobLog) error {
	defer r.observe("joblog_update", time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE job_logs
		SET status = $1, retry_count = $2,
		    processed_count = $3, successful_count = $4, failed_count = $5,
		    started_at = $6, completed_at = $7,
		    error_message = $8, error_stack = $9,
		    updated_at = $10, version = $11
		WHERE id = $12`,
		j.Status, j.RetryCount,
		j.ProcessedCount, j.SuccessfulCount, j.FailedCount,
		j.StartedAt, j.CompletedAt,
		j.ErrorMessage, j.ErrorStack,
		j.UpdatedAt, j.Version,
		j.ID,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update job log")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read update result")
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeJobNotFound, "job log %s does not exist", j.ID)
	}
	return nil
}

// List returns one page of job logs, newest first.  An empty status matches
// every job.
func (r *JobLogRepository) List(ctx context.Context, status joblog.Status, p common.Pagination) ([]*joblog.JobLog, int64, error) {
	defer r.observe("joblog_list", time.Now())

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_logs WHERE ($1 = '' OR status = $1)`,
		status).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count job logs")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_logs
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		status, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list job logs")
	}
	defer rows.Close()

	var out []*joblog.JobLog
	for rows.Next() {
		j, err := scanJobLog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate job logs")
	}
	return out, total, nil
}

// HasActive reports whether any job of the type is queued, running, or retrying.
func (r *JobLogRepository) HasActive(ctx context.Context, jobType joblog.JobType) (bool, error) {
	defer r.observe("joblog_has_active", time.Now())

	var active bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM job_logs
			WHERE job_type = $1 AND status IN ($2, $3, $4)
		)`,
		jobType, joblog.StatusQueued, joblog.StatusRunning, joblog.StatusRetrying).Scan(&active)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check active jobs")
	}
	return active, nil
}

func scanJobLog(s scanner) (*joblog.JobLog, error) {
	var j joblog.JobLog
	err := s.Scan(
		&j.ID, &j.JobType, &j.Status, &j.TriggeredBy, &j.RetryCount, &j.MaxRetries,
		&j.ProcessedCount, &j.SuccessfulCount, &j.FailedCount,
		&j.StartedAt, &j.CompletedAt, &j.ErrorMessage, &j.ErrorStack,
		&j.CreatedAt, &j.UpdatedAt, &j.Version,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job log not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan job log")
	}
	return &j, nil
}
