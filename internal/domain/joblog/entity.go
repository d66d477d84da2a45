// Package joblog implements batch-run bookkeeping: one JobLog row per batch
// assessment run, carrying the status lifecycle, retry budget, and the
// processed/successful/failed counters the operations dashboard reads.
package joblog

import (
	"fmt"
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// JobType names the kind of batch work a JobLog tracks.
type JobType string

// JobTypeComplianceCheck is the scheduled/requested batch assessment run.
const JobTypeComplianceCheck JobType = "compliance_check"

// Status is the lifecycle state of a batch run.
//
//	queued ──► running ──► completed
//	              │
//	              ├──► retrying ──► running (retry attempt)
//	              └──► failed
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRetrying  Status = "retrying"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s names a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed, StatusRetrying:
		return true
	}
	return false
}

// JobLog is the aggregate root for one batch run.  Counters are cumulative
// across retry attempts; a retry resumes the same JobLog rather than opening
// a new one.
type JobLog struct {
	common.BaseEntity

	JobType     JobType `json:"job_type"`
	Status      Status  `json:"status"`
	TriggeredBy string  `json:"triggered_by"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	ProcessedCount  int `json:"processed_count"`
	SuccessfulCount int `json:"successful_count"`
	FailedCount     int `json:"failed_count"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ErrorMessage and ErrorStack are set only when the run (not an
	// individual client) fails.
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorStack   string `json:"error_stack,omitempty"`
}

// New creates a queued JobLog.
func New(jobType JobType, maxRetries int, triggeredBy string) (*JobLog, error) {
	if jobType == "" {
		return nil, errors.Validation("job type must not be empty")
	}
	if maxRetries < 0 {
		return nil, errors.Validation("max retries must be ≥ 0")
	}
	if triggeredBy == "" {
		return nil, errors.Validation("triggered-by must not be empty")
	}

	now := time.Now().UTC()
	return &JobLog{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		JobType:     jobType,
		Status:      StatusQueued,
		TriggeredBy: triggeredBy,
		MaxRetries:  maxRetries,
	}, nil
}

// Start moves the job into running, either from queued (first attempt) or
// from retrying (subsequent attempt).
func (j *JobLog) Start(now time.Time) error {
	if j.Status != StatusQueued && j.Status != StatusRetrying {
		return errors.New(errors.ErrCodeJobStateInvalid, fmt.Sprintf(
			"cannot start job in status %s", j.Status))
	}
	at := now.UTC()
	if j.StartedAt == nil {
		j.StartedAt = &at
	}
	j.Status = StatusRunning
	j.Touch(at)
	return nil
}

// RecordClientResult counts one processed client.  Per-client failures are
// isolated: they bump the failed counter but never change the job status.
func (j *JobLog) RecordClientResult(succeeded bool) error {
	if j.Status != StatusRunning {
		return errors.New(errors.ErrCodeJobStateInvalid,
			"client results can only be recorded on a running job")
	}
	j.ProcessedCount++
	if succeeded {
		j.SuccessfulCount++
	} else {
		j.FailedCount++
	}
	return nil
}

// Complete moves a running job to completed.
func (j *JobLog) Complete(now time.Time) error {
	if j.Status != StatusRunning {
		return errors.New(errors.ErrCodeJobStateInvalid, fmt.Sprintf(
			"cannot complete job in status %s", j.Status))
	}
	at := now.UTC()
	j.Status = StatusCompleted
	j.CompletedAt = &at
	j.Touch(at)
	return nil
}

// Fail records a run-level failure.  While the retry budget lasts the job
// moves to retrying; past it the job fails terminally.  The returned status
// tells the caller whether to reschedule.
func (j *JobLog) Fail(now time.Time, cause error) (Status, error) {
	if j.Status != StatusRunning {
		return j.Status, errors.New(errors.ErrCodeJobStateInvalid, fmt.Sprintf(
			"cannot fail job in status %s", j.Status))
	}
	at := now.UTC()
	if cause != nil {
		j.ErrorMessage = cause.Error()
		if appErr, ok := cause.(*errors.AppError); ok {
			j.ErrorStack = appErr.Stack
		}
	}
	if j.RetryCount < j.MaxRetries {
		j.RetryCount++
		j.Status = StatusRetrying
	} else {
		j.Status = StatusFailed
		j.CompletedAt = &at
	}
	j.Touch(at)
	return j.Status, nil
}
