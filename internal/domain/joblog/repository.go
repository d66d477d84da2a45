package joblog

import (
	"context"

	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// Repository defines the persistence contract for job logs.
type Repository interface {
	Create(ctx context.Context, j *JobLog) error
	GetByID(ctx context.Context, id common.ID) (*JobLog, error)
	Update(ctx context.Context, j *JobLog) error

	// List returns one page of job logs, newest first, optionally filtered
	// by status ("" means all).
	List(ctx context.Context, status Status, p common.Pagination) ([]*JobLog, int64, error)

	// HasActive reports whether a job of the given type is currently queued,
	// running, or retrying.  Used to serialize batch runs.
	HasActive(ctx context.Context, jobType JobType) (bool, error)
}
