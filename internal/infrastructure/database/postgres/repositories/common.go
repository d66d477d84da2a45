// Package repositories provides the PostgreSQL implementations of every
// domain repository interface.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// baseRepo carries the shared plumbing: executor, logger, and query timing.
type baseRepo struct {
	db      queryExecutor
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func newBaseRepo(db queryExecutor, logger logging.Logger, metrics *prometheus.AppMetrics) baseRepo {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return baseRepo{db: db, logger: logger, metrics: metrics}
}

// observe records the duration of one named query.
func (b baseRepo) observe(query string, start time.Time) {
	b.metrics.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// uniqueViolation is the Postgres error code for unique-constraint breaches.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
