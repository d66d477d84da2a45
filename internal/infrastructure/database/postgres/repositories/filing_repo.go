package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

const filingColumns = `id, client_id, return_type, period, due_date,
	filed_at, amendment_count, created_at, updated_at, version`

// FilingRepository is the PostgreSQL implementation of filing.FilingRepository.
type FilingRepository struct {
	baseRepo
}

// NewFilingRepository constructs a FilingRepository.
func NewFilingRepository(conn *postgres.Connection, logger logging.Logger, metrics *prometheus.AppMetrics) *FilingRepository {
	return &FilingRepository{baseRepo: newBaseRepo(conn.DB(), logger, metrics)}
}

// Create inserts a filing obligation.  The (client_id, return_type, period)
// unique constraint rejects duplicate obligations.
func (r *FilingRepository) Create(ctx context.Context, f *filing.Filing) error {
	defer r.observe("filing_create", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO filings (
			id, client_id, return_type, period, due_date,
			filed_at, amendment_count, created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		f.ID, f.ClientID, f.ReturnType, f.Period, f.DueDate,
		f.FiledAt, f.AmendmentCount, f.CreatedAt, f.UpdatedAt, f.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeConflict,
				"filing %s for period %s already exists", f.ReturnType, f.Period)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert filing")
	}
	return nil
}

// GetByID returns the filing or ErrCodeFilingNotFound.
func (r *FilingRepository) GetByID(ctx context.Context, id common.ID) (*filing.Filing, error) {
	defer r.observe("filing_get_by_id", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+filingColumns+` FROM filings WHERE id = $1`, id)
	return scanFiling(row)
}

// Update rewrites the mutable fields with optimistic versioning.
func (r *FilingRepository) Update(ctx context.Context, f *filing.Filing) error {
	defer r.observe("filing_update", time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE filings
		SET filed_at = $1, amendment_count = $2, updated_at = $3, version = $4
		WHERE id = $5 AND version = $6`,
		f.FiledAt, f.AmendmentCount, f.UpdatedAt, f.Version,
		f.ID, f.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update filing")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read update result")
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeConflict,
			"filing %s was modified concurrently or does not exist", f.ID)
	}
	return nil
}

// ListByClientPeriods returns the client's filings in the window, oldest first.
func (r *FilingRepository) ListByClientPeriods(ctx context.Context, clientID common.ID, periods []filing.Period) ([]*filing.Filing, error) {
	defer r.observe("filing_list_by_periods", time.Now())

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+filingColumns+` FROM filings
		 WHERE client_id = $1 AND period = ANY($2)
		 ORDER BY period, return_type`,
		clientID, pq.Array(periodStrings(periods)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list filings")
	}
	return collectFilings(rows)
}

// ListByClient returns one page of the client's filings, newest period first.
func (r *FilingRepository) ListByClient(ctx context.Context, clientID common.ID, p common.Pagination) ([]*filing.Filing, int64, error) {
	defer r.observe("filing_list_by_client", time.Now())

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM filings WHERE client_id = $1`, clientID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count filings")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+filingColumns+` FROM filings
		 WHERE client_id = $1
		 ORDER BY period DESC, return_type
		 LIMIT $2 OFFSET $3`,
		clientID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list filings")
	}
	filings, err := collectFilings(rows)
	if err != nil {
		return nil, 0, err
	}
	return filings, total, nil
}

func collectFilings(rows *sql.Rows) ([]*filing.Filing, error) {
	defer rows.Close()

	var out []*filing.Filing
	for rows.Next() {
		f, err := scanFiling(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate filings")
	}
	return out, nil
}

func scanFiling(s scanner) (*filing.Filing, error) {
	var f filing.Filing
	err := s.Scan(
		&f.ID, &f.ClientID, &f.ReturnType, &f.Period, &f.DueDate,
		&f.FiledAt, &f.AmendmentCount, &f.CreatedAt, &f.UpdatedAt, &f.Version,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeFilingNotFound, "filing not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan filing")
	}
	return &f, nil
}

func periodStrings(periods []filing.Period) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = string(p)
	}
	return out
}
