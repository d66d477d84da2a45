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

const invoiceColumns = `id, client_id, kind, period, invoice_number,
	taxable_value, tax_amount, match_status, created_at, updated_at, version`

// InvoiceRepository is the PostgreSQL implementation of filing.InvoiceRepository.
type InvoiceRepository struct {
	baseRepo
}

// NewInvoiceRepository constructs an InvoiceRepository.
func NewInvoiceRepository(conn *postgres.Connection, logger logging.Logger, metrics *prometheus.AppMetrics) *InvoiceRepository {
	return &InvoiceRepository{baseRepo: newBaseRepo(conn.DB(), logger, metrics)}
}

// Create books an invoice.  The (client_id, kind, invoice_number, period)
// unique constraint rejects double booking.
func (r *InvoiceRepository) Create(ctx context.Context, inv *filing.Invoice) error {
	defer r.observe("invoice_create", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (
			id, client_id, kind, period, invoice_number,
			taxable_value, tax_amount, match_status, created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.ClientID, inv.Kind, inv.Period, inv.InvoiceNumber,
		inv.TaxableValue, inv.TaxAmount, inv.MatchStatus, inv.CreatedAt, inv.UpdatedAt, inv.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeConflict,
				"invoice %s already booked for period %s", inv.InvoiceNumber, inv.Period)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert invoice")
	}
	return nil
}

// GetByID returns the invoice or ErrCodeInvoiceNotFound.
func (r *InvoiceRepository) GetByID(ctx context.Context, id common.ID) (*filing.Invoice, error) {
	defer r.observe("invoice_get_by_id", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// Update rewrites the reconciliation state with optimistic versioning.
func (r *InvoiceRepository) Update(ctx context.Context, inv *filing.Invoice) error {
	defer r.observe("invoice_update", time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET match_status = $1, updated_at = $2, version = $3
		WHERE id = $4 AND version = $5`,
		inv.MatchStatus, inv.UpdatedAt, inv.Version,
		inv.ID, inv.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update invoice")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read update result")
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeConflict,
			"invoice %s was modified concurrently or does not exist", inv.ID)
	}
	return nil
}

// ListByClientPeriods returns the client's invoices in the window.
func (r *InvoiceRepository) ListByClientPeriods(ctx context.Context, clientID common.ID, periods []filing.Period) ([]*filing.Invoice, error) {
	defer r.observe("invoice_list_by_periods", time.Now())

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE client_id = $1 AND period = ANY($2)
		 ORDER BY period, invoice_number`,
		clientID, pq.Array(periodStrings(periods)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list invoices")
	}
	defer rows.Close()

	var out []*filing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate invoices")
	}
	return out, nil
}

func scanInvoice(s scanner) (*filing.Invoice, error) {
	var inv filing.Invoice
	err := s.Scan(
		&inv.ID, &inv.ClientID, &inv.Kind, &inv.Period, &inv.InvoiceNumber,
		&inv.TaxableValue, &inv.TaxAmount, &inv.MatchStatus, &inv.CreatedAt, &inv.UpdatedAt, &inv.Version,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan invoice")
	}
	return &inv, nil
}
