package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

const clientColumns = `id, gstin, legal_name, trade_name, state_code,
	filing_frequency, status, created_at, updated_at, version`

// ClientRepository is the PostgreSQL implementation of client.Repository.
type ClientRepository struct {
	baseRepo
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(conn *postgres.Connection, logger logging.Logger, metrics *prometheus.AppMetrics) *ClientRepository {
	return &ClientRepository{baseRepo: newBaseRepo(conn.DB(), logger, metrics)}
}

// Create inserts a new client.  A duplicate GSTIN is reported as
// ErrCodeClientAlreadyExists.
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	defer r.observe("client_create", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, gstin, legal_name, trade_name, state_code,
			filing_frequency, status, created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.GSTIN, c.LegalName, c.TradeName, c.StateCode,
		c.FilingFrequency, c.Status, c.CreatedAt, c.UpdatedAt, c.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeClientAlreadyExists,
				"client with GSTIN %s already registered", c.GSTIN)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert client")
	}
	return nil
}

// GetByID returns the client or ErrCodeClientNotFound.
func (r *ClientRepository) GetByID(ctx context.Context, id common.ID) (*client.Client, error) {
	defer r.observe("client_get_by_id", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// GetByGSTIN returns the client or ErrCodeClientNotFound.
func (r *ClientRepository) GetByGSTIN(ctx context.Context, gstin string) (*client.Client, error) {
	defer r.observe("client_get_by_gstin", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE gstin = $1`, gstin)
	return scanClient(row)
}

// Update rewrites the mutable fields, guarded by optimistic versioning: the
// row is only touched when the stored version matches the entity's previous
// version.
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	defer r.observe("client_update", time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET legal_name = $1, trade_name = $2, filing_frequency = $3,
		    status = $4, updated_at = $5, version = $6
		WHERE id = $7 AND version = $8`,
		c.LegalName, c.TradeName, c.FilingFrequency,
		c.Status, c.UpdatedAt, c.Version,
		c.ID, c.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update client")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read update result")
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeConflict,
			"client %s was modified concurrently or does not exist", c.ID)
	}
	return nil
}

// List returns one page of clients ordered by legal name, plus the total.
func (r *ClientRepository) List(ctx context.Context, p common.Pagination) ([]*client.Client, int64, error) {
	defer r.observe("client_list", time.Now())

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count clients")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY legal_name, id LIMIT $1 OFFSET $2`,
		p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list clients")
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate clients")
	}
	return out, total, nil
}

// ListAssessable pages active client IDs by keyset, in stable id order.
func (r *ClientRepository) ListAssessable(ctx context.Context, afterID common.ID, limit int) ([]common.ID, error) {
	defer r.observe("client_list_assessable", time.Now())

	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM clients
		WHERE status = $1 AND id > $2
		ORDER BY id
		LIMIT $3`,
		client.StatusActive, afterID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list assessable clients")
	}
	defer rows.Close()

	var ids []common.ID
	for rows.Next() {
		var id common.ID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan client id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate client ids")
	}
	return ids, nil
}

func scanClient(s scanner) (*client.Client, error) {
	var c client.Client
	err := s.Scan(
		&c.ID, &c.GSTIN, &c.LegalName, &c.TradeName, &c.StateCode,
		&c.FilingFrequency, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.Version,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeClientNotFound, "client not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan client")
	}
	return &c, nil
}
