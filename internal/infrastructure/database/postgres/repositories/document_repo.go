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

const documentColumns = `id, client_id, period, doc_type, received_at,
	reference, created_at, updated_at, version`

// DocumentRepository is the PostgreSQL implementation of filing.DocumentRepository.
type DocumentRepository struct {
	baseRepo
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(conn *postgres.Connection, logger logging.Logger, metrics *prometheus.AppMetrics) *DocumentRepository {
	return &DocumentRepository{baseRepo: newBaseRepo(conn.DB(), logger, metrics)}
}

// Create registers a required document.  The (client_id, period, doc_type)
// unique constraint means each document is required at most once per period.
func (r *DocumentRepository) Create(ctx context.Context, d *filing.Document) error {
	defer r.observe("document_create", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, client_id, period, doc_type, received_at,
			reference, created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.ClientID, d.Period, d.DocType, d.ReceivedAt,
		d.Reference, d.CreatedAt, d.UpdatedAt, d.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeConflict,
				"document %s already required for period %s", d.DocType, d.Period)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert document")
	}
	return nil
}

// GetByID returns the document or ErrCodeDocumentNotFound.
func (r *DocumentRepository) GetByID(ctx context.Context, id common.ID) (*filing.Document, error) {
	defer r.observe("document_get_by_id", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	var d filing.Document
	err := row.Scan(
		&d.ID, &d.ClientID, &d.Period, &d.DocType, &d.ReceivedAt,
		&d.Reference, &d.CreatedAt, &d.UpdatedAt, &d.Version,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan document")
	}
	return &d, nil
}

// Update records document receipt with optimistic versioning.
func (r *DocumentRepository) Update(ctx context.Context, d *filing.Document) error {
	defer r.observe("document_update", time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET received_at = $1, reference = $2, updated_at = $3, version = $4
		WHERE id = $5 AND version = $6`,
		d.ReceivedAt, d.Reference, d.UpdatedAt, d.Version,
		d.ID, d.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update document")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read update result")
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeConflict,
			"document %s was modified concurrently or does not exist", d.ID)
	}
	return nil
}

// CountMissing counts required documents still outstanding in the window.
func (r *DocumentRepository) CountMissing(ctx context.Context, clientID common.ID, periods []filing.Period) (int, error) {
	defer r.observe("document_count_missing", time.Now())

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE client_id = $1 AND period = ANY($2) AND received_at IS NULL`,
		clientID, pq.Array(periodStrings(periods))).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count missing documents")
	}
	return count, nil
}
