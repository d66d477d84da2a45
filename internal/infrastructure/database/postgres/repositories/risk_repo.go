package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

const riskColumns = `client_id, risk_score, compliance_status,
	has_overdue_filing, has_unresolved_itc_mismatch, has_missing_documents, has_recurrent_issues,
	filing_trend_score, document_compliance_score, itc_compliance_score,
	previous_risk_score, score_change_percentage, recommended_actions,
	last_assessed_at, assessed_by`

// PolicyProvider yields the active scoring policy; the engine implements it.
type PolicyProvider interface {
	Policy() assessment.Policy
}

// RiskRepository is the PostgreSQL implementation of assessment.Repository.
// One row exists per client, enforced by the primary key on client_id and
// the single-statement upsert.
type RiskRepository struct {
	baseRepo
	policies PolicyProvider
}

// NewRiskRepository constructs a RiskRepository.  policies guards writes:
// a record whose status does not follow from its score and flags under the
// active policy is rejected, so hand-edited statuses never reach the table.
func NewRiskRepository(conn *postgres.Connection, policies PolicyProvider, logger logging.Logger, metrics *prometheus.AppMetrics) *RiskRepository {
	return &RiskRepository{
		baseRepo: newBaseRepo(conn.DB(), logger, metrics),
		policies: policies,
	}
}

// Upsert inserts or replaces the record for record.ClientID in a single
// statement.  Read-modify-write callers serialize per client above this layer.
func (r *RiskRepository) Upsert(ctx context.Context, record *assessment.ClientRiskRecord) error {
	defer r.observe("risk_upsert", time.Now())

	if r.policies != nil && !record.ConsistentWith(r.policies.Policy()) {
		return errors.Newf(errors.ErrCodeStatusWriteForbidden,
			"compliance status %q does not follow from score %d under the active policy",
			record.ComplianceStatus, record.RiskScore)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_risk_records (
			client_id, risk_score, compliance_status,
			has_overdue_filing, has_unresolved_itc_mismatch, has_missing_documents, has_recurrent_issues,
			filing_trend_score, document_compliance_score, itc_compliance_score,
			previous_risk_score, score_change_percentage, recommended_actions,
			last_assessed_at, assessed_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (client_id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			compliance_status = EXCLUDED.compliance_status,
			has_overdue_filing = EXCLUDED.has_overdue_filing,
			has_unresolved_itc_mismatch = EXCLUDED.has_unresolved_itc_mismatch,
			has_missing_documents = EXCLUDED.has_missing_documents,
			has_recurrent_issues = EXCLUDED.has_recurrent_issues,
			filing_trend_score = EXCLUDED.filing_trend_score,
			document_compliance_score = EXCLUDED.document_compliance_score,
			itc_compliance_score = EXCLUDED.itc_compliance_score,
			previous_risk_score = EXCLUDED.previous_risk_score,
			score_change_percentage = EXCLUDED.score_change_percentage,
			recommended_actions = EXCLUDED.recommended_actions,
			last_assessed_at = EXCLUDED.last_assessed_at,
			assessed_by = EXCLUDED.assessed_by`,
		record.ClientID, record.RiskScore, record.ComplianceStatus,
		record.Flags.HasOverdueFiling, record.Flags.HasUnresolvedITCMismatch,
		record.Flags.HasMissingDocuments, record.Flags.HasRecurrentIssues,
		record.FilingTrendScore, record.DocumentComplianceScore, record.ITCComplianceScore,
		record.PreviousRiskScore, record.ScoreChangePercentage,
		pq.Array(record.RecommendedActions),
		record.LastAssessedAt, record.AssessedBy,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert risk record")
	}
	return nil
}

// FindByClientID returns the record or ErrCodeRiskRecordNotFound.
func (r *RiskRepository) FindByClientID(ctx context.Context, clientID string) (*assessment.ClientRiskRecord, error) {
	defer r.observe("risk_find_by_client", time.Now())

	row := r.db.QueryRowContext(ctx,
		`SELECT `+riskColumns+` FROM client_risk_records WHERE client_id = $1`, clientID)
	return scanRiskRecord(row)
}

// ListByStatus returns records in one status band, most recently assessed first.
func (r *RiskRepository) ListByStatus(ctx context.Context, status assessment.ComplianceStatus, limit, offset int) ([]*assessment.ClientRiskRecord, error) {
	defer r.observe("risk_list_by_status", time.Now())

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+riskColumns+` FROM client_risk_records
		 WHERE compliance_status = $1
		 ORDER BY last_assessed_at DESC
		 LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list risk records")
	}
	return collectRiskRecords(rows)
}

// List returns records ordered worst-first.
func (r *RiskRepository) List(ctx context.Context, limit, offset int) ([]*assessment.ClientRiskRecord, error) {
	defer r.observe("risk_list", time.Now())

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+riskColumns+` FROM client_risk_records
		 ORDER BY risk_score DESC, client_id
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list risk records")
	}
	return collectRiskRecords(rows)
}

func collectRiskRecords(rows *sql.Rows) ([]*assessment.ClientRiskRecord, error) {
	defer rows.Close()

	var out []*assessment.ClientRiskRecord
	for rows.Next() {
		record, err := scanRiskRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate risk records")
	}
	return out, nil
}

func scanRiskRecord(s scanner) (*assessment.ClientRiskRecord, error) {
	var (
		record  assessment.ClientRiskRecord
		actions pq.StringArray
	)
	err := s.Scan(
		&record.ClientID, &record.RiskScore, &record.ComplianceStatus,
		&record.Flags.HasOverdueFiling, &record.Flags.HasUnresolvedITCMismatch,
		&record.Flags.HasMissingDocuments, &record.Flags.HasRecurrentIssues,
		&record.FilingTrendScore, &record.DocumentComplianceScore, &record.ITCComplianceScore,
		&record.PreviousRiskScore, &record.ScoreChangePercentage, &actions,
		&record.LastAssessedAt, &record.AssessedBy,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRiskRecordNotFound, "client has never been assessed")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan risk record")
	}
	record.RecommendedActions = []string(actions)
	return &record, nil
}
