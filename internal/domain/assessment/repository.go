package assessment

import "context"

// Repository persists ClientRiskRecords keyed by client ID with upsert
// semantics: at most one record exists per client.  Upsert is atomic on its
// own, but a caller that reads a record, recomputes, and writes it back must
// serialize those steps per client itself; the assessment service holds a
// per-client lock across them.
type Repository interface {
	// Upsert inserts or replaces the record for record.ClientID.
	Upsert(ctx context.Context, record *ClientRiskRecord) error

	// FindByClientID returns the record for the client, or an
	// ErrCodeRiskRecordNotFound error when the client has never been assessed.
	FindByClientID(ctx context.Context, clientID string) (*ClientRiskRecord, error)

	// ListByStatus returns records with the given status, most recently
	// assessed first.
	ListByStatus(ctx context.Context, status ComplianceStatus, limit, offset int) ([]*ClientRiskRecord, error)

	// List returns records ordered by risk score descending (worst first).
	List(ctx context.Context, limit, offset int) ([]*ClientRiskRecord, error)
}
