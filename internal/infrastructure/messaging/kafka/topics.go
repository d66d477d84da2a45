// Package kafka carries assessment events between the API server and the
// background worker.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// TopicAssessmentCompleted carries one event per persisted assessment,
	// keyed by client ID so per-client ordering is preserved.
	TopicAssessmentCompleted = "compliance.assessment.completed"

	// TopicCheckRequest carries on-demand requests for a portfolio-wide
	// compliance check, consumed by the worker.
	TopicCheckRequest = "compliance.check.request"
)

const schemaVersion = "1.0"

// EventEnvelope is the wire frame around every published payload.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// CheckRequestPayload asks the worker to run a portfolio-wide check.
type CheckRequestPayload struct {
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}, nil
}
