package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// RiskClient covers the risk-assessment endpoints.
type RiskClient struct {
	client *Client
}

// RiskRecord is a client's latest compliance risk snapshot.
type RiskRecord struct {
	ClientID         string `json:"client_id"`
	RiskScore        int    `json:"risk_score"`
	ComplianceStatus string `json:"compliance_status"`

	FilingTrendScore        int `json:"filing_trend_score"`
	DocumentComplianceScore int `json:"document_compliance_score"`
	ITCComplianceScore      int `json:"itc_compliance_score"`

	Flags struct {
		HasOverdueFiling         bool `json:"has_overdue_filing"`
		HasUnresolvedITCMismatch bool `json:"has_unresolved_itc_mismatch"`
		HasMissingDocuments      bool `json:"has_missing_documents"`
		HasRecurrentIssues       bool `json:"has_recurrent_issues"`
	} `json:"flags"`

	PreviousRiskScore     *int     `json:"previous_risk_score,omitempty"`
	ScoreChangePercentage *float64 `json:"score_change_percentage,omitempty"`

	RecommendedActions []string  `json:"recommended_actions"`
	LastAssessedAt     time.Time `json:"last_assessed_at"`
	AssessedBy         string    `json:"assessed_by,omitempty"`
}

// Get fetches the client's latest risk record.
func (rc *RiskClient) Get(ctx context.Context, clientID string) (*RiskRecord, error) {
	var out RiskRecord
	path := fmt.Sprintf("/api/v1/clients/%s/risk", url.PathEscape(clientID))
	if err := rc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assess runs one assessment for the client right now and returns the
// persisted record.
func (rc *RiskClient) Assess(ctx context.Context, clientID string) (*RiskRecord, error) {
	var out RiskRecord
	path := fmt.Sprintf("/api/v1/clients/%s/assess", url.PathEscape(clientID))
	if err := rc.client.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunBatch runs a compliance check over every assessable client and returns
// the finished job log.
func (rc *RiskClient) RunBatch(ctx context.Context) (*JobRecord, error) {
	var out JobRecord
	if err := rc.client.post(ctx, "/api/v1/assessments/run", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
