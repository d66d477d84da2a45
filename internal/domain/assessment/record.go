package assessment

import "time"

// ClientRiskRecord is the persisted risk posture for one client.  Exactly one
// record exists per client at any time: the store upserts by client ID and
// the previous score is captured into the history fields before being
// overwritten.
//
// RiskScore, the sub-scores, and ComplianceStatus are derived values.  They
// are written only by the engine; callers that bypass the engine and write a
// status directly violate the contract and are rejected by the persistence
// layer's consistency check.
type ClientRiskRecord struct {
	ClientID string `json:"client_id"`

	RiskScore        int              `json:"risk_score"`
	ComplianceStatus ComplianceStatus `json:"compliance_status"`

	Flags Flags `json:"flags"`

	FilingTrendScore        int `json:"filing_trend_score"`
	DocumentComplianceScore int `json:"document_compliance_score"`
	ITCComplianceScore      int `json:"itc_compliance_score"`

	// History: nil on the first assessment for a client.
	PreviousRiskScore     *int     `json:"previous_risk_score,omitempty"`
	ScoreChangePercentage *float64 `json:"score_change_percentage,omitempty"`

	RecommendedActions []string `json:"recommended_actions"`

	LastAssessedAt time.Time `json:"last_assessed_at"`
	AssessedBy     string    `json:"assessed_by,omitempty"`
}

// ConsistentWith reports whether the record's stored status is one the given
// policy could have derived from its score and flags.  The persistence layer
// uses this to reject records whose status was hand-edited past the engine.
// The overdue-filings override can lift a threshold-good score to warning, so
// warning is also accepted for a good-band score when the overdue flag is set.
func (r *ClientRiskRecord) ConsistentWith(policy Policy) bool {
	base := Classify(r.RiskScore, Flags{}, 0, policy).ComplianceStatus
	if r.ComplianceStatus == base {
		return true
	}
	return base == StatusGood && r.ComplianceStatus == StatusWarning && r.Flags.HasOverdueFiling
}
