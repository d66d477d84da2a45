package assessment

// Trend captures the change between the current and the previous assessment
// for the same client.  Both fields are nil on a client's first assessment.
type Trend struct {
	PreviousRiskScore     *int     `json:"previous_risk_score,omitempty"`
	ScoreChangePercentage *float64 `json:"score_change_percentage,omitempty"`
}

// ApplyTrend compares the current risk score against the previously persisted
// record.  With no previous record both outputs are absent.  Otherwise the
// change percentage is computed relative to max(previous, 1); the floor
// avoids division by zero when the previous score was exactly 0 (a previous
// score of 0 and a current score of 10 reads as +1000%), rounded to one
// decimal place.
func ApplyTrend(currentRiskScore int, previous *ClientRiskRecord) Trend {
	if previous == nil {
		return Trend{}
	}

	prev := previous.RiskScore
	denom := prev
	if denom < 1 {
		denom = 1
	}
	change := roundTo1dp(float64(currentRiskScore-prev) / float64(denom) * 100)

	return Trend{
		PreviousRiskScore:     &prev,
		ScoreChangePercentage: &change,
	}
}

// DetectRecurrence reports whether any of the per-period indicators was
// raised in both the current and the immediately previous assessment.  A
// single consecutive repeat is sufficient; no longer window is considered.
// The recurrence indicator itself never feeds back into this comparison.
func DetectRecurrence(current Flags, previous *ClientRiskRecord) bool {
	if previous == nil {
		return false
	}
	prev := previous.Flags
	return (current.HasOverdueFiling && prev.HasOverdueFiling) ||
		(current.HasUnresolvedITCMismatch && prev.HasUnresolvedITCMismatch) ||
		(current.HasMissingDocuments && prev.HasMissingDocuments)
}
