package assessment

import "math"

// ScoreSet is the output of the score calculator: the aggregate risk score
// and the three sub-scores it was derived from, all integers in [0,100].
// A higher RiskScore means worse compliance; sub-scores read the other way
// (higher is better), which is why the aggregate is inverted.
type ScoreSet struct {
	RiskScore               int `json:"risk_score"`
	FilingTrendScore        int `json:"filing_trend_score"`
	DocumentComplianceScore int `json:"document_compliance_score"`
	ITCComplianceScore      int `json:"itc_compliance_score"`
}

// ComputeScores derives the sub-scores and the aggregate risk score from a
// RiskFactorSet under the given policy.  The computation is a pure function:
// identical inputs always yield identical outputs, independent of call order
// or prior state.
//
// Inputs are clamped defensively before use; callers that need the clamp
// warnings should call factors.Clamped themselves and pass the result in
// (clamping an already-clamped set is a no-op).
//
// Sub-score derivation:
//
//	document = 100 − incompleteDocs × IncompleteDocPenalty        (floor 0)
//	itc      = itcClaimAccuracy − min(mismatches × ITCMismatchPenalty, itcClaimAccuracy)
//	filing   = filingAccuracy − min(overdueDaysAvg × OverdueDayPenalty, filingAccuracy)
//
// Each sub-score is rounded half-away-from-zero to an integer for storage,
// then the aggregate is computed from the rounded values:
//
//	risk = 100 − (wf·filing + wd·document + wi·itc)               clamped to [0,100]
func ComputeScores(factors RiskFactorSet, policy Policy) ScoreSet {
	f, _ := factors.Clamped()

	document := clamp(100-float64(f.IncompleteDocsCount)*policy.IncompleteDocPenalty, 0, 100)

	itcPenalty := math.Min(float64(f.ITCMismatchCount)*policy.ITCMismatchPenalty, f.ITCClaimAccuracy)
	itc := clamp(f.ITCClaimAccuracy-itcPenalty, 0, 100)

	filingPenalty := math.Min(f.OverdueDaysAvg*policy.OverdueDayPenalty, f.FilingAccuracy)
	filing := clamp(f.FilingAccuracy-filingPenalty, 0, 100)

	s := ScoreSet{
		FilingTrendScore:        roundHalfAway(filing),
		DocumentComplianceScore: roundHalfAway(document),
		ITCComplianceScore:      roundHalfAway(itc),
	}

	weighted := policy.FilingTrendWeight*float64(s.FilingTrendScore) +
		policy.DocumentComplianceWeight*float64(s.DocumentComplianceScore) +
		policy.ITCComplianceWeight*float64(s.ITCComplianceScore)

	s.RiskScore = roundHalfAway(clamp(100-weighted, 0, 100))
	return s
}

// roundHalfAway rounds to the nearest integer with ties going away from zero,
// keeping stored scores reproducible across platforms.
func roundHalfAway(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}

// roundTo1dp rounds to one decimal place, half away from zero.
func roundTo1dp(v float64) float64 {
	return float64(roundHalfAwayInt64(v*10)) / 10
}

func roundHalfAwayInt64(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}
