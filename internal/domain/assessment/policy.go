package assessment

import (
	"fmt"

	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// Policy carries the scoring weights, per-unit penalties, and classification
// thresholds used by the engine.  It is an explicit value passed in at
// construction (and replaceable at runtime via Engine.SetPolicy) rather than
// process-wide shared state, so two engines with different policies can
// coexist in one process.
type Policy struct {
	// Aggregation weights for the three sub-scores.  Must sum to 1.0.
	FilingTrendWeight        float64
	DocumentComplianceWeight float64
	ITCComplianceWeight      float64

	// IncompleteDocPenalty is subtracted from 100 once per missing document
	// when deriving the document compliance sub-score.
	IncompleteDocPenalty float64

	// ITCMismatchPenalty is subtracted from the ITC claim accuracy once per
	// unresolved mismatch, capped so the sub-score never goes negative.
	ITCMismatchPenalty float64

	// OverdueDayPenalty is subtracted from the filing accuracy per mean
	// overdue day, capped so the sub-score never goes negative.
	OverdueDayPenalty float64

	// CriticalThreshold and WarningThreshold split the 0–100 risk score into
	// good / warning / critical bands: score ≥ CriticalThreshold is critical,
	// score ≥ WarningThreshold is warning, anything below is good.
	CriticalThreshold int
	WarningThreshold  int

	// OverdueFilingsFloor is the overdue-filings count at or above which the
	// classification is forced to at least warning, protecting against a low
	// numeric score masking a structural filing problem.
	OverdueFilingsFloor int
}

// DefaultPolicy returns the documented default scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		FilingTrendWeight:        0.4,
		DocumentComplianceWeight: 0.3,
		ITCComplianceWeight:      0.3,
		IncompleteDocPenalty:     10,
		ITCMismatchPenalty:       5,
		OverdueDayPenalty:        0.5,
		CriticalThreshold:        70,
		WarningThreshold:         30,
		OverdueFilingsFloor:      3,
	}
}

// Validate checks the policy for internal consistency.  The engine refuses a
// policy whose thresholds are not monotonic or whose weights do not sum to 1.
func (p Policy) Validate() error {
	sum := p.FilingTrendWeight + p.DocumentComplianceWeight + p.ITCComplianceWeight
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		return errors.Newf(errors.ErrCodeRiskPolicyInvalid,
			"sub-score weights must sum to 1.0, got %v", sum)
	}
	if p.FilingTrendWeight < 0 || p.DocumentComplianceWeight < 0 || p.ITCComplianceWeight < 0 {
		return errors.New(errors.ErrCodeRiskPolicyInvalid, "sub-score weights must be ≥ 0")
	}
	if p.IncompleteDocPenalty < 0 || p.ITCMismatchPenalty < 0 || p.OverdueDayPenalty < 0 {
		return errors.New(errors.ErrCodeRiskPolicyInvalid, "penalties must be ≥ 0")
	}
	if p.WarningThreshold < 0 || p.CriticalThreshold > 100 ||
		p.WarningThreshold >= p.CriticalThreshold {
		return errors.New(errors.ErrCodeRiskPolicyInvalid, fmt.Sprintf(
			"thresholds must satisfy 0 ≤ warning (%d) < critical (%d) ≤ 100",
			p.WarningThreshold, p.CriticalThreshold))
	}
	if p.OverdueFilingsFloor < 1 {
		return errors.New(errors.ErrCodeRiskPolicyInvalid, "overdue filings floor must be ≥ 1")
	}
	return nil
}
