// Package assessment implements the compliance risk assessment engine: the
// measured inputs for one client in one period, the scoring calculator, the
// status classifier, and the trend tracker.  Everything in this package is a
// pure, synchronous computation; persistence, scheduling, and transport are
// collaborators that live elsewhere.
package assessment

import "fmt"

// RiskFactorSet is the raw measured input for one client in one assessment
// period, produced by the filing/invoice aggregator.  It is an immutable
// value: the engine never mutates a caller's RiskFactorSet.
//
// Percentage fields are expected in [0,100] and count fields ≥ 0.  The
// producer is responsible for clamping; the engine clamps defensively anyway
// and reports each clamp as a data-quality warning (see Clamped).
type RiskFactorSet struct {
	// OverdueDaysAvg is the mean days overdue across the client's filings.
	OverdueDaysAvg float64 `json:"overdue_days_avg"`

	// OverdueFilingsCount is the number of filings currently overdue.
	OverdueFilingsCount int `json:"overdue_filings_count"`

	// FilingAccuracy is the percentage of filings with no amendment.
	FilingAccuracy float64 `json:"filing_accuracy"`

	// IncompleteDocsCount is the number of required documents still missing.
	IncompleteDocsCount int `json:"incomplete_docs_count"`

	// ITCClaimAccuracy is the percentage of ITC claims matched against GSTR-2B.
	ITCClaimAccuracy float64 `json:"itc_claim_accuracy"`

	// ITCMismatchCount is the number of unresolved ITC mismatches.
	ITCMismatchCount int `json:"itc_mismatch_count"`

	// AmendmentRate is the percentage of filings that required amendment.
	AmendmentRate float64 `json:"amendment_rate"`
}

// Clamped returns a copy of f with every field forced into its valid range,
// together with one warning per field that was out of range.  A malformed
// upstream value therefore degrades gracefully instead of propagating NaN or
// negative scores; callers should log the warnings as data-quality issues.
func (f RiskFactorSet) Clamped() (RiskFactorSet, []string) {
	var warnings []string

	clampPct := func(name string, v float64) float64 {
		c := clamp(v, 0, 100)
		if c != v {
			warnings = append(warnings, fmt.Sprintf("%s clamped from %v to %v", name, v, c))
		}
		return c
	}
	clampCount := func(name string, v int) int {
		if v < 0 {
			warnings = append(warnings, fmt.Sprintf("%s clamped from %d to 0", name, v))
			return 0
		}
		return v
	}

	out := f
	if out.OverdueDaysAvg < 0 || out.OverdueDaysAvg != out.OverdueDaysAvg { // NaN guard
		warnings = append(warnings, fmt.Sprintf("overdue_days_avg clamped from %v to 0", out.OverdueDaysAvg))
		out.OverdueDaysAvg = 0
	}
	out.OverdueFilingsCount = clampCount("overdue_filings_count", out.OverdueFilingsCount)
	out.FilingAccuracy = clampPct("filing_accuracy", out.FilingAccuracy)
	out.IncompleteDocsCount = clampCount("incomplete_docs_count", out.IncompleteDocsCount)
	out.ITCClaimAccuracy = clampPct("itc_claim_accuracy", out.ITCClaimAccuracy)
	out.ITCMismatchCount = clampCount("itc_mismatch_count", out.ITCMismatchCount)
	out.AmendmentRate = clampPct("amendment_rate", out.AmendmentRate)

	return out, warnings
}

// Flags are the boolean risk indicators derived from a RiskFactorSet, plus
// the cross-period recurrence indicator set by the trend tracker.
type Flags struct {
	HasOverdueFiling         bool `json:"has_overdue_filing"`
	HasUnresolvedITCMismatch bool `json:"has_unresolved_itc_mismatch"`
	HasMissingDocuments      bool `json:"has_missing_documents"`

	// HasRecurrentIssues is true only when the same indicator was raised in
	// two consecutive assessment periods; see DetectRecurrence.
	HasRecurrentIssues bool `json:"has_recurrent_issues"`
}

// DeriveFlags computes the per-period indicators from the factor counts.
// HasRecurrentIssues is always false here: recurrence needs the previous
// period and is filled in by the trend tracker.
func DeriveFlags(f RiskFactorSet) Flags {
	return Flags{
		HasOverdueFiling:         f.OverdueFilingsCount > 0,
		HasUnresolvedITCMismatch: f.ITCMismatchCount > 0,
		HasMissingDocuments:      f.IncompleteDocsCount > 0,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
