package assessment

// ComplianceStatus is the coarse classification of a client's risk posture.
type ComplianceStatus string

const (
	StatusGood     ComplianceStatus = "good"
	StatusWarning  ComplianceStatus = "warning"
	StatusCritical ComplianceStatus = "critical"
)

// Remediation messages, one per flag.  The output order of Classify is the
// fixed priority order below, never insertion or discovery order.
const (
	ActionFileOverdueReturns = "File overdue GST returns immediately to stop late-fee accrual"
	ActionReconcileITC       = "Reconcile input tax credit claims against GSTR-2B"
	ActionCollectDocuments   = "Collect and upload the missing compliance documents"
	ActionReviewRecurrence   = "Review recurring compliance gaps with the client"
)

// Classification is the outcome of the status classifier.
type Classification struct {
	ComplianceStatus   ComplianceStatus `json:"compliance_status"`
	RecommendedActions []string         `json:"recommended_actions"`
}

// Classify maps a risk score and the period's flags to a compliance status
// and an ordered list of recommended actions.
//
// Thresholds (policy, monotonic and non-overlapping):
//
//	score ≥ CriticalThreshold            → critical
//	WarningThreshold ≤ score < Critical  → warning
//	score < WarningThreshold             → good
//
// Override: a client with an overdue filing and at least OverdueFilingsFloor
// overdue filings is never classified better than warning, even when the
// numeric score alone would read good.
//
// Actions are appended in fixed priority order: overdue filing → ITC
// mismatch → missing documents → recurrence.
func Classify(riskScore int, flags Flags, overdueFilingsCount int, policy Policy) Classification {
	var status ComplianceStatus
	switch {
	case riskScore >= policy.CriticalThreshold:
		status = StatusCritical
	case riskScore >= policy.WarningThreshold:
		status = StatusWarning
	default:
		status = StatusGood
	}

	if status == StatusGood && flags.HasOverdueFiling && overdueFilingsCount >= policy.OverdueFilingsFloor {
		status = StatusWarning
	}

	actions := make([]string, 0, 4)
	if flags.HasOverdueFiling {
		actions = append(actions, ActionFileOverdueReturns)
	}
	if flags.HasUnresolvedITCMismatch {
		actions = append(actions, ActionReconcileITC)
	}
	if flags.HasMissingDocuments {
		actions = append(actions, ActionCollectDocuments)
	}
	if flags.HasRecurrentIssues {
		actions = append(actions, ActionReviewRecurrence)
	}

	return Classification{ComplianceStatus: status, RecommendedActions: actions}
}
