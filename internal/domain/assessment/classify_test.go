package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_ThresholdBoundaries(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		score int
		want  ComplianceStatus
	}{
		{0, StatusGood},
		{29, StatusGood},
		{30, StatusWarning},
		{69, StatusWarning},
		{70, StatusCritical},
		{100, StatusCritical},
	}
	for _, tc := range cases {
		got := Classify(tc.score, Flags{}, 0, policy)
		assert.Equal(t, tc.want, got.ComplianceStatus, "score=%d", tc.score)
	}
}

func TestClassify_OverdueOverrideForcesWarning(t *testing.T) {
	policy := DefaultPolicy()
	flags := Flags{HasOverdueFiling: true}

	// Score classifies as good, but 3+ overdue filings force warning.
	got := Classify(26, flags, 4, policy)
	assert.Equal(t, StatusWarning, got.ComplianceStatus)

	// Below the floor the numeric classification stands.
	got = Classify(26, flags, 2, policy)
	assert.Equal(t, StatusGood, got.ComplianceStatus)

	// The override never downgrades: a critical score stays critical.
	got = Classify(85, flags, 10, policy)
	assert.Equal(t, StatusCritical, got.ComplianceStatus)
}

func TestClassify_OverrideNeedsFlag(t *testing.T) {
	// Count alone is not enough; the flag must be set too.
	got := Classify(10, Flags{}, 5, DefaultPolicy())
	assert.Equal(t, StatusGood, got.ComplianceStatus)
}

func TestClassify_NoFlagsNoActions(t *testing.T) {
	got := Classify(0, Flags{}, 0, DefaultPolicy())
	assert.Empty(t, got.RecommendedActions)
}

func TestClassify_ActionsInPriorityOrder(t *testing.T) {
	flags := Flags{
		HasOverdueFiling:         true,
		HasUnresolvedITCMismatch: true,
		HasMissingDocuments:      true,
		HasRecurrentIssues:       true,
	}
	got := Classify(80, flags, 5, DefaultPolicy())
	assert.Equal(t, []string{
		ActionFileOverdueReturns,
		ActionReconcileITC,
		ActionCollectDocuments,
		ActionReviewRecurrence,
	}, got.RecommendedActions)
}

func TestClassify_SubsetOfActions(t *testing.T) {
	flags := Flags{HasMissingDocuments: true, HasRecurrentIssues: true}
	got := Classify(40, flags, 0, DefaultPolicy())
	assert.Equal(t, []string{ActionCollectDocuments, ActionReviewRecurrence}, got.RecommendedActions)
}

func TestDeriveFlags(t *testing.T) {
	f := RiskFactorSet{OverdueFilingsCount: 1, ITCMismatchCount: 0, IncompleteDocsCount: 2}
	flags := DeriveFlags(f)
	assert.True(t, flags.HasOverdueFiling)
	assert.False(t, flags.HasUnresolvedITCMismatch)
	assert.True(t, flags.HasMissingDocuments)
	// Recurrence is never derived from a single period.
	assert.False(t, flags.HasRecurrentIssues)
}
