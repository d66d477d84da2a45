package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func perfectFactors() RiskFactorSet {
	return RiskFactorSet{
		OverdueDaysAvg:      0,
		OverdueFilingsCount: 0,
		FilingAccuracy:      100,
		IncompleteDocsCount: 0,
		ITCClaimAccuracy:    100,
		ITCMismatchCount:    0,
		AmendmentRate:       0,
	}
}

func TestComputeScores_PerfectClient(t *testing.T) {
	s := ComputeScores(perfectFactors(), DefaultPolicy())
	assert.Equal(t, 0, s.RiskScore)
	assert.Equal(t, 100, s.FilingTrendScore)
	assert.Equal(t, 100, s.DocumentComplianceScore)
	assert.Equal(t, 100, s.ITCComplianceScore)
}

func TestComputeScores_WorkedExample(t *testing.T) {
	f := RiskFactorSet{
		OverdueDaysAvg:      20,
		OverdueFilingsCount: 4,
		FilingAccuracy:      80,
		IncompleteDocsCount: 2,
		ITCClaimAccuracy:    90,
		ITCMismatchCount:    3,
		AmendmentRate:       10,
	}
	s := ComputeScores(f, DefaultPolicy())

	assert.Equal(t, 70, s.FilingTrendScore)
	assert.Equal(t, 80, s.DocumentComplianceScore)
	assert.Equal(t, 75, s.ITCComplianceScore)
	// 100 − (0.4·70 + 0.3·80 + 0.3·75) = 25.5, rounded half away from zero.
	assert.Equal(t, 26, s.RiskScore)
}

func TestComputeScores_Deterministic(t *testing.T) {
	f := RiskFactorSet{
		OverdueDaysAvg:      7.3,
		OverdueFilingsCount: 1,
		FilingAccuracy:      88.8,
		IncompleteDocsCount: 5,
		ITCClaimAccuracy:    61.2,
		ITCMismatchCount:    2,
		AmendmentRate:       12.5,
	}
	first := ComputeScores(f, DefaultPolicy())
	second := ComputeScores(f, DefaultPolicy())
	assert.Equal(t, first, second)
}

func TestComputeScores_RangeInvariant(t *testing.T) {
	cases := []RiskFactorSet{
		{},
		perfectFactors(),
		{OverdueDaysAvg: 1e6, OverdueFilingsCount: 9999, IncompleteDocsCount: 9999, ITCMismatchCount: 9999},
		// Out-of-range garbage from a misbehaving producer.
		{FilingAccuracy: 250, ITCClaimAccuracy: -40, AmendmentRate: 170, OverdueDaysAvg: -3},
		{FilingAccuracy: 100, ITCClaimAccuracy: 100, IncompleteDocsCount: 11},
	}
	for i, f := range cases {
		s := ComputeScores(f, DefaultPolicy())
		for name, v := range map[string]int{
			"risk":     s.RiskScore,
			"filing":   s.FilingTrendScore,
			"document": s.DocumentComplianceScore,
			"itc":      s.ITCComplianceScore,
		} {
			assert.GreaterOrEqual(t, v, 0, "case %d %s", i, name)
			assert.LessOrEqual(t, v, 100, "case %d %s", i, name)
		}
	}
}

func TestComputeScores_MonotonicInMissingDocs(t *testing.T) {
	f := perfectFactors()
	prevDoc, prevRisk := 101, -1
	for docs := 0; docs <= 15; docs++ {
		f.IncompleteDocsCount = docs
		s := ComputeScores(f, DefaultPolicy())
		assert.LessOrEqual(t, s.DocumentComplianceScore, prevDoc, "docs=%d", docs)
		assert.GreaterOrEqual(t, s.RiskScore, prevRisk, "docs=%d", docs)
		prevDoc, prevRisk = s.DocumentComplianceScore, s.RiskScore
	}
}

func TestComputeScores_DocFloorAtZero(t *testing.T) {
	f := perfectFactors()
	f.IncompleteDocsCount = 30
	s := ComputeScores(f, DefaultPolicy())
	assert.Equal(t, 0, s.DocumentComplianceScore)
}

func TestComputeScores_ITCPenaltyCappedAtAccuracy(t *testing.T) {
	f := perfectFactors()
	f.ITCClaimAccuracy = 20
	f.ITCMismatchCount = 100 // penalty 500, capped at 20
	s := ComputeScores(f, DefaultPolicy())
	assert.Equal(t, 0, s.ITCComplianceScore)
}

func TestRoundHalfAway(t *testing.T) {
	assert.Equal(t, 26, roundHalfAway(25.5))
	assert.Equal(t, 25, roundHalfAway(25.4))
	assert.Equal(t, 2, roundHalfAway(1.5))
	assert.Equal(t, 0, roundHalfAway(0))
	assert.Equal(t, -2, roundHalfAway(-1.5))
}

func TestRoundTo1dp(t *testing.T) {
	assert.Equal(t, -20.0, roundTo1dp(-20.0))
	assert.Equal(t, 33.3, roundTo1dp(33.333))
	assert.Equal(t, 0.1, roundTo1dp(0.05))
	assert.Equal(t, -0.1, roundTo1dp(-0.05))
}
