package assessment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamped_InRangeUntouched(t *testing.T) {
	f := RiskFactorSet{
		OverdueDaysAvg:      12.5,
		OverdueFilingsCount: 2,
		FilingAccuracy:      88,
		IncompleteDocsCount: 1,
		ITCClaimAccuracy:    91.5,
		ITCMismatchCount:    0,
		AmendmentRate:       4,
	}
	out, warnings := f.Clamped()
	assert.Equal(t, f, out)
	assert.Empty(t, warnings)
}

func TestClamped_OutOfRangeFields(t *testing.T) {
	f := RiskFactorSet{
		OverdueDaysAvg:      -10,
		OverdueFilingsCount: -2,
		FilingAccuracy:      150,
		IncompleteDocsCount: -1,
		ITCClaimAccuracy:    -30,
		ITCMismatchCount:    -5,
		AmendmentRate:       101,
	}
	out, warnings := f.Clamped()

	assert.Equal(t, 0.0, out.OverdueDaysAvg)
	assert.Equal(t, 0, out.OverdueFilingsCount)
	assert.Equal(t, 100.0, out.FilingAccuracy)
	assert.Equal(t, 0, out.IncompleteDocsCount)
	assert.Equal(t, 0.0, out.ITCClaimAccuracy)
	assert.Equal(t, 0, out.ITCMismatchCount)
	assert.Equal(t, 100.0, out.AmendmentRate)
	assert.Len(t, warnings, 7)
}

func TestClamped_NaNBecomesZero(t *testing.T) {
	f := RiskFactorSet{FilingAccuracy: math.NaN(), OverdueDaysAvg: math.NaN()}
	out, warnings := f.Clamped()
	assert.Equal(t, 0.0, out.FilingAccuracy)
	assert.Equal(t, 0.0, out.OverdueDaysAvg)
	assert.Len(t, warnings, 2)
}

func TestClamped_IsIdempotent(t *testing.T) {
	f := RiskFactorSet{FilingAccuracy: 200, ITCMismatchCount: -3}
	once, _ := f.Clamped()
	twice, warnings := once.Clamped()
	assert.Equal(t, once, twice)
	assert.Empty(t, warnings)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.ITCComplianceWeight = 0.5
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.OverdueDayPenalty = -0.1
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.WarningThreshold, p.CriticalThreshold = 70, 30
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.OverdueFilingsFloor = 0
	assert.Error(t, p.Validate())
}
