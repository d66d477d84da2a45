package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

var (
	testClientID = common.NewID()
	testDueDate  = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
)

func newTestFiling(t *testing.T) *Filing {
	t.Helper()
	f, err := NewFiling(testClientID, ReturnGSTR3B, "2025-04", testDueDate)
	require.NoError(t, err)
	return f
}

func TestNewFiling_Validation(t *testing.T) {
	_, err := NewFiling("", ReturnGSTR3B, "2025-04", testDueDate)
	assert.True(t, errors.IsValidation(err))

	_, err = NewFiling(testClientID, ReturnType("GSTR-99"), "2025-04", testDueDate)
	assert.True(t, errors.IsValidation(err))

	_, err = NewFiling(testClientID, ReturnGSTR3B, "2025-99", testDueDate)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFilingPeriodInvalid))

	_, err = NewFiling(testClientID, ReturnGSTR3B, "2025-04", time.Time{})
	assert.True(t, errors.IsValidation(err))

	// Due date before the period start is nonsense.
	_, err = NewFiling(testClientID, ReturnGSTR3B, "2025-04",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.IsValidation(err))
}

func TestFiling_MarkFiledOnce(t *testing.T) {
	f := newTestFiling(t)
	filedAt := testDueDate.AddDate(0, 0, -1)

	require.NoError(t, f.MarkFiled(filedAt))
	require.NotNil(t, f.FiledAt)
	assert.Equal(t, filedAt, *f.FiledAt)

	err := f.MarkFiled(filedAt)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestFiling_Amendments(t *testing.T) {
	f := newTestFiling(t)

	// Amending an unfiled return is rejected.
	assert.Error(t, f.RecordAmendment())
	assert.False(t, f.Amended())

	require.NoError(t, f.MarkFiled(testDueDate))
	require.NoError(t, f.RecordAmendment())
	require.NoError(t, f.RecordAmendment())
	assert.Equal(t, 2, f.AmendmentCount)
	assert.True(t, f.Amended())
}

func TestFiling_Overdue(t *testing.T) {
	f := newTestFiling(t)

	assert.False(t, f.IsOverdue(testDueDate))
	assert.True(t, f.IsOverdue(testDueDate.AddDate(0, 0, 1)))
	assert.Equal(t, 0.0, f.OverdueDays(testDueDate.AddDate(0, 0, -3)))
	assert.Equal(t, 10.0, f.OverdueDays(testDueDate.AddDate(0, 0, 10)))

	// Once filed, lateness is frozen at the submission time.
	require.NoError(t, f.MarkFiled(testDueDate.AddDate(0, 0, 4)))
	assert.False(t, f.IsOverdue(testDueDate.AddDate(0, 0, 30)))
	assert.Equal(t, 4.0, f.OverdueDays(testDueDate.AddDate(0, 0, 30)))
}
