package filing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/gst-sentinel/pkg/errors"
)

func newPurchaseInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(testClientID, InvoicePurchase, "2025-04", "INV-0042", 10000, 1800)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	inv := newPurchaseInvoice(t)
	assert.Equal(t, ITCPending, inv.MatchStatus)

	sales, err := NewInvoice(testClientID, InvoiceSales, "2025-04", "S-001", 5000, 900)
	require.NoError(t, err)
	assert.Empty(t, sales.MatchStatus)
}

func TestNewInvoice_Validation(t *testing.T) {
	_, err := NewInvoice(testClientID, InvoiceKind("credit"), "2025-04", "X", 1, 1)
	assert.True(t, errors.IsValidation(err))

	_, err = NewInvoice(testClientID, InvoicePurchase, "2025-04", "  ", 1, 1)
	assert.True(t, errors.IsValidation(err))

	_, err = NewInvoice(testClientID, InvoicePurchase, "2025-04", "X", -1, 1)
	assert.True(t, errors.IsValidation(err))
}

func TestInvoice_MatchStateMachine(t *testing.T) {
	inv := newPurchaseInvoice(t)

	require.NoError(t, inv.SetMatchStatus(ITCMismatched))
	assert.True(t, inv.UnresolvedMismatch())

	require.NoError(t, inv.SetMatchStatus(ITCResolved))
	assert.False(t, inv.UnresolvedMismatch())

	// Resolved is terminal.
	err := inv.SetMatchStatus(ITCMismatched)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestInvoice_MatchedCanRegress(t *testing.T) {
	inv := newPurchaseInvoice(t)
	require.NoError(t, inv.SetMatchStatus(ITCMatched))

	// A later GSTR-2B refresh can contradict an earlier match.
	require.NoError(t, inv.SetMatchStatus(ITCMismatched))
	assert.True(t, inv.UnresolvedMismatch())
}

func TestInvoice_SalesNeverMatched(t *testing.T) {
	sales, err := NewInvoice(testClientID, InvoiceSales, "2025-04", "S-001", 5000, 900)
	require.NoError(t, err)
	assert.Error(t, sales.SetMatchStatus(ITCMatched))
	assert.False(t, sales.UnresolvedMismatch())
}
