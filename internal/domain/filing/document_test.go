package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/gst-sentinel/pkg/errors"
)

func TestNewDocument(t *testing.T) {
	d, err := NewDocument(testClientID, "2025-04", DocSalesRegister)
	require.NoError(t, err)
	assert.True(t, d.Missing())

	_, err = NewDocument(testClientID, "2025-04", DocumentType("selfie"))
	assert.True(t, errors.IsValidation(err))
}

func TestDocument_MarkReceived(t *testing.T) {
	d, err := NewDocument(testClientID, "2025-04", DocBankStatement)
	require.NoError(t, err)

	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, d.MarkReceived(at, " DMS-7781 "))
	assert.False(t, d.Missing())
	assert.Equal(t, "DMS-7781", d.Reference)
	require.NotNil(t, d.ReceivedAt)
	assert.Equal(t, at, *d.ReceivedAt)

	err = d.MarkReceived(at, "")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}
