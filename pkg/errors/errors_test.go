package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeClientNotFound, "client not found")
	assert.Equal(t, "[CLI_001] client not found", e.Error())

	withDetail := e.WithDetail("client_id=abc")
	assert.Equal(t, "[CLI_001] client not found: client_id=abc", withDetail.Error())
	// Original is untouched.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	var e *AppError = Wrap(nil, ErrCodeDatabaseError, "query failed")
	assert.Nil(t, e)
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeRiskRecordNotFound, "no record")
	wrapped := Wrap(fmt.Errorf("loading: %w", inner), ErrCodeUnknown, "load failed")
	assert.Equal(t, ErrCodeRiskRecordNotFound, wrapped.Code)
}

func TestWrap_UnwrapChain(t *testing.T) {
	root := stderrors.New("disk on fire")
	wrapped := Wrap(root, ErrCodeDatabaseError, "save failed")
	assert.True(t, stderrors.Is(wrapped, root))

	var ae *AppError
	require.True(t, stderrors.As(wrapped, &ae))
	assert.Equal(t, ErrCodeDatabaseError, ae.Code)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeJobRetriesExceeded, "retries exhausted"))
	assert.True(t, IsCode(err, ErrCodeJobRetriesExceeded))
	assert.False(t, IsCode(err, ErrCodeJobNotFound))
	assert.False(t, IsCode(nil, ErrCodeJobNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeClientNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeRiskRecordNotFound, "x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(New(ErrCodeConflict, "x")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestIsValidationAndConflict(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad")))
	assert.True(t, IsValidation(New(ErrCodeGSTINInvalid, "bad gstin")))
	assert.True(t, IsConflict(Conflict("dup")))
	assert.True(t, IsConflict(New(ErrCodeRiskWriteConflict, "stale write")))
	assert.False(t, IsConflict(Validation("bad")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeTimeout, GetCode(New(ErrCodeTimeout, "deadline")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeOK, 200},
		{ErrCodeValidation, 400},
		{ErrCodeUnauthorized, 401},
		{ErrCodeForbidden, 403},
		{ErrCodeStatusWriteForbidden, 403},
		{ErrCodeClientNotFound, 404},
		{ErrCodeRiskWriteConflict, 409},
		{ErrCodeTooManyRequests, 429},
		{ErrCodeInternal, 500},
		{ErrCodeNotImplemented, 501},
		{ErrCodeServiceUnavailable, 503},
		{ErrorCode("NOPE"), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.code), string(tc.code))
	}
}

func TestNilReceiverBuilders(t *testing.T) {
	var e *AppError
	assert.Nil(t, e.WithDetail("x"))
	assert.Nil(t, e.WithCause(stderrors.New("y")))
}
