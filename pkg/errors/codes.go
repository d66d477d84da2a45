package errors

import "net/http"

// ErrorCode is a string identifier for a specific failure category.  Codes are
// stable across releases so that API clients and dashboards can match on them.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeValidation         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_010"
	ErrCodeDatabaseError      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeMessagingError     ErrorCode = "COMMON_013"
	ErrCodeNotImplemented     ErrorCode = "COMMON_014"
	ErrCodeUnknown            ErrorCode = "COMMON_015"
	ErrCodeOK                 ErrorCode = "OK"
)

// Client registry error codes
const (
	ErrCodeClientNotFound      ErrorCode = "CLI_001"
	ErrCodeClientAlreadyExists ErrorCode = "CLI_002"
	ErrCodeGSTINInvalid        ErrorCode = "CLI_003"
	ErrCodeClientInactive      ErrorCode = "CLI_004"
)

// Filing / invoice / document error codes
const (
	ErrCodeFilingNotFound     ErrorCode = "FIL_001"
	ErrCodeFilingPeriodInvalid ErrorCode = "FIL_002"
	ErrCodeInvoiceNotFound    ErrorCode = "FIL_003"
	ErrCodeDocumentNotFound   ErrorCode = "FIL_004"
)

// Risk assessment error codes
const (
	ErrCodeRiskRecordNotFound   ErrorCode = "RISK_001"
	ErrCodeFactorsOutOfRange    ErrorCode = "RISK_002"
	ErrCodeRiskPolicyInvalid    ErrorCode = "RISK_003"
	ErrCodeRiskWriteConflict    ErrorCode = "RISK_004"
	ErrCodeStatusWriteForbidden ErrorCode = "RISK_005"
)

// Batch / job error codes
const (
	ErrCodeJobNotFound        ErrorCode = "JOB_001"
	ErrCodeJobAlreadyRunning  ErrorCode = "JOB_002"
	ErrCodeJobRetriesExceeded ErrorCode = "JOB_003"
	ErrCodeJobStateInvalid    ErrorCode = "JOB_004"
)

// HTTPStatus maps an ErrorCode to the HTTP status code that the REST layer
// should return for it.  Codes with no specific mapping fall back to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeOK:
		return http.StatusOK
	case ErrCodeValidation, ErrCodeGSTINInvalid, ErrCodeFilingPeriodInvalid,
		ErrCodeFactorsOutOfRange, ErrCodeRiskPolicyInvalid:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeStatusWriteForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeClientNotFound, ErrCodeFilingNotFound,
		ErrCodeInvoiceNotFound, ErrCodeDocumentNotFound,
		ErrCodeRiskRecordNotFound, ErrCodeJobNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeClientAlreadyExists, ErrCodeClientInactive,
		ErrCodeRiskWriteConflict, ErrCodeJobAlreadyRunning, ErrCodeJobStateInvalid:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable, ErrCodeCacheError:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
