package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired marks missing mandatory form fields
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
)

// Session error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeSessionExpired means pawn-api rejected the stored token
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
	// ErrCodeSessionUnavailable means the session store could not be read
	ErrCodeSessionUnavailable = "ERR_SESSION_UNAVAILABLE"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Upstream error codes
const (
	// ErrCodeUpstream is a non-2xx reply from pawn-api
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeUpstreamUnreachable is a transport failure talking to pawn-api
	ErrCodeUpstreamUnreachable = "ERR_UPSTREAM_UNREACHABLE"
	ErrCodeUnavailable         = "ERR_SERVICE_UNAVAILABLE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeSessionExpired:     http.StatusUnauthorized,
	ErrCodeSessionUnavailable: http.StatusServiceUnavailable,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUpstream:            http.StatusBadGateway,
	ErrCodeUpstreamUnreachable: http.StatusBadGateway,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps the codes domain errors carry to the
// standardized codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"SERVICE_UNAVAILABLE":   ErrCodeUnavailable,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"ACCOUNT_EXISTS":        ErrCodeAlreadyExists,
	"COMPANY_NOT_FOUND":     ErrCodeInvalidInput,
	"SCHEME_NOT_FOUND":      ErrCodeNotFound,
	"LOAN_CLOSED":           ErrCodeInvalidState,
	"DEPOSIT_CREATE_FAILED": ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the standardized format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
