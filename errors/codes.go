package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors. All retryable.
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeExternalService    ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Resource and input errors.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
)

// Voice journal errors.
const (
	// ErrCodeSubmissionFailed means audio could not be uploaded or the
	// transcription job could not be created.
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
	// ErrCodeTranscriptionFailed means the remote job reached a failed state.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeTranscriptionTimeout means the job never finished within the
	// poll budget.
	ErrCodeTranscriptionTimeout ErrorCode = "TRANSCRIPTION_TIMEOUT"
)

// ErrCodeInternal indicates an unexpected server-side failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

type codeInfo struct {
	status    int
	retryable bool
}

var codeTable = map[ErrorCode]codeInfo{
	ErrCodeServiceUnavailable:   {http.StatusServiceUnavailable, true},
	ErrCodeConnectionFailed:     {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:              {http.StatusGatewayTimeout, true},
	ErrCodeRateLimited:          {http.StatusTooManyRequests, true},
	ErrCodeExternalService:      {http.StatusBadGateway, true},
	ErrCodeNotFound:             {http.StatusNotFound, false},
	ErrCodeConflict:             {http.StatusConflict, false},
	ErrCodeInvalidInput:         {http.StatusBadRequest, false},
	ErrCodeMissingField:         {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:        {http.StatusBadRequest, false},
	ErrCodeUnauthorized:         {http.StatusUnauthorized, false},
	ErrCodeSubmissionFailed:     {http.StatusBadGateway, false},
	ErrCodeTranscriptionFailed:  {http.StatusUnprocessableEntity, false},
	ErrCodeTranscriptionTimeout: {http.StatusGatewayTimeout, false},
	ErrCodeInternal:             {http.StatusInternalServerError, false},
}

// IsRetryableCode reports whether errors with this code may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return codeTable[code].retryable
}

// StatusFor returns the HTTP status associated with code, or 500.
func StatusFor(code ErrorCode) int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
