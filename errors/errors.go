package errors

import (
	"fmt"
	"net/http"
)

// AppError is the error type rendered to API clients and CLI users.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New creates an AppError whose status and retryability come from the code
// table. An explicit httpStatus of 0 keeps the table's status.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	if httpStatus == 0 {
		httpStatus = StatusFor(code)
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

func newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...), 0)
}

func ServiceUnavailable(service string) *AppError {
	return newf(ErrCodeServiceUnavailable, "The %s is temporarily unavailable. Please try again.", service).
		WithDetail("service", service)
}

func ConnectionFailed(service string) *AppError {
	return newf(ErrCodeConnectionFailed, "Unable to connect to %s.", service).
		WithDetail("service", service)
}

func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.", 0).
		WithDetail("operation", operation)
}

func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.", 0)
}

// NotFound reports a missing resource. id is omitted from details when empty.
func NotFound(resource, id string) *AppError {
	e := newf(ErrCodeNotFound, "The requested %s was not found.", resource).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

func Conflict(reason string) *AppError {
	return New(ErrCodeConflict, reason, 0)
}

func InvalidInput(field, reason string) *AppError {
	e := newf(ErrCodeInvalidInput, "Invalid input: %s", reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation wraps a pre-formatted validation message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, 0)
}

func MissingField(field string) *AppError {
	return newf(ErrCodeMissingField, "Missing required field: %s", field).
		WithDetail("field", field)
}

func InvalidFormat(field, expected string) *AppError {
	return newf(ErrCodeInvalidFormat, "Invalid format for %s. Expected: %s", field, expected).
		WithDetails(map[string]any{"field": field, "expected_format": expected})
}

func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason, 0)
}

func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again.", 0).WithCause(cause)
}

func ExternalServiceError(service string, cause error) *AppError {
	return newf(ErrCodeExternalService, "The %s service encountered an error. Please try again.", service).
		WithDetail("service", service).
		WithCause(cause)
}

// SubmissionFailed reports that a recording could not be submitted for
// transcription.
func SubmissionFailed(recordingID string, cause error) *AppError {
	return New(ErrCodeSubmissionFailed, "The recording could not be sent for transcription.", 0).
		WithDetail("recording_id", recordingID).
		WithCause(cause)
}

// TranscriptionFailed reports a job that the remote service marked failed.
func TranscriptionFailed(recordingID, jobID, reason string) *AppError {
	e := New(ErrCodeTranscriptionFailed, "Transcription failed.", http.StatusUnprocessableEntity).
		WithDetails(map[string]any{"recording_id": recordingID, "job_id": jobID})
	if reason != "" {
		e.WithDetail("reason", reason)
	}
	return e
}

// TranscriptionTimeout reports a job that never reached a terminal state.
func TranscriptionTimeout(recordingID, jobID string) *AppError {
	return New(ErrCodeTranscriptionTimeout, "Transcription did not finish in time.", 0).
		WithDetails(map[string]any{"recording_id": recordingID, "job_id": jobID})
}
