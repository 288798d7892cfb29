package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewUsesCodeTable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		status    int
		retryable bool
	}{
		{ErrCodeNotFound, http.StatusNotFound, false},
		{ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{ErrCodeExternalService, http.StatusBadGateway, true},
		{ErrCodeSubmissionFailed, http.StatusBadGateway, false},
		{ErrorCode("UNKNOWN"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg", 0)
			if err.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", err.HTTPStatus, tt.status)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", err.Retryable, tt.retryable)
			}
		})
	}
}

func TestNewExplicitStatus(t *testing.T) {
	err := New(ErrCodeNotFound, "gone", http.StatusGone)
	if err.HTTPStatus != http.StatusGone {
		t.Errorf("status = %d, want 410", err.HTTPStatus)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("recording", "abc")
	if err.Details["resource"] != "recording" || err.Details["id"] != "abc" {
		t.Errorf("details = %v", err.Details)
	}
	if _, ok := NotFound("recording", "").Details["id"]; ok {
		t.Error("empty id should be omitted")
	}
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := ExternalServiceError("assemblyai", cause)
	if !strings.Contains(err.Error(), "EXTERNAL_SERVICE_ERROR") || !strings.Contains(err.Error(), "refused") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if !err.Retryable {
		t.Error("external service errors are retryable")
	}
}

func TestDomainConstructors(t *testing.T) {
	sub := SubmissionFailed("rec-1", fmt.Errorf("upload failed"))
	if sub.Code != ErrCodeSubmissionFailed || sub.Details["recording_id"] != "rec-1" {
		t.Errorf("SubmissionFailed = %+v", sub)
	}

	failed := TranscriptionFailed("rec-1", "job-1", "bad audio")
	if failed.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", failed.HTTPStatus)
	}
	if failed.Details["reason"] != "bad audio" {
		t.Errorf("details = %v", failed.Details)
	}
	if _, ok := TranscriptionFailed("r", "j", "").Details["reason"]; ok {
		t.Error("empty reason should be omitted")
	}

	timeout := TranscriptionTimeout("rec-1", "job-1")
	if timeout.Code != ErrCodeTranscriptionTimeout || timeout.Retryable {
		t.Errorf("TranscriptionTimeout = %+v", timeout)
	}
}

func TestToResponseJSON(t *testing.T) {
	body, err := json.Marshal(InvalidInput("text", "must not be blank").ToResponse())
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Error.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", decoded.Error.Code)
	}
	if decoded.Error.Details["field"] != "text" {
		t.Errorf("details = %v", decoded.Error.Details)
	}
}

type describedErr struct{}

func (describedErr) Error() string { return "described" }

func (describedErr) ToAppError() *AppError { return Conflict("described conflict") }

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}

	orig := NotFound("x", "1")
	if From(fmt.Errorf("wrapped: %w", orig)) != orig {
		t.Error("expected wrapped AppError to be returned as is")
	}

	if got := From(fmt.Errorf("wrap: %w", describedErr{})); got.Code != ErrCodeConflict {
		t.Errorf("ToAppError not used, got %s", got.Code)
	}

	plain := From(fmt.Errorf("plain"))
	if plain.Code != ErrCodeInternal || plain.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("fallback = %+v", plain)
	}
}

func TestIsAppError(t *testing.T) {
	if IsAppError(fmt.Errorf("x")) {
		t.Error("plain error is not an AppError")
	}
	if !IsAppError(fmt.Errorf("w: %w", Timeout("poll"))) {
		t.Error("wrapped AppError not detected")
	}
}
