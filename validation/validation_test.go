package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/mindease/errors"
)

type message struct {
	Text   string `json:"text" validate:"notblank,max=10"`
	UserID string `json:"user_id" validate:"required"`
}

type pollSettings struct {
	Interval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxPolls int           `mapstructure:"max_polls" validate:"min=1"`
}

func fieldsOf(t *testing.T, err error) []FieldError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeInvalidInput {
		t.Errorf("code = %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("fields detail missing: %v", appErr.Details)
	}
	return fields
}

func TestValidateStructOK(t *testing.T) {
	if err := Validate(message{Text: "hello", UserID: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructErrors(t *testing.T) {
	err := Validate(message{Text: "   ", UserID: ""})
	fields := fieldsOf(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", fields)
	}
	if fields[0].Field != "text" || fields[0].Message != "is required" {
		t.Errorf("first field = %+v", fields[0])
	}
	if fields[1].Field != "user_id" {
		t.Errorf("second field = %+v", fields[1])
	}
}

func TestValidateStructMax(t *testing.T) {
	err := Validate(message{Text: strings.Repeat("a", 11), UserID: "u"})
	fields := fieldsOf(t, err)
	if fields[0].Message != "must be at most 10 characters" {
		t.Errorf("message = %q", fields[0].Message)
	}
}

func TestValidateUsesMapstructureNames(t *testing.T) {
	err := Validate(pollSettings{})
	fields := fieldsOf(t, err)
	got := []string{fields[0].Field, fields[1].Field}
	if got[0] != "poll_interval" || got[1] != "max_polls" {
		t.Errorf("fields = %v", got)
	}
	if fields[0].Message != "must be greater than 0" {
		t.Errorf("message = %q", fields[0].Message)
	}
}

func TestChecker(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Checker
		wantErr bool
	}{
		{"required ok", func() *Checker { return New().Required("f", "x") }, false},
		{"required blank", func() *Checker { return New().Required("f", " \t") }, true},
		{"max length counts runes", func() *Checker { return New().MaxLength("f", "héllo", 5) }, false},
		{"max length exceeded", func() *Checker { return New().MaxLength("f", "toolong", 3) }, true},
		{"uuid ok", func() *Checker { return New().UUID("f", uuid.NewString()) }, false},
		{"uuid empty skipped", func() *Checker { return New().UUID("f", "") }, false},
		{"uuid bad", func() *Checker { return New().UUID("f", "nope") }, true},
		{"oneof ok", func() *Checker { return New().OneOf("f", "a", []string{"a", "b"}) }, false},
		{"oneof bad", func() *Checker { return New().OneOf("f", "c", []string{"a", "b"}) }, true},
		{"custom", func() *Checker { return New().Custom(false, "f", "bad") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckerMessageJoin(t *testing.T) {
	err := New().Required("a", "").Required("b", "").Validate()
	if !strings.Contains(err.Error(), "a: is required; b: is required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxPolls"); got != "max_polls" {
		t.Errorf("toSnakeCase = %q", got)
	}
}
