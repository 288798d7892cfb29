package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/mindease/errors"
)

// FieldError is a single failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checker collects field errors from programmatic checks.
type Checker struct {
	errors []FieldError
}

// New creates an empty Checker.
func New() *Checker {
	return &Checker{}
}

// AddError records a failing field.
func (c *Checker) AddError(field, message string) {
	c.errors = append(c.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (c *Checker) HasErrors() bool { return len(c.errors) > 0 }

// Errors returns the recorded failures in order.
func (c *Checker) Errors() []FieldError { return c.errors }

// Validate returns nil when every check passed, else an AppError whose
// details hold the field list. The return type is error so a nil result
// compares equal to nil.
func (c *Checker) Validate() error {
	if !c.HasErrors() {
		return nil
	}
	msgs := make([]string, len(c.errors))
	for i, e := range c.errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return apperrors.Validation(strings.Join(msgs, "; ")).
		WithDetail("fields", c.errors)
}

// Required fails for empty or whitespace-only values.
func (c *Checker) Required(field, value string) *Checker {
	if strings.TrimSpace(value) == "" {
		c.AddError(field, "is required")
	}
	return c
}

// MaxLength fails when value has more than n runes.
func (c *Checker) MaxLength(field, value string, n int) *Checker {
	if len([]rune(value)) > n {
		c.AddError(field, fmt.Sprintf("must be at most %d characters", n))
	}
	return c
}

// UUID fails for non-empty values that are not a UUID.
func (c *Checker) UUID(field, value string) *Checker {
	if value == "" {
		return c
	}
	if _, err := uuid.Parse(value); err != nil {
		c.AddError(field, "must be a valid UUID")
	}
	return c
}

// OneOf fails for non-empty values outside allowed.
func (c *Checker) OneOf(field, value string, allowed []string) *Checker {
	if value != "" && !slices.Contains(allowed, value) {
		c.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return c
}

// Custom records message for field when ok is false.
func (c *Checker) Custom(ok bool, field, message string) *Checker {
	if !ok {
		c.AddError(field, message)
	}
	return c
}
