// Package validation validates request bodies and configuration.
//
// Struct tags go through go-playground/validator:
//
//	type sendMessage struct {
//	    Text string `json:"text" validate:"notblank,max=2000"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// Ad-hoc checks use a Checker:
//
//	err := validation.New().Required("user_id", id).MaxLength("user_id", id, 128).Validate()
//
// Both return an AppError with code INVALID_INPUT and a "fields" detail.
package validation
