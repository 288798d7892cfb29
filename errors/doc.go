// Package errors provides the AppError type shared by MindEase services.
//
// Every AppError carries a machine-readable code, a user-facing message,
// an HTTP status and a retryable flag. Status and retryability default from
// the code table in codes.go. Domain errors that know how to describe
// themselves implement ToAppError and are converted by From.
package errors
