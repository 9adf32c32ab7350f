package filevalidator

import (
	"errors"
	"fmt"
)

// ValidationError describes a single failing rule for a single file.
// Validators never return it directly; it is exposed through Outcome.Err and
// FileReport.Err for callers that prefer error values.
type ValidationError struct {
	// Rule is the name of the failing rule (e.g. "fileSize", "custom:image/png")
	Rule string

	// FileName is the name of the file that failed
	FileName string

	// Message is the human-readable error description
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.FileName == "" {
		return fmt.Sprintf("%s validation error: %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("%s validation error for %s: %s", e.Rule, e.FileName, e.Message)
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsRuleError checks if an error is a ValidationError raised by the named rule
func IsRuleError(err error, rule string) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Rule == rule
	}
	return false
}

// GetErrorRule returns the rule of a ValidationError, or empty string if not a ValidationError
func GetErrorRule(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Rule
	}
	return ""
}

// GetErrorMessage returns the message of a ValidationError, or empty string if not a ValidationError
func GetErrorMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return ""
}
