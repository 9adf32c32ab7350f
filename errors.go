package fileintake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobeaver/fileintake/filevalidator"
	"github.com/samber/lo"
)

// Pipeline errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrHookFailed       = errors.New("plugin hook failed")

	// ErrUndeclaredMetadataKey is wrapped in a HookError when a postTransform
	// hook adds, changes or removes an extension key missing from the
	// plugin's MetadataKeys
	ErrUndeclaredMetadataKey = errors.New("undeclared metadata key")

	// ErrBatchAborted is passed to OnError for files of a batch that finished
	// successfully before a sibling failed. Their results are discarded.
	ErrBatchAborted = errors.New("batch aborted")

	ErrUnsupportedChecksum = errors.New("unsupported checksum algorithm")
)

// ValidationFailedError is returned by Process and ProcessMany when a file or
// batch does not pass validation. It matches ErrValidationFailed.
type ValidationFailedError struct {
	Errors []filevalidator.Outcome
}

// Error implements the error interface
func (e *ValidationFailedError) Error() string {
	msgs := lo.Map(e.Errors, func(o filevalidator.Outcome, _ int) string { return o.Message })
	return fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(msgs, ", "))
}

// Is reports whether target is ErrValidationFailed
func (e *ValidationFailedError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap exposes each violation as a *filevalidator.ValidationError
func (e *ValidationFailedError) Unwrap() []error {
	return lo.Map(e.Errors, func(o filevalidator.Outcome, _ int) error { return o.Err() })
}

// Messages returns the violation messages in order
func (e *ValidationFailedError) Messages() []string {
	return lo.Map(e.Errors, func(o filevalidator.Outcome, _ int) string { return o.Message })
}

// Stage names a point in the pipeline
type Stage string

const (
	StagePreValidation  Stage = "preValidation"
	StageValidation     Stage = "validation"
	StagePostValidation Stage = "postValidation"
	StagePreTransform   Stage = "preTransform"
	StageMetadata       Stage = "metadata"
	StagePostTransform  Stage = "postTransform"
)

// HookError records a plugin hook failure and the stage it happened in
type HookError struct {
	Plugin string
	Stage  Stage
	Err    error
}

// Error implements the error interface
func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook of plugin %q: %v", e.Stage, e.Plugin, e.Err)
}

// Unwrap returns the underlying error
func (e *HookError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrHookFailed
func (e *HookError) Is(target error) bool {
	return target == ErrHookFailed
}

// IsValidationFailed reports whether err is a validation failure
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsHookFailure reports whether err was raised by a plugin hook
func IsHookFailure(err error) bool {
	return errors.Is(err, ErrHookFailed)
}
