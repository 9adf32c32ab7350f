package filevalidator

import "fmt"

// CustomValidatorFunc inspects a file. Returning true passes. Returning false
// fails with the given message, or a generic one when the message is empty.
type CustomValidatorFunc func(file *File) (ok bool, message string)

// CustomValidator is scoped to one exact MIME type. Wildcards are not
// supported: a validator whose Type differs from the file's declared type is
// skipped for that file.
type CustomValidator struct {
	Type     string
	Validate CustomValidatorFunc
}

// Custom creates a CustomValidator for mimeType. It panics when mimeType is
// empty or fn is nil.
func Custom(mimeType string, fn CustomValidatorFunc) CustomValidator {
	if mimeType == "" {
		panic("filevalidator: custom validator type must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("filevalidator: custom validator for %q has nil func", mimeType))
	}
	return CustomValidator{Type: mimeType, Validate: fn}
}

// RuleName returns the name under which outcomes of this validator are reported
func (c CustomValidator) RuleName() string {
	return "custom:" + c.Type
}

// Applies reports whether the validator runs for file
func (c CustomValidator) Applies(file *File) bool {
	return c.Validate != nil && c.Type == file.Type
}

func (c CustomValidator) evaluate(file *File) Outcome {
	ok, msg := c.Validate(file)
	if ok {
		return Outcome{Rule: c.RuleName(), Passed: true, FileName: file.Name}
	}
	if msg == "" {
		msg = fmt.Sprintf("file %q failed custom validation for %s", file.Name, c.Type)
	}
	return Outcome{Rule: c.RuleName(), Passed: false, FileName: file.Name, Message: msg}
}
