package errs

import (
	"fmt"
	"strings"

	"duvidha/internal/pkg/logx"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomError is the error type handlers hand to the response layer.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-facing description.
	Message string

	// Status is the HTTP status code sent with this error.
	Status int

	// Fields lists field-level validation failures, if any.
	Fields []FieldError
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return fmt.Sprintf("error code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code.
//
// For ErrUnknown, a leading error in details is logged and not exposed. For
// other codes, details are applied to the message template when it has
// formatting verbs. Unregistered codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	tmpl, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("no template for error code %d", code),
			"unknown error code requested",
			"requested_code", code,
		)
		tmpl = errorMap[ErrUnknown]
	}

	customErr := tmpl

	switch {
	case len(details) == 0:
	case code == ErrUnknown:
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "internal error")
		}
	case strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	default:
		logx.Warn("error details ignored: message template has no verbs", "code", code)
	}

	return &customErr
}

// NewValidationError builds an ErrInvalidParams error carrying field failures.
// Its Message joins the field messages so clients that only read "message"
// still show every problem.
func NewValidationError(fields []FieldError) *CustomError {
	customErr := NewError(ErrInvalidParams)
	if len(fields) == 0 {
		return customErr
	}

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	customErr.Message = strings.Join(msgs, ", ")
	customErr.Fields = fields
	return customErr
}
