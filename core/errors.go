package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single request field,
// e.g. a malformed date on an absence request.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries field-level failures out of the attendance domain;
// the API layer renders Fields as a field → message map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the server hit an unrecoverable integrity problem
// and should stop taking requests.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks whether err (or its cause) is a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
