package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// AdapterError signals that an external collaborator (record store, blob
// store, mail transport) could not complete a call. It is recoverable:
// the caller may retry, the input was fine.
type AdapterError struct {
	Adapter string // "database", "blob", "mail"
	Err     error
}

func NewAdapterError(adapter string, err error) error {
	return &AdapterError{Adapter: adapter, Err: err}
}

func (err AdapterError) Error() string {
	return err.Adapter + " unavailable: " + err.Err.Error()
}

func (err AdapterError) Unwrap() error { return err.Err }

func IsAdapterError(err error) bool {
	_, ok := errors.Cause(err).(*AdapterError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
