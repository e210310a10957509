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
		return "validation failed"
	}
	return err.Err.Error()
}

// PersistenceError reports a document store read or write that did not complete.
// Callers must not assume a failed write happened.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func (err PersistenceError) Error() string {
	if err.Err == nil {
		return err.Op
	}
	return err.Op + ": " + err.Err.Error()
}

func (err PersistenceError) Unwrap() error { return err.Err }

func IsPersistence(err error) bool {
	_, ok := errors.Cause(err).(*PersistenceError)
	return ok
}

// AuthError carries an identity provider failure; Code is the provider's error code.
type AuthError struct {
	Code    string
	Message string
}

func NewAuthError(code, msg string) error {
	return &AuthError{Code: code, Message: msg}
}

func (err AuthError) Error() string {
	return err.Message
}

// AuthErrorCode returns the provider code of err, or "" when err is not an AuthError.
func AuthErrorCode(err error) string {
	if aErr, ok := errors.Cause(err).(*AuthError); ok {
		return aErr.Code
	}
	return ""
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
