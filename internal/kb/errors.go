package kb

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes knowledge base errors.
type ErrorCode string

const (
	// ErrCodeNoQuestionsAvailable indicates an exam was started over an empty pool.
	// Recoverable: the session stays in setup and the caller may broaden scope.
	ErrCodeNoQuestionsAvailable ErrorCode = "NO_QUESTIONS_AVAILABLE"

	// ErrCodeInvalidPrecondition indicates a session operation was called out
	// of its allowed state. The operation is a no-op.
	ErrCodeInvalidPrecondition ErrorCode = "INVALID_PRECONDITION"

	// ErrCodeMalformedImport indicates imported data lacks the required shape.
	ErrCodeMalformedImport ErrorCode = "MALFORMED_IMPORT"

	// ErrCodePersistenceUnavailable indicates the storage collaborator failed.
	ErrCodePersistenceUnavailable ErrorCode = "PERSISTENCE_UNAVAILABLE"

	// ErrCodeInvalidEdit indicates an edit failed validation and was not applied.
	ErrCodeInvalidEdit ErrorCode = "INVALID_EDIT"

	// ErrCodeNotFound indicates a referenced section, topic, question or link
	// does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is the error type returned by the knowledge base core and its
// collaborators. Use IsCode to branch on the category.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "exam.start").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error without an underlying cause.
func NewError(code ErrorCode, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// WrapError creates an Error around an underlying cause.
func WrapError(code ErrorCode, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// IsCode reports whether err (or anything it wraps) is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func notFound(op, kind, id string) *Error {
	return NewError(ErrCodeNotFound, op, fmt.Sprintf("%s %q not found", kind, id))
}

func invalidEdit(op, message string) *Error {
	return NewError(ErrCodeInvalidEdit, op, message)
}
