package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes surfaced by the core, plus
// capacity which the HTTP layer reports as a client error rather than a
// conflict.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrCapacity   = errors.New("capacity exceeded")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel class, matched with errors.Is
	Message string // human-readable message returned to the client
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func NotFoundMsg(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func CapacityExceeded(message string) *AppError {
	return &AppError{
		Err:     ErrCapacity,
		Message: message,
	}
}

// Internal wraps a store or transport failure. The wrapped error is kept
// for logging; the message is what the client may see.
func Internal(err error, message string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
		Message: message,
	}
}
