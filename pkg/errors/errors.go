// Package errors defines the sentinel errors shared across the indexer and
// searcher, plus an AppError wrapper that carries an HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingIndex    = errors.New("index snapshot not found")
	ErrCorruptSnapshot = errors.New("corrupt index snapshot")
	ErrDocumentDecode  = errors.New("document could not be decoded")
	ErrUnknownTerm     = errors.New("term not found in index")
	ErrMalformedQuery  = errors.New("malformed query")
	ErrInvalidInput    = errors.New("invalid input")
	ErrLocked          = errors.New("index is locked by another writer")
	ErrInternal        = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrMissingIndex), errors.Is(err, ErrUnknownTerm):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMalformedQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrLocked):
		return http.StatusConflict
	case errors.Is(err, ErrCorruptSnapshot):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
