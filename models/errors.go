package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError for the transport layer.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindInvalidCreds ErrorKind = "INVALID_CREDENTIALS"
	KindUnavailable  ErrorKind = "UNAVAILABLE"
	KindRateLimited  ErrorKind = "TOO_MANY_REQUESTS"
	KindInternal     ErrorKind = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Message string
	Errors  []string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the explicit status if one was set, else the kind's default.
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation, KindInvalidCreds:
		return http.StatusBadRequest
	case KindConflict:
		// the web client expects 400 for duplicate/closed/full conditions
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithStatus overrides the HTTP status derived from the kind.
func (e *AppError) WithStatus(status int) *AppError {
	e.Status = status
	return e
}

// Predefined error constructors
func NewValidationError(message string, errs ...string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Errors: errs}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewInvalidCredentialsError(message string) *AppError {
	return &AppError{Kind: KindInvalidCreds, Message: message}
}

func NewUnavailableError(message string) *AppError {
	return &AppError{Kind: KindUnavailable, Message: message}
}

func NewRateLimitedError(message string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
