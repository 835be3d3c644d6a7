// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperror defines the error kinds surfaced by services and the
// mapping from each kind to an HTTP status and JSON body.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// NotFoundError means the requested entity does not exist.
	NotFoundError
	// ConflictError means a uniqueness rule was violated.
	ConflictError
	// AuthError means missing or invalid credentials or token.
	AuthError
	// ForbiddenError means the caller is authenticated but not allowed.
	ForbiddenError
	// BadRequestError covers malformed input and invalid references.
	BadRequestError
	// ValidationError carries field-level input errors.
	ValidationError
	// InternalError is an unexpected failure.
	InternalError
	// ExternalServiceError is a failure reported by a dependency such as object storage.
	ExternalServiceError
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the error type returned across service boundaries.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Fields  []FieldError
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

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case BadRequestError, ValidationError:
		return http.StatusBadRequest
	case ExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError of the given type.
func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{Type: errType, Message: message, Err: err}
}

func NewNotFoundError(message string, err error) *AppError {
	return New(NotFoundError, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return New(ConflictError, message, err)
}

func NewAuthError(message string, err error) *AppError {
	return New(AuthError, message, err)
}

func NewForbiddenError(message string, err error) *AppError {
	return New(ForbiddenError, message, err)
}

func NewBadRequestError(message string, err error) *AppError {
	return New(BadRequestError, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return New(InternalError, message, err)
}

func NewExternalServiceError(message string, err error) *AppError {
	return New(ExternalServiceError, message, err)
}

// NewValidationError creates a ValidationError listing the rejected fields.
func NewValidationError(fields []FieldError) *AppError {
	return &AppError{Type: ValidationError, Message: "validation failed", Fields: fields}
}

// Wrap adds context to err. An AppError keeps its kind and fields and gets
// the context prefixed to its message; any other error becomes an
// InternalError.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: context + ": " + appErr.Message,
			Err:     err,
			Fields:  appErr.Fields,
		}
	}
	return NewInternalError(context, err)
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// ToResponse converts the error to its client-facing body. The wrapped
// error is never included.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Fields: e.Fields}
}

// From extracts an *AppError from err's chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err's chain holds an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	appErr, ok := From(err)
	return ok && appErr.Type == errType
}

func IsNotFound(err error) bool { return Is(err, NotFoundError) }

func IsConflict(err error) bool { return Is(err, ConflictError) }

func IsAuth(err error) bool { return Is(err, AuthError) }

func IsBadRequest(err error) bool { return Is(err, BadRequestError) }
