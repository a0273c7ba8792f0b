// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package apperr defines the centralized error handling framework for the Bazinga
storefront core.

Every failure that crosses a package boundary is an [AppError]. The same type
serves both sides of the wire:

  - Client taxonomy: NetworkFailure, ValidationFailure, StaleResponse and
    AuthRequired are what the commerce store, checkout flow and transport
    client hand to presentation code.
  - Server responses: the sandbox backend renders NotFound, Unauthorized,
    Forbidden and friends as JSON error envelopes.

Raw transport errors never reach presentation logic; they travel as the
Cause of a NETWORK_FAILURE.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNetworkFailure = "NETWORK_FAILURE"
	CodeValidation     = "VALIDATION_ERROR"
	CodeStaleResponse  = "STALE_RESPONSE"
	CodeAuthRequired   = "AUTH_REQUIRED"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError is the canonical error type of the storefront core.
//
// # Security
//
// The Cause field is for logging only and is never serialized.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NETWORK_FAILURE").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the HTTP status code associated with the failure.
	// For NETWORK_FAILURE it is the status returned by the backend (0 when
	// the request never got a response).
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the name of the field that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Field returns the message recorded for field, or "" when the field passed.
func (e *AppError) Field(field string) string {
	for _, detail := range e.Details {
		if detail.Field == field {
			return detail.Message
		}
	}
	return ""
}

// # Client Taxonomy

// Network creates a NETWORK_FAILURE for a transport error or a non-2xx
// response. status is 0 when no response was received.
func Network(status int, msg string, cause error) *AppError {
	if msg == "" {
		msg = "Network request failed"
	}
	return &AppError{
		Code:       CodeNetworkFailure,
		Message:    msg,
		HTTPStatus: status,
		Cause:      cause,
	}
}

// Stale creates a STALE_RESPONSE for a response superseded by a newer request
// on the same collection.
func Stale(collection string) *AppError {
	return &AppError{
		Code:       CodeStaleResponse,
		Message:    fmt.Sprintf("%s response superseded by a newer request", collection),
		HTTPStatus: http.StatusConflict,
	}
}

// AuthRequired creates an AUTH_REQUIRED for an action attempted while signed out.
//
// Example:
//
//	apperr.AuthRequired("add to cart") // "Sign in to add to cart"
func AuthRequired(action string) *AppError {
	return &AppError{
		Code:       CodeAuthRequired,
		Message:    "Sign in to " + action,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Server Responses (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Comic") // Returns "Comic not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate resources.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// # Server Responses (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected error.
// The cause is stored for logging but is never serialized.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
