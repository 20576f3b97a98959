// Package apperr defines the tagged application error used across services.
//
// Every business failure carries a Kind (stable, machine-readable) and a
// human-readable message. The HTTP boundary maps kinds to status codes; the
// services never import net/http.
//
//	return apperr.NotFound("Product not found")
//	return apperr.ConflictWith("Order cannot be paid", issues)
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is the tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Details any // optional structured payload (e.g. per-item conflict reasons)
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an explicit kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// BadRequest marks a caller mistake that is retryable after correction.
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// Unauthorized marks a caller that does not own the resource.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden marks a caller lacking the required role.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound marks a missing or unusable entity.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict marks a consistency violation discovered mid-operation.
func Conflict(message string) *Error { return New(KindConflict, message) }

// ConflictWith is Conflict plus a structured details payload.
func ConflictWith(message string, details any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

// KindOf extracts the Kind from err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
