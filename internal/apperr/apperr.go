// Package apperr defines the error variants surfaced to API clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthenticated
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case Unauthenticated:
		return "Unauthenticated"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	default:
		return "Internal"
	}
}

// Code returns the HTTP-equivalent status reported to clients.
// Conflict is reported as a generic failure.
func (k Kind) Code() int {
	switch k {
	case InvalidInput:
		return http.StatusUnprocessableEntity
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Detail is a single field-level message attached to an InvalidInput error
type Detail struct {
	Message string `json:"message"`
}

// Error is a tagged application error
type Error struct {
	Kind    Kind
	Message string
	Details []Detail
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid creates an InvalidInput error carrying the field messages in order
func Invalid(messages []string) *Error {
	details := make([]Detail, 0, len(messages))
	for _, m := range messages {
		details = append(details, Detail{Message: m})
	}
	return &Error{Kind: InvalidInput, Message: "Invalid Input", Details: details}
}

// Wrap creates an Internal error around cause
func Wrap(cause error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Cause: cause}
}

// KindOf reports the kind of err, Internal for anything that is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
