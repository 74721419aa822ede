package domain

import (
	"context"
	"errors"
	"strings"
)

// Error kinds. Every failure surfaced by the core wraps exactly one of them.
var (
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
	ErrForbidden     = errors.New("permission denied")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrService       = errors.New("service error")
	ErrConnectivity  = errors.New("cannot reach server")
)

// Error carries a kind, a message fit for the user and an optional cause.
type Error struct {
	Kind    error
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewValidationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func NewForbiddenError(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

const (
	msgConflictDefault   = "Email already exists. Please use a different email or try logging in."
	msgValidationDefault = "Invalid request. Please check your input."
	msgAuthorization     = "Your session has expired. Please log in again."
	msgForbiddenDefault  = "You do not have permission to do that."
	msgNotFoundDefault   = "The requested item was not found."
	msgService           = "Server error. Please try again later."
	msgConnectivity      = "Unable to connect to server. Please check if the backend is running."
	msgAbandoned         = "The request was cancelled."
	msgUnknown           = "Something went wrong. Please try again."
)

// UserMessage renders err as the message shown to the user. Conflict,
// validation and not-found messages are shown verbatim when present;
// service and connectivity failures always get their generic wording.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var message string
	var de *Error
	if errors.As(err, &de) {
		message = de.Message
	}
	switch {
	case errors.Is(err, ErrValidation):
		return orDefault(message, msgValidationDefault)
	case errors.Is(err, ErrAuthorization):
		return orDefault(message, msgAuthorization)
	case errors.Is(err, ErrForbidden):
		return orDefault(message, msgForbiddenDefault)
	case errors.Is(err, ErrNotFound):
		return orDefault(message, msgNotFoundDefault)
	case errors.Is(err, ErrConflict):
		return orDefault(message, msgConflictDefault)
	case errors.Is(err, ErrService):
		return msgService
	case errors.Is(err, ErrConnectivity):
		return msgConnectivity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return msgAbandoned
	default:
		return msgUnknown
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
