package domain

import "errors"

// Error kinds. Every business-rule failure wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a business-rule failure whose message is safe to show to clients
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError creates an Error of the given kind
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid credentials")
