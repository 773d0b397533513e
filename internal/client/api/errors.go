package api

import "errors"

// Sentinel failure classes, matched with errors.Is. Every error returned by
// this package carries a human-readable message; these sentinels only
// classify it.
var (
	// ErrUnavailable marks transport-level failures: connection refused,
	// DNS trouble, request timeout.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized marks HTTP 401: the token is missing, expired or
	// revoked. Callers treat this as "session invalid".
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is the normalized error shape for anything the backend or the
// transport throws at us. Message is drawn from, in priority order: the
// backend-provided message, the transport error text, the caller-supplied
// fallback.
type Error struct {
	Message string
	Status  int // HTTP status, 0 for transport failures
	kind    error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the failure class so errors.Is(err, ErrUnauthorized) works.
func (e *Error) Unwrap() error { return e.kind }

func newError(message string, status int, kind error) *Error {
	return &Error{Message: message, Status: status, kind: kind}
}
