package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is handled globally at the gateway (session cleared,
	// shell redirected); it must never be rendered as an inline form error.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ValidationError carries field-scoped messages the server rejected a
// payload with.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid data (%d field errors)", len(e.Fields))
}

// APIError is any other non-2xx response; Message holds the server-provided
// error text verbatim when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Message extracts the server-provided error text from err, falling back to
// the given localized string. Forms and screens use this to fill their
// inline messages.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
