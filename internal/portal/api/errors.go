package api

import (
	"fmt"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
)

// ErrorBody is the structured error payload the backend attaches to 4xx
// responses. Either field may be empty.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the backend. It unwraps to one of the
// package-level sentinel errors so call sites can classify with errors.Is.
type APIError struct {
	StatusCode int
	Status     string
	Body       ErrorBody
	kind       error
}

func (a *APIError) Error() string {
	if a.Body.Message != "" {
		return fmt.Sprintf("api: %s: %s", a.Status, a.Body.Message)
	}
	if a.Body.Error != "" {
		return fmt.Sprintf("api: %s: %s", a.Status, a.Body.Error)
	}
	return fmt.Sprintf("api: %s", a.Status)
}

func (a *APIError) Unwrap() error {
	return a.kind
}

// Message returns the backend-supplied message verbatim when present, else
// the given fallback. Views surface this to the user for validation errors.
func (a *APIError) Message(fallback string) string {
	if a.Body.Message != "" {
		return a.Body.Message
	}
	if a.Body.Error != "" {
		return a.Body.Error
	}
	return fallback
}

// classify maps a status code onto a sentinel error.
func classify(status int) error {
	switch {
	case status == 401 || status == 403:
		return e.ErrUnauthorized
	case status == 404:
		return e.ErrNotFound
	case status >= 400 && status < 500:
		return e.ErrInvalidInput
	default:
		return e.ErrUnavailable
	}
}
