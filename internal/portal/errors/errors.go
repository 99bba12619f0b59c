// Package errors defines the sentinel errors shared by the api client and
// the view services.
package errors

import (
	"fmt"
)

var (
	ErrNotFound          = fmt.Errorf("not found")
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrUnauthorized      = fmt.Errorf("unauthorized")
	ErrForbiddenRole     = fmt.Errorf("role not allowed")
	ErrNoSession         = fmt.Errorf("no session")
	ErrUnavailable       = fmt.Errorf("backend unavailable")
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrAlreadyApplied    = fmt.Errorf("already applied")
	ErrAlreadyRated      = fmt.Errorf("already rated")
	ErrMalformedResponse = fmt.Errorf("malformed response")
)
