package pawnapi

import (
	"errors"
	"fmt"

	"github.com/pawnfin/console/internal/domain/session"
)

// ErrSessionExpired is returned for any 401. By the time it is returned the
// session token and company have already been cleared.
var ErrSessionExpired = session.ErrExpired

// APIError is a non-2xx reply other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status of the reply
func (e *APIError) StatusCode() int {
	return e.Status
}

// NetworkError means the pawn-api could not be reached at all.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Failed to reach pawn-api server: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a 404 from the pawn-api.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
