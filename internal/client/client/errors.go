package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoToken      = errors.New("login response carries no access token")
)

// APIError is a non-2xx answer from the backend. Message is the "error"
// field of the JSON body, if any. A 401 or 422 answer matches
// ErrUnauthorized under errors.Is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && isAuthRejection(e.StatusCode)
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity
}
