package repository

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the repository answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and any other
	// non-200 response.
	ErrNetwork = errors.New("network error")
)

// StatusError reports an unexpected HTTP status. It unwraps to
// [ErrNotFound] for 404 and to [ErrNetwork] otherwise.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrNetwork
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}
