package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports that the requested resource no longer exists
// server-side. Callers use errors.Is to detect it.
var ErrNotFound = errors.New("not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// IsNotFound reports whether err means the resource is gone, either as
// ErrNotFound directly or as a wrapped 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
