package contentapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any API response with status 404.
var ErrNotFound = errors.New("contentapi: not found")

// Error is a non-2xx response from the API.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("contentapi: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("contentapi: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsNotFound reports whether err is, or wraps, a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
