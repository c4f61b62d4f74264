package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsUnauthorized reports whether the server rejected the caller's token or
// credentials.
func IsUnauthorized(err error) bool {
	apiErr, ok := asError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsClientError reports whether err carries a validation or conflict
// message meant for the user.
func IsClientError(err error) bool {
	apiErr, ok := asError(err)
	return ok && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusConflict)
}

func IsNotFound(err error) bool {
	apiErr, ok := asError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// MessageOf returns the server's message for API errors and "" otherwise.
func MessageOf(err error) string {
	apiErr, ok := asError(err)
	if !ok {
		return ""
	}
	return apiErr.Message
}
