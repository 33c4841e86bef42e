package combell

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when the API answers 404.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// APIError is any other non-2xx response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("combell API %s %s returned %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("combell API %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsUnauthorized reports whether the API rejected the credentials.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403)
}
