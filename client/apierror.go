package client

import (
	"fmt"
)

// APIError carries the details of a failed request. Kind is one of the
// tweet error kinds, so callers can test for it with errors.Is.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Kind       error
}

func (ae *APIError) Error() string {
	msg := "API request failed"
	if ae.StatusCode > 0 {
		msg = fmt.Sprintf("API request failed (HTTP %d)", ae.StatusCode)
	}
	if ae.Title != "" && ae.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", msg, ae.Title, ae.Detail)
	} else if ae.Detail != "" {
		return fmt.Sprintf("%s: %s", msg, ae.Detail)
	} else if ae.Title != "" {
		return fmt.Sprintf("%s: %s", msg, ae.Title)
	}
	return msg
}

func (ae *APIError) Unwrap() error {
	return ae.Kind
}
