// Package connectors holds the transport-level types shared by the
// platform clients. Clients report failures as one of these errors and
// leave policy (candidate iteration, retry, taxonomy mapping) to the
// broker layer.
package connectors

import (
	"fmt"
	"net/http"
)

// HTTPError is a non-2xx response from a remote platform. Body is
// already truncated to a safe length by the client.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

// Unauthorized reports a 401.
func (e *HTTPError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// Forbidden reports a 403.
func (e *HTTPError) Forbidden() bool { return e.StatusCode == http.StatusForbidden }

// ParseError is an HTTP-success response whose body was not the
// expected JSON shape. WordPress installs routinely answer 200 with an
// HTML error page, so this is a distinct, non-auth failure.
type ParseError struct {
	Snippet string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable response body: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// TruncateBody caps a remote body for inclusion in errors and logs.
func TruncateBody(b []byte) string {
	const max = 500
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
