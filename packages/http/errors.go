package http

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented is returned by the POST, PUT and DELETE verbs.
var ErrNotImplemented = errors.New("method not implemented")

// ErrInvalidUTF8 is returned by Response.Text when the body is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("response body is not valid UTF-8")

// StatusError is returned by RaiseForStatus for status codes outside 2XX
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code not in 2XX range: %d - %s", e.StatusCode, e.Reason)
}

// SecureTransportError reports that a TLS configuration could not be built
// for an https URL. The request is never sent.
type SecureTransportError struct {
	URL string
	Err error
}

func (e *SecureTransportError) Error() string {
	return fmt.Sprintf("secure transport setup failed for %s: %v", e.URL, e.Err)
}

func (e *SecureTransportError) Unwrap() error {
	return e.Err
}

// SecurityDowngradeError is returned when a response obtained over https
// is used to chain a request to a non-https URL. A redirect from https to a
// non-https location carries it inside a TransportError, with Redirect set.
type SecurityDowngradeError struct {
	From     string
	To       string
	Redirect bool
}

func (e *SecurityDowngradeError) Error() string {
	if e.Redirect {
		return fmt.Sprintf("refusing redirect from secure %s to insecure %s", e.From, e.To)
	}
	return fmt.Sprintf("refusing to chain from secure %s to insecure %s", e.From, e.To)
}

// CookieStoreError reports a cookie store that cannot be attached to a session
type CookieStoreError struct {
	Got string
}

func (e *CookieStoreError) Error() string {
	return fmt.Sprintf("cookie store must be a non-nil http.CookieJar, got %s", e.Got)
}

// SchemaError lists the JSON schema violations found in a response body
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Violations, "; "))
}
