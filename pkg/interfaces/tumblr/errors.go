package tumblr

import (
	"errors"
	"fmt"
)

// AuthError reports a failed token exchange. The exchange is never retried
// by the Authenticator itself.
type AuthError struct {
	GrantType string // authorization_code or refresh_token
	Err       error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token exchange (%s) failed: %v", e.GrantType, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError reports a connection, timeout or decoding failure of one attempt
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request error: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports an unexpected HTTP status for one attempt
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: response error, %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: response error, %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// RequestExhaustedError is returned once the retry budget of a call reaches zero
type RequestExhaustedError struct {
	Method   string
	Path     string
	Attempts int
	Last     error
}

func (e *RequestExhaustedError) Error() string {
	return fmt.Sprintf("%s %s: request failed after %d attempts: %v", e.Method, e.Path, e.Attempts, e.Last)
}

func (e *RequestExhaustedError) Unwrap() error {
	return e.Last
}

// IsAuthError reports whether err wraps an AuthError
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsRequestExhausted reports whether err wraps a RequestExhaustedError
func IsRequestExhausted(err error) bool {
	var target *RequestExhaustedError
	return errors.As(err, &target)
}
