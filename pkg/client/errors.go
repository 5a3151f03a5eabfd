package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NetworkError means the HTTP exchange never completed: connection refused,
// DNS failure, timeout, cancelled context or a body that could not be read.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for responses outside the 2xx range
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// ResponseDecodeError is returned when a 2xx body is not a JSON envelope
type ResponseDecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error { return e.Err }

// APIError is returned when the envelope decodes but reports success=false.
// Data carries whatever payload came with the failure.
type APIError struct {
	Endpoint string
	Message  string
	Data     json.RawMessage
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "API error"
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

// ResponseValidationError is returned by Typed when the envelope succeeded but
// the payload does not match the requested shape.
type ResponseValidationError struct {
	Endpoint string
	Shape    string
	Field    string
	Err      error
}

func (e *ResponseValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: payload does not match %s (field %q): %v", e.Endpoint, e.Shape, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: payload does not match %s: %v", e.Endpoint, e.Shape, e.Err)
}

func (e *ResponseValidationError) Unwrap() error { return e.Err }

var (
	errMissingField = errors.New("required field missing")
	errWrongKind    = errors.New("wrong field type")
)

// IsBusinessError reports whether err is a refusal by the service (APIError)
// rather than an environment or contract failure.
func IsBusinessError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
