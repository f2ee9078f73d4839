package api

import "fmt"

// StatusError is a non-success HTTP response. Message carries the
// server-provided error text when the body had one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// ValidationError is malformed input rejected by the server (bad
// credentials, duplicate username, and so on). The message is surfaced to
// the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
