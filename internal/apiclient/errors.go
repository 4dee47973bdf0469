package apiclient

import "fmt"

// APIError is a non-2xx response whose body carried a server message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// StatusError is a non-2xx response without a readable error body.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// DecodeError is a 2xx response whose body could not be decoded. The
// request itself succeeded; retrying will not help.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
