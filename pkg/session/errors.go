package session

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest indicates the request could not be built before send.
var ErrInvalidRequest = errors.New("invalid request")

// NetworkError wraps a transport-level failure. Calls are never retried;
// the failure is surfaced to the caller immediately.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError wraps a response body that did not match the contract.
// For state reconciliation it is treated the same as a NetworkError.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// StatusError carries an HTTP error status from the backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
}
