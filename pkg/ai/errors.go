package ai

import "fmt"

// NetworkError wraps a transport failure against the completion endpoint.
// There is no automatic fallback to the local strategy; the caller decides.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("completion request: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError wraps a malformed or empty completion response.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("completion response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
