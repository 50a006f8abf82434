package universities

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrEmptyQuery is returned when the country is empty after trimming.
var ErrEmptyQuery = errors.New("empty country query")

// TransportError is returned when the request could not complete.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is returned when the directory responds with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Status     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.statusText())
}

func (e *RemoteError) statusText() string {
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("%d", e.StatusCode)
}

// DecodeError is returned when the response body is not a list of institutions.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
