package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrNetwork is returned when a request could not be completed or the API answered
// with a non-2xx status other than 401.
type ErrNetwork struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Cause      error
}

// Error implements the error interface.
func (e *ErrNetwork) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("request to %s failed", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrNetwork) Is(target error) bool {
	_, ok := target.(*ErrNetwork)
	return ok
}

func (e *ErrNetwork) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates an ErrNetwork for a failed transport call.
func NewNetworkError(url string, cause error) *ErrNetwork {
	return &ErrNetwork{URL: url, Cause: cause}
}

// NewStatusError creates an ErrNetwork for an unexpected HTTP status.
func NewStatusError(url string, statusCode int) *ErrNetwork {
	return &ErrNetwork{URL: url, StatusCode: statusCode}
}

// ErrTimeout is returned when a request exceeded its per-category deadline.
type ErrTimeout struct {
	URL     string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

// Is allows for error checking with errors.Is().
func (e *ErrTimeout) Is(target error) bool {
	_, ok := target.(*ErrTimeout)
	return ok
}

// ErrAuth is returned when the API rejects the bearer token with HTTP 401.
type ErrAuth struct {
	URL string
}

// Error implements the error interface.
func (e *ErrAuth) Error() string {
	return fmt.Sprintf("authentication rejected by %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrAuth) Is(target error) bool {
	_, ok := target.(*ErrAuth)
	return ok
}

// ErrParse is returned when a response body is not valid JSON. A body that is valid
// JSON but of an unrecognized shape is not an error; it normalizes to no items.
type ErrParse struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *ErrParse) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.Source, e.Cause)
}

// Is allows for error checking with errors.Is().
func (e *ErrParse) Is(target error) bool {
	_, ok := target.(*ErrParse)
	return ok
}

func (e *ErrParse) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err may succeed on a later attempt.
// Cancellation and authentication failures are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, &ErrAuth{}) {
		return false
	}
	return errors.Is(err, &ErrNetwork{}) || errors.Is(err, &ErrTimeout{})
}
