// Package backend is the seam to the text-generation service. A Backend takes
// a persona, user content and a response schema and returns the raw text the
// service produced; it does not interpret that text.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Request is one structured-output generation request.
type Request struct {
	// Instructions is the persona / system prompt.
	Instructions string
	// Content is the user message.
	Content string
	// SchemaName names the response format.
	SchemaName string
	// Schema is the JSON Schema the response must satisfy.
	Schema map[string]any
}

// Backend produces raw structured output for a Request. Implementations must
// be safe for concurrent use and hold no per-request state.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Prober is implemented by backends that can check connectivity and model
// availability without generating anything.
type Prober interface {
	Probe(ctx context.Context) error
}

// ErrUnavailable matches every *UnavailableError via errors.Is.
var ErrUnavailable = errors.New("generation backend unavailable")

// CodeUnavailable is the stable error code reported for backend failures.
const CodeUnavailable = "SERVICE_UNAVAILABLE"

// UnavailableError reports that the backend could not be reached or failed at
// the transport level.
type UnavailableError struct {
	// Backend names the implementation, e.g. "openai".
	Backend string
	// Status is the HTTP status when one was received, otherwise 0.
	Status int
	// Retryable is true for failures a later attempt might not hit
	// (network errors, timeouts, 429 and 5xx).
	Retryable bool
	Err       error
}

func (e *UnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s backend unavailable (status %d): %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnavailable) succeed.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Code returns CodeUnavailable.
func (e *UnavailableError) Code() string { return CodeUnavailable }

// IsRetryable reports whether err is an UnavailableError marked retryable.
func IsRetryable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue) && ue.Retryable
}
