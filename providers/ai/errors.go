package ai

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the cancellation broadcaster wins the race
// against an in-flight call. It is a distinguished sentinel, not a failure:
// callers should show no result and no error for it. Check with errors.Is.
var ErrCancelled = errors.New("request cancelled")

// AuthError reports a missing API key for a provider that mandates one.
// It is returned before any network call is attempted.
type AuthError struct {
	Provider string // provider label, e.g. "OpenAI"
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s API key is required", e.Provider)
}

// NetworkError reports a connect, transport, or timeout failure. Cause is a
// best-effort human-readable classification (timeout vs connection refused vs
// other) used for actionable messaging, especially toward local-server setups.
type NetworkError struct {
	Provider string
	Cause    string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error: %s", e.Provider, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a remote response outside the 2xx range. Message is
// the best extractable human-readable cause (see the adapters' extraction
// order), falling back to the truncated raw body.
type HTTPStatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Provider, e.Status, e.Message)
}

// ParseError reports a 2xx response body that is not the expected JSON shape.
// Body carries a truncated copy of the raw payload for diagnosis.
type ParseError struct {
	Provider string
	Err      error
	Body     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse response: %v (raw: %s)", e.Provider, e.Err, e.Body)
}

func (e *ParseError) Unwrap() error { return e.Err }
