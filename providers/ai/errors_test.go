package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestHTTPStatusError_MessageCarriesStatusAndCause(t *testing.T) {
	err := &HTTPStatusError{Provider: "OpenAI", Status: 429, Message: "rate limited"}
	msg := err.Error()
	if !strings.Contains(msg, "429") || !strings.Contains(msg, "rate limited") {
		t.Errorf("expected status and message in %q", msg)
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &NetworkError{Provider: "Local LLM", Cause: "connection refused", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected NetworkError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "Local LLM") {
		t.Errorf("expected provider name in %q", err.Error())
	}
}

func TestErrCancelled_IsDistinguishable(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", ErrCancelled)
	if !errors.Is(wrapped, ErrCancelled) {
		t.Error("expected wrapped cancellation to match ErrCancelled")
	}
}
