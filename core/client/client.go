// Package client drives provider adapters through single completion
// exchanges, racing every network call against the shared cancellation
// broadcaster. Complete performs one buffered request/response;
// CompleteStream decodes an SSE body into ordered token events.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/aioverlay/aibridge/internal/cancel"
	"github.com/aioverlay/aibridge/internal/utils"
	"github.com/aioverlay/aibridge/providers/ai"
	"github.com/aioverlay/aibridge/providers/ai/anthropic"
	"github.com/aioverlay/aibridge/providers/ai/openaicompat"
)

// Client performs completion exchanges. All collaborators are injected: the
// broadcaster so tests can run one per case, the HTTP client so transports
// can be faked. A Client is safe for concurrent use; each call owns all of
// its mutable state.
type Client struct {
	http      *http.Client
	canceller *cancel.Broadcaster
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (fixed 10s connect / 600s
// total timeouts). Useful for injecting test transports.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client racing its calls against the given broadcaster.
func New(canceller *cancel.Broadcaster, opts ...Option) *Client {
	c := &Client{
		http:      utils.NewHTTPClient(),
		canceller: canceller,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// adapterFor resolves the adapter for a request's provider. The provider set
// is closed: adding one means adding a case here and nothing else.
func adapterFor(request ai.Request) (ai.StreamAdapter, error) {
	switch request.Provider {
	case ai.ProviderOpenAI:
		return openaicompat.NewOpenAI(), nil
	case ai.ProviderClaude:
		return anthropic.New(), nil
	case ai.ProviderDeepSeek:
		return openaicompat.NewDeepSeek(), nil
	case ai.ProviderOpenRouter:
		return openaicompat.NewOpenRouter(), nil
	case ai.ProviderLocal:
		return openaicompat.NewLocal(request.LocalEndpoint)
	default:
		return nil, fmt.Errorf("unknown provider %q", request.Provider)
	}
}

// Complete performs exactly one request/response exchange against the
// request's provider. It fails with *ai.AuthError before any network call
// when the provider mandates a key and none is set, returns ai.ErrCancelled
// when the broadcaster wins the race, and never retries.
func (c *Client) Complete(ctx context.Context, request ai.Request) (*ai.Response, error) {
	adapter, err := adapterFor(request)
	if err != nil {
		return nil, err
	}
	if adapter.RequiresKey() {
		if err := ai.ValidateKey(request.APIKey, adapter.Name()); err != nil {
			return nil, err
		}
	}

	promptText := ai.BuildPrompt(request)
	payload, err := adapter.BuildPayload(request, promptText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending completion request",
		"provider", adapter.Name(),
		"url", adapter.EndpointURL(),
		"payload", utils.JSONToString(payload))

	subscription := c.canceller.Subscribe()

	// The request gets its own context so a cancellation can abandon the
	// network exchange. Best-effort local drop: no abort reaches the server.
	reqCtx, cancelRequest := context.WithCancel(ctx)
	defer cancelRequest()

	type outcome struct {
		response *ai.Response
		err      error
	}
	done := make(chan outcome, 1)

	go func() {
		status, body, err := utils.DoPost(reqCtx, c.http, adapter.EndpointURL(), adapter.Auth(request.APIKey), payload)
		if err != nil {
			done <- outcome{err: networkError(adapter.Name(), err)}
			return
		}
		response, err := adapter.ParseResponse(status, body)
		done <- outcome{response: response, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.response.Model == "" {
			// Not every provider echoes the model; fall back to the
			// effective one so callers always see a non-empty field.
			out.response.Model = effectiveModel(request, adapter)
		}
		return out.response, nil

	case <-subscription.Changed():
		c.logger.Debug("completion cancelled", "provider", adapter.Name())
		return nil, ai.ErrCancelled

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func effectiveModel(request ai.Request, adapter ai.Adapter) string {
	if request.Model != "" {
		return request.Model
	}
	return adapter.DefaultModel()
}

// networkError classifies a transport failure into an actionable cause.
// Timeout vs connection-refused matters most for local-server setups, where
// the fix is "start the server" or "raise the limit", not "check your key".
func networkError(provider string, err error) error {
	cause := err.Error()

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		cause = "timed out waiting for the server"
	case errors.Is(err, syscall.ECONNREFUSED):
		cause = "connection refused (server not running or port closed)"
	}

	return &ai.NetworkError{Provider: provider, Cause: cause, Err: err}
}
