package ai

// Header is a single HTTP header applied to an outbound provider request.
type Header struct {
	Key   string
	Value string
}

// Adapter is the fixed method set every provider implements. It covers the
// full lifecycle of one exchange: endpoint selection, authentication, payload
// construction, and response/error interpretation. Adapters are cheap,
// stateless values created per request; they hold no connections.
type Adapter interface {
	// Name returns the human-readable provider label used in error
	// messages, e.g. "OpenAI" or "Local LLM".
	Name() string

	// EndpointURL returns the full URL completion requests are POSTed to.
	EndpointURL() string

	// RequiresKey reports whether an empty API key must fail before any
	// network call. Local servers legitimately run without one.
	RequiresKey() bool

	// DefaultModel returns the model used when the request does not
	// override it.
	DefaultModel() string

	// Auth returns the headers that authenticate a request. An empty key
	// yields no credential header for providers that tolerate that.
	Auth(apiKey string) []Header

	// BuildPayload converts the canonical request plus the normalized
	// prompt text into the provider's wire JSON structure.
	BuildPayload(request Request, promptText string) (any, error)

	// ParseResponse interprets one HTTP exchange. Non-2xx statuses yield an
	// *HTTPStatusError with the best extractable message; undecodable 2xx
	// bodies yield a *ParseError. The returned Response may carry an empty
	// Model when the provider did not echo one.
	ParseResponse(status int, body []byte) (*Response, error)
}

// StreamAdapter extends Adapter for providers that support SSE streaming.
type StreamAdapter interface {
	Adapter

	// BuildStreamPayload is BuildPayload with streaming enabled and the
	// provider's streaming token defaults applied.
	BuildStreamPayload(request Request, promptText string) (any, error)

	// ParseStreamLine extracts the incremental text delta from one SSE data
	// payload (the JSON after the "data: " prefix). It returns ok=false for
	// malformed lines and for events carrying no text delta; a malformed
	// line must never abort an otherwise healthy stream.
	ParseStreamLine(data []byte) (delta string, ok bool)
}
