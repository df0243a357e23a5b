package ai

/*
	##### ADAPTER INPUT #####
*/

// ProviderID identifies one of the supported completion providers.
// The set is closed: dispatch logic switches over these values and adding a
// provider means adding a constant plus one adapter, never touching callers.
type ProviderID string

const (
	ProviderOpenAI     ProviderID = "openai"
	ProviderClaude     ProviderID = "claude"
	ProviderDeepSeek   ProviderID = "deepseek"
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderLocal      ProviderID = "local"
)

// Request is the canonical, provider-agnostic completion request. It owns no
// resources beyond the call it is used in.
type Request struct {
	// APIKey authenticates against the provider. May be empty for local
	// servers; cloud providers reject an empty key before any network call.
	APIKey string `json:"api_key"`
	// Prompt is the user's question or instruction.
	Prompt string `json:"prompt"`
	// SystemPrompt is an optional system-level directive (persona, language).
	SystemPrompt string `json:"system_prompt,omitempty"`
	// ImageBase64 is an optional PNG payload, base64-encoded at the boundary.
	// The bridge never decodes image content, only relays it.
	ImageBase64 string `json:"image_base64,omitempty"`
	// ContextChunks are preformatted read-only text blocks appended to the
	// prompt in insertion order. The bridge concatenates them verbatim and
	// never parses their internal structure.
	ContextChunks []string `json:"context_chunks,omitempty"`
	// Model overrides the provider's default model when non-empty.
	Model string `json:"model,omitempty"`
	// MaxTokens caps the response length. Zero means the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Provider selects the adapter used for this request.
	Provider ProviderID `json:"provider"`
	// LocalEndpoint is the base URL of a local inference server,
	// e.g. "http://127.0.0.1:1234". Required only when Provider is
	// ProviderLocal, ignored otherwise.
	LocalEndpoint string `json:"local_endpoint,omitempty"`
}

/*
	##### ADAPTER OUTPUT #####
*/

// Response is the normalized result of a single completion exchange.
type Response struct {
	// Text is the completion text. May be empty when the model produced
	// nothing usable.
	Text string `json:"text"`
	// Model echoes the effective model that served the request.
	Model string `json:"model"`
	// TokensUsed is the total token count reported by the provider, when
	// reported at all.
	TokensUsed *int `json:"tokens_used,omitempty"`
}

/*
	##### STREAM EVENTS #####
*/

// StreamEventType identifies the kind of payload carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventToken carries one incremental text delta.
	StreamEventToken StreamEventType = "token"
	// StreamEventDone signals normal completion and carries the full text.
	StreamEventDone StreamEventType = "done"
	// StreamEventCancelled signals that cancellation won the race.
	StreamEventCancelled StreamEventType = "cancelled"
)

// StreamEvent is one event of a streaming completion. Zero or more token
// events arrive in strict emission order, terminated by exactly one done or
// cancelled event; nothing follows a terminal event.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	// Delta is the incremental text fragment (Type == StreamEventToken).
	Delta string `json:"delta,omitempty"`
	// Text is the accumulated full text (Type == StreamEventDone).
	Text string `json:"text,omitempty"`
	// Model echoes the effective model (Type == StreamEventDone).
	Model string `json:"model,omitempty"`
}

// TokenEvent builds a token delta event.
func TokenEvent(delta string) StreamEvent {
	return StreamEvent{Type: StreamEventToken, Delta: delta}
}

// DoneEvent builds the terminal event for a normally completed stream.
func DoneEvent(text, model string) StreamEvent {
	return StreamEvent{Type: StreamEventDone, Text: text, Model: model}
}

// CancelledEvent builds the terminal event for a cancelled stream.
func CancelledEvent() StreamEvent {
	return StreamEvent{Type: StreamEventCancelled}
}
