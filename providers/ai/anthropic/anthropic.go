// Package anthropic implements the [ai.Adapter] contract for Anthropic's
// Messages API. The wire format diverges from the OpenAI-compatible family
// in every way that matters: x-api-key authentication, a version-pinning
// header, a top-level system field instead of a system role, image blocks
// that precede the text block, a mandatory max_tokens field, and token usage
// reported as separate input/output counts.
package anthropic

import (
	"os"
	"strings"

	"github.com/aioverlay/aibridge/providers/ai"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of
	// the URL.
	anthropicVersion = "2023-06-01"

	defaultModel = "claude-3-5-sonnet-20241022"

	// The API has no server-side max_tokens default; the field is mandatory
	// on every request. Streaming gets more headroom since the caller sees
	// tokens as they arrive and can stop early.
	defaultMaxTokens = 2048
	streamMaxTokens  = 4096
)

// Adapter implements [ai.StreamAdapter] for Anthropic.
type Adapter struct {
	baseURL string
}

var _ ai.StreamAdapter = (*Adapter)(nil)

// New returns an Anthropic adapter. ANTHROPIC_API_BASE_URL overrides the
// endpoint base when set (proxies, test stubs).
func New() *Adapter {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements [ai.Adapter].
func (a *Adapter) Name() string { return "Claude" }

// EndpointURL implements [ai.Adapter].
func (a *Adapter) EndpointURL() string { return a.baseURL + messagesEndpoint }

// RequiresKey implements [ai.Adapter].
func (a *Adapter) RequiresKey() bool { return true }

// DefaultModel implements [ai.Adapter].
func (a *Adapter) DefaultModel() string { return defaultModel }

// Auth implements [ai.Adapter]. Anthropic does not use Bearer tokens: the
// credential travels in x-api-key, and anthropic-version pins the wire
// format.
func (a *Adapter) Auth(apiKey string) []ai.Header {
	return []ai.Header{
		{Key: "x-api-key", Value: apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}
