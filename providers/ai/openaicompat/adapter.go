// Package openaicompat implements the [ai.Adapter] contract for the whole
// OpenAI-compatible provider family: OpenAI itself, DeepSeek, OpenRouter,
// and local inference servers (LM Studio, Ollama, any /v1/chat/completions
// endpoint). The family shares one wire format; per-provider differences
// (endpoint, defaults, vision support, system-prompt placement, extra
// headers) are captured in a Config instead of duplicated adapters.
package openaicompat

import (
	"fmt"
	"os"
	"strings"

	"github.com/aioverlay/aibridge/providers/ai"
)

const (
	openaiBaseURL     = "https://api.openai.com/v1"
	deepseekBaseURL   = "https://api.deepseek.com/v1"
	openrouterBaseURL = "https://openrouter.ai/api/v1"

	chatCompletionsPath = "/chat/completions"

	// cloudMaxTokens and localMaxTokens are the max_tokens defaults applied
	// when the request does not set a cap. Local servers get more headroom:
	// reasoning-heavy local models burn tokens on thinking before answering.
	cloudMaxTokens = 2048
	localMaxTokens = 4096
)

// Config captures everything that varies across the OpenAI-compatible family.
type Config struct {
	Label        string          // human label used in errors, e.g. "OpenAI"
	ID           ai.ProviderID   // canonical provider identifier
	URL          string          // full chat completions URL
	DefaultModel string          // model when the request does not override
	MaxTokens    int             // max_tokens default
	Vision       bool            // supports image_url content parts
	ImageDetail  string          // image_url detail hint ("high" for OpenAI)
	InlineSystem bool            // fold the system prompt into the user text
	RequiresKey  bool            // empty API key fails before any network call
	ExtraHeaders []ai.Header     // static provider headers (OpenRouter attribution)
}

// Adapter implements [ai.StreamAdapter] for one family member.
type Adapter struct {
	cfg Config
}

var _ ai.StreamAdapter = (*Adapter)(nil)

// New builds an adapter from an explicit Config. The named constructors below
// cover the supported providers; New is exported for tests that need to point
// the wire format at a custom endpoint.
func New(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

// NewOpenAI returns the adapter for OpenAI's chat completions API.
// OPENAI_API_BASE_URL overrides the endpoint base when set.
func NewOpenAI() *Adapter {
	return New(Config{
		Label:        "OpenAI",
		ID:           ai.ProviderOpenAI,
		URL:          baseURLFromEnv("OPENAI_API_BASE_URL", openaiBaseURL) + chatCompletionsPath,
		DefaultModel: "gpt-4o",
		MaxTokens:    cloudMaxTokens,
		Vision:       true,
		ImageDetail:  "high",
		RequiresKey:  true,
	})
}

// NewDeepSeek returns the adapter for DeepSeek's OpenAI-compatible API.
// DeepSeek has no vision support, so image payloads are ignored and the user
// message content is always a plain string.
func NewDeepSeek() *Adapter {
	return New(Config{
		Label:        "DeepSeek",
		ID:           ai.ProviderDeepSeek,
		URL:          baseURLFromEnv("DEEPSEEK_API_BASE_URL", deepseekBaseURL) + chatCompletionsPath,
		DefaultModel: "deepseek-chat",
		MaxTokens:    cloudMaxTokens,
		RequiresKey:  true,
	})
}

// NewOpenRouter returns the adapter for the OpenRouter gateway. The static
// attribution headers are what OpenRouter uses to credit the calling app.
func NewOpenRouter() *Adapter {
	return New(Config{
		Label:        "OpenRouter",
		ID:           ai.ProviderOpenRouter,
		URL:          baseURLFromEnv("OPENROUTER_API_BASE_URL", openrouterBaseURL) + chatCompletionsPath,
		DefaultModel: "openai/gpt-4o",
		MaxTokens:    cloudMaxTokens,
		Vision:       true,
		RequiresKey:  true,
		ExtraHeaders: []ai.Header{
			{Key: "HTTP-Referer", Value: "https://github.com/ai-assistant"},
			{Key: "X-Title", Value: "AI Assistant Overlay"},
		},
	})
}

// NewLocal returns the adapter for a local OpenAI-compatible server at the
// given base URL, e.g. "http://127.0.0.1:1234". When the URL already carries
// a path it is used verbatim; otherwise "/v1/chat/completions" is appended.
// Local servers need no API key, and the system prompt is folded into the
// user message because many local chat templates reject a system role.
func NewLocal(endpoint string) (*Adapter, error) {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if base == "" {
		return nil, fmt.Errorf("local LLM server URL is required (e.g. http://localhost:1234/api/v1/chat)")
	}

	url := base
	if !hasPath(base) {
		url = base + "/v1" + chatCompletionsPath
	}

	return New(Config{
		Label:        "Local LLM",
		ID:           ai.ProviderLocal,
		URL:          url,
		DefaultModel: "local-model",
		MaxTokens:    localMaxTokens,
		Vision:       true,
		InlineSystem: true,
	}), nil
}

// hasPath reports whether the URL carries anything after the host.
func hasPath(url string) bool {
	_, rest, found := strings.Cut(url, "://")
	if !found {
		return strings.Contains(url, "/")
	}
	return strings.Contains(rest, "/")
}

func baseURLFromEnv(envKey, fallback string) string {
	if base := os.Getenv(envKey); base != "" {
		return strings.TrimRight(base, "/")
	}
	return fallback
}

// Name implements [ai.Adapter].
func (a *Adapter) Name() string { return a.cfg.Label }

// EndpointURL implements [ai.Adapter].
func (a *Adapter) EndpointURL() string { return a.cfg.URL }

// RequiresKey implements [ai.Adapter].
func (a *Adapter) RequiresKey() bool { return a.cfg.RequiresKey }

// DefaultModel implements [ai.Adapter].
func (a *Adapter) DefaultModel() string { return a.cfg.DefaultModel }

// Auth implements [ai.Adapter]. The family authenticates with a Bearer
// token; an empty key (local servers) yields no credential header at all.
func (a *Adapter) Auth(apiKey string) []ai.Header {
	headers := append([]ai.Header(nil), a.cfg.ExtraHeaders...)
	if apiKey != "" {
		headers = append(headers, ai.Header{Key: "Authorization", Value: "Bearer " + apiKey})
	}
	return headers
}
