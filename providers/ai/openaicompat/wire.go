package openaicompat

import (
	"encoding/json"
	"strings"

	"github.com/aioverlay/aibridge/internal/utils"
	"github.com/aioverlay/aibridge/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatRequest is the /v1/chat/completions request body. The "stream" field
// is omitted entirely in non-streaming mode: some LM Studio versions return
// 400 when stream:false is present.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
	Stream    bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role string `json:"role"` // "system" or "user"
	// Content is a plain string for text-only requests, or []contentPart
	// when an image is attached. The array form is never sent without an
	// image: some servers reject it for text-only messages.
	Content any `json:"content"`
}

type contentPart struct {
	Type     string          `json:"type"` // "text" or "image_url"
	Text     string          `json:"text,omitempty"`
	ImageURL *imageURLSource `json:"image_url,omitempty"`
}

type imageURLSource struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Message chatResponseMessage `json:"message"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
	// Reasoning carries chain-of-thought text on CoT models (DeepSeek-R1,
	// local "thinking" models). When the token budget runs out mid-thought,
	// content comes back empty and the only usable text lives here.
	Reasoning string `json:"reasoning"`
}

type chatUsage struct {
	TotalTokens int `json:"total_tokens"`
}

// chatStreamChunk is one SSE payload of a streaming completion.
type chatStreamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamDelta struct {
	Content string `json:"content"`
}

/*
	CONVERSION
*/

// reasoningOnlyNote is appended when the answer had to be salvaged from the
// reasoning field, so the user understands why the reply reads like thinking
// out loud and how to fix it.
const reasoningOnlyNote = "\n\n*— the model returned reasoning only; raise the token limit for a full answer —*"

// BuildPayload implements [ai.Adapter]. promptText is the normalized prompt
// produced by [ai.BuildPrompt].
func (a *Adapter) BuildPayload(request ai.Request, promptText string) (any, error) {
	return a.buildPayload(request, promptText, false), nil
}

// BuildStreamPayload implements [ai.StreamAdapter].
func (a *Adapter) BuildStreamPayload(request ai.Request, promptText string) (any, error) {
	return a.buildPayload(request, promptText, true), nil
}

func (a *Adapter) buildPayload(request ai.Request, promptText string, stream bool) chatRequest {
	model := request.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}

	var messages []chatMessage

	userText := promptText
	system := strings.TrimSpace(request.SystemPrompt)
	if system != "" {
		if a.cfg.InlineSystem {
			// Many local chat templates only accept user/assistant roles;
			// prepend the directive to the user text instead.
			userText = system + "\n\n" + promptText
		} else {
			messages = append(messages, chatMessage{Role: "system", Content: request.SystemPrompt})
		}
	}

	messages = append(messages, chatMessage{Role: "user", Content: a.userContent(request, userText)})

	return chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
		Stream:    stream,
	}
}

// userContent returns a plain string for text-only requests and the
// multimodal part array only when an image rides along on a vision-capable
// provider.
func (a *Adapter) userContent(request ai.Request, userText string) any {
	if !a.cfg.Vision || request.ImageBase64 == "" {
		return userText
	}
	return []contentPart{
		{Type: "text", Text: userText},
		{Type: "image_url", ImageURL: &imageURLSource{
			URL:    "data:image/png;base64," + request.ImageBase64,
			Detail: a.cfg.ImageDetail,
		}},
	}
}

// ParseResponse implements [ai.Adapter].
func (a *Adapter) ParseResponse(status int, body []byte) (*ai.Response, error) {
	if status < 200 || status >= 300 {
		return nil, &ai.HTTPStatusError{
			Provider: a.cfg.Label,
			Status:   status,
			Message:  utils.ErrorMessage(body),
		}
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ai.ParseError{
			Provider: a.cfg.Label,
			Err:      err,
			Body:     utils.TruncateString(string(body), 200),
		}
	}

	result := &ai.Response{
		Text:  extractContent(resp),
		Model: resp.Model,
	}
	if resp.Usage != nil {
		total := resp.Usage.TotalTokens
		result.TokensUsed = &total
	}
	return result, nil
}

// extractContent pulls the reply text out of the first choice. When content
// is empty it falls back to the reasoning field and annotates the result so
// the caller knows the answer is thinking text, not a final reply. Content
// always wins when present.
func extractContent(resp chatResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	message := resp.Choices[0].Message

	if content := strings.TrimSpace(message.Content); content != "" {
		return content
	}
	if reasoning := strings.TrimSpace(message.Reasoning); reasoning != "" {
		return reasoning + reasoningOnlyNote
	}
	return ""
}

// ParseStreamLine implements [ai.StreamAdapter]: choices[0].delta.content.
// Malformed JSON and delta-free events (role announcements, usage chunks,
// finish markers) are skipped without aborting the stream.
func (a *Adapter) ParseStreamLine(data []byte) (string, bool) {
	var chunk chatStreamChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}
