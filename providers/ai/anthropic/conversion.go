package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/aioverlay/aibridge/internal/utils"
	"github.com/aioverlay/aibridge/providers/ai"
)

/*
	MESSAGES API - INPUT
*/

type messagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	// System is a top-level field, not a message role. Omitted when the
	// system prompt is empty after trimming.
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"` // "text" or "image"
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`       // "base64"
	MediaType string `json:"media_type"` // "image/png"
	Data      string `json:"data"`
}

/*
	MESSAGES API - OUTPUT
*/

type messagesResponse struct {
	Model   string          `json:"model"`
	Content []responseBlock `json:"content"`
	Usage   *anthropicUsage `json:"usage,omitempty"`
}

type responseBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// streamEvent is the envelope of one Anthropic SSE payload. Only
// content_block_delta events carry text; everything else in the
// message_start → ... → message_stop lifecycle is ignored by the bridge.
type streamEvent struct {
	Type  string       `json:"type"`
	Delta *streamDelta `json:"delta,omitempty"`
}

type streamDelta struct {
	Text string `json:"text"`
}

/*
	CONVERSION
*/

// BuildPayload implements [ai.Adapter].
func (a *Adapter) BuildPayload(request ai.Request, promptText string) (any, error) {
	return a.buildPayload(request, promptText, false), nil
}

// BuildStreamPayload implements [ai.StreamAdapter].
func (a *Adapter) BuildStreamPayload(request ai.Request, promptText string) (any, error) {
	return a.buildPayload(request, promptText, true), nil
}

func (a *Adapter) buildPayload(request ai.Request, promptText string, stream bool) messagesRequest {
	model := request.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		if stream {
			maxTokens = streamMaxTokens
		} else {
			maxTokens = defaultMaxTokens
		}
	}

	// Block order matters: the image block, when present, precedes the text.
	var content []contentBlock
	if request.ImageBase64 != "" {
		content = append(content, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      request.ImageBase64,
			},
		})
	}
	content = append(content, contentBlock{Type: "text", Text: promptText})

	return messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: content}},
		System:    strings.TrimSpace(request.SystemPrompt),
		Stream:    stream,
	}
}

// ParseResponse implements [ai.Adapter]. Token usage arrives as separate
// input/output counts and is reported to the caller as their sum.
func (a *Adapter) ParseResponse(status int, body []byte) (*ai.Response, error) {
	if status < 200 || status >= 300 {
		return nil, &ai.HTTPStatusError{
			Provider: a.Name(),
			Status:   status,
			Message:  utils.ErrorMessage(body),
		}
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ai.ParseError{
			Provider: a.Name(),
			Err:      err,
			Body:     utils.TruncateString(string(body), 200),
		}
	}

	result := &ai.Response{
		Text:  extractText(resp),
		Model: resp.Model,
	}
	if resp.Usage != nil {
		total := resp.Usage.InputTokens + resp.Usage.OutputTokens
		result.TokensUsed = &total
	}
	return result, nil
}

// extractText returns the first text block's content. Anthropic has no
// reasoning fallback: when the model returns nothing usable, the text is
// simply empty.
func extractText(resp messagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// ParseStreamLine implements [ai.StreamAdapter]: only content_block_delta
// events carry a text delta. Malformed lines and other lifecycle events are
// skipped.
func (a *Adapter) ParseStreamLine(data []byte) (string, bool) {
	var event streamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return "", false
	}
	if event.Type != "content_block_delta" || event.Delta == nil || event.Delta.Text == "" {
		return "", false
	}
	return event.Delta.Text, true
}
