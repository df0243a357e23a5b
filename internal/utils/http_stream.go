package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aioverlay/aibridge/providers/ai"
)

// DoPostStream performs an HTTP POST and returns the response with its body
// left open for SSE reading. The caller owns the body and must close it when
// done, including on non-2xx statuses — the caller is expected to drain the
// (length-capped) error body and hand it to the adapter for interpretation.
func DoPostStream(ctx context.Context, client *http.Client, url string, headers []ai.Header, body any) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	return response, nil
}

// ReadErrorBody drains a non-2xx response body, capped at
// maxResponseBodySize, and closes it.
func ReadErrorBody(response *http.Response) []byte {
	defer CloseWithLog(response.Body)
	errorBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return nil
	}
	return errorBody
}

// dataPrefix marks the SSE lines that carry payloads; everything else
// (event:, id:, comments, blank keep-alives) is transport noise. The prefix
// must start at column zero: the SSE format never indents field names.
const dataPrefix = "data: "

// doneSentinel terminates OpenAI-compatible streams. Anthropic has no
// sentinel and signals completion solely by closing the HTTP body.
const doneSentinel = "[DONE]"

// maxSSELineSize caps a single SSE line (1 MB). The default bufio.Scanner
// limit is 64 KiB, too small for large events such as long completions; a
// rogue server emitting a newline-free line must not grow the buffer without
// bound. Exceeding the cap surfaces a wrapped bufio.ErrTooLong via Next().
const maxSSELineSize = 1 * 1024 * 1024

// SSEScanner incrementally splits a streaming HTTP body into SSE data
// payloads. Chunk boundaries are transport artifacts: a logical line (or even
// a UTF-8 codepoint) may be split anywhere across reads, which the buffered
// scanner absorbs. Lines are terminated by '\n' only; a trailing '\r' is
// trimmed (no provider has been observed emitting bare-'\r' terminators).
type SSEScanner struct {
	scanner *bufio.Scanner
	done    bool
}

// NewSSEScanner creates an SSEScanner reading from the given stream body.
// Individual lines are bounded by maxSSELineSize.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next SSE data payload. Lines without the "data: " prefix
// are skipped. Returns io.EOF when the stream ends and when the [DONE]
// sentinel is encountered; once io.EOF is returned no further payloads are
// produced.
func (s *SSEScanner) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		data, ok := strings.CutPrefix(s.scanner.Text(), dataPrefix)
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == doneSentinel {
			s.done = true
			return "", io.EOF
		}
		if data != "" {
			return data, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE read error: %w", err)
	}
	return "", io.EOF
}
