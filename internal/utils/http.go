package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aioverlay/aibridge/providers/ai"
)

const (
	// connectTimeout bounds DNS + TCP connect. Kept short so a dead local
	// server fails fast with an actionable "connection refused".
	connectTimeout = 10 * time.Second

	// totalTimeout bounds the whole exchange. 10 minutes: local inference
	// hardware can be very slow on long prompts.
	totalTimeout = 600 * time.Second

	// maxResponseBodySize caps body reads (10 MB). Enforced via
	// io.LimitReader to prevent unbounded memory allocation from rogue
	// responses.
	maxResponseBodySize int64 = 10 * 1024 * 1024
)

// NewHTTPClient returns the shared client configuration for all providers:
// fixed connect timeout, fixed total timeout, no retries.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
		},
	}
}

// DoPost performs a synchronous HTTP POST with a JSON body and returns the
// status code plus the raw response body. Non-2xx statuses are not an error
// here: interpreting both success and error payloads is the adapter's job.
//
// The response body is always closed; close failures are logged without
// overriding the primary result.
func DoPost(ctx context.Context, client *http.Client, url string, headers []ai.Header, body any) (int, []byte, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}

	return res.StatusCode, respBody, nil
}

// CloseWithLog closes c, logging any close error instead of returning it so
// the caller's primary error always takes precedence.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
