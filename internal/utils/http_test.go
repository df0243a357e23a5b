package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aioverlay/aibridge/providers/ai"
)

func TestDoPost_SendsJSONAndHeaders(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	headers := []ai.Header{{Key: "Authorization", Value: "Bearer test-key"}}
	status, body, err := DoPost(context.Background(), server.Client(), server.URL, headers, map[string]string{"q": "hi"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", body)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected auth header, got %q", gotAuth)
	}

	var sent map[string]string
	if err := json.Unmarshal(gotBody, &sent); err != nil || sent["q"] != "hi" {
		t.Errorf("expected marshaled payload, got %q", gotBody)
	}
}

// Non-2xx statuses are not an error at this layer: the adapter interprets
// both success and failure payloads.
func TestDoPost_Non2xxIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	status, body, err := DoPost(context.Background(), server.Client(), server.URL, nil, struct{}{})
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", status)
	}
	if len(body) == 0 {
		t.Error("expected error body to be returned for adapter-side parsing")
	}
}

func TestDoPost_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()

	_, _, err := DoPost(ctx, server.Client(), server.URL, nil, struct{}{})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDoPostStream_SetsEventStreamAccept(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {}\n"))
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, nil, struct{}{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer response.Body.Close()

	if gotAccept != "text/event-stream" {
		t.Errorf("expected SSE accept header, got %q", gotAccept)
	}
}
