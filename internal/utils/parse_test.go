package utils

import (
	"strings"
	"testing"
)

func TestRepairUnmarshal_ValidJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := RepairUnmarshal([]byte(`{"name":"ok"}`), &out); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Name != "ok" {
		t.Errorf("expected name 'ok', got %q", out.Name)
	}
}

func TestRepairUnmarshal_RepairsSloppyJSON(t *testing.T) {
	// Single quotes and an unquoted key, the kind of body local servers emit.
	var out struct {
		Message string `json:"message"`
	}
	if err := RepairUnmarshal([]byte(`{message: 'model not loaded'}`), &out); err != nil {
		t.Fatalf("expected repaired unmarshal to succeed, got %v", err)
	}
	if out.Message != "model not loaded" {
		t.Errorf("expected repaired message, got %q", out.Message)
	}
}

func TestErrorMessage_ExtractionOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai envelope", `{"error":{"message":"rate limited"}}`, "rate limited"},
		{"flat message", `{"message":"model not found"}`, "model not found"},
		{"fastapi detail", `{"detail":"not authenticated"}`, "not authenticated"},
		{"envelope wins over flat", `{"error":{"message":"a"},"message":"b","detail":"c"}`, "a"},
		{"flat wins over detail", `{"message":"b","detail":"c"}`, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorMessage_RawFallbackTruncated(t *testing.T) {
	raw := "<html>" + strings.Repeat("x", 500) + "</html>"
	got := ErrorMessage([]byte(raw))

	if !strings.HasPrefix(got, "<html>") {
		t.Errorf("expected raw body fallback, got %q", got)
	}
	if !strings.Contains(got, "truncated") {
		t.Errorf("expected truncation marker for long body, got %q", got)
	}
	if len(got) > maxErrorBodyLength+60 {
		t.Errorf("expected fallback capped near %d chars, got %d", maxErrorBodyLength, len(got))
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 300); got != "short" {
		t.Errorf("expected short string unchanged, got %q", got)
	}
	long := strings.Repeat("a", 400)
	got := TruncateString(long, 300)
	if len(got) >= 400 || !strings.Contains(got, "total: 400") {
		t.Errorf("expected truncated string noting original length, got %d chars", len(got))
	}
}
