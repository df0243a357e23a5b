package utils

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// maxErrorBodyLength caps the raw-body fallback used when an error response
// carries no recognizable message field.
const maxErrorBodyLength = 300

// RepairUnmarshal unmarshals JSON into v, repairing the input and retrying
// once when it is malformed. Local inference servers routinely emit sloppy
// JSON in error responses (single quotes, trailing commas, bare keys).
func RepairUnmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		// Repair failed; the original unmarshal error is the useful one.
		return err
	}
	return json.Unmarshal([]byte(repaired), v)
}

// errorEnvelope covers the error shapes seen across providers:
// OpenAI-compatible {error:{message}}, LM Studio-style {message},
// FastAPI/Uvicorn {detail}.
type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// ErrorMessage extracts a human-readable message from a non-2xx response
// body, trying error.message, then message, then detail, and finally falling
// back to the raw body truncated to a fixed length.
func ErrorMessage(body []byte) string {
	var envelope errorEnvelope
	if err := RepairUnmarshal(body, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Detail != "" {
			return envelope.Detail
		}
	}
	return TruncateString(strings.TrimSpace(string(body)), maxErrorBodyLength)
}
