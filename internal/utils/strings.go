package utils

import (
	"encoding/json"
	"fmt"
)

// TruncateString shortens s to at most maxLen characters, appending a suffix
// that records the original total length so callers know data was omitted.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// JSONToString serialises object to its JSON representation. On marshalling
// failure it returns a JSON-formatted error string rather than panicking, so
// the result is always safe to use in log output.
func JSONToString(object any) string {
	encoded, err := json.Marshal(object)
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}
