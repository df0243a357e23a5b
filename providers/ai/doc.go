// Package ai defines the shared, provider-agnostic types used across all
// completion provider adapters (OpenAI-compatible cloud services, Anthropic,
// local inference servers). Each adapter's conversion layer is responsible
// for mapping these types to its own wire format, keeping the rest of the
// codebase decoupled from provider-specific details.
//
// The central interfaces are [Adapter] for one-shot completions and
// [StreamAdapter] for SSE-based streaming. Request data flows through
// [Request] and responses come back as [Response]; streaming deltas reach
// the caller as ordered [StreamEvent] values.
package ai
