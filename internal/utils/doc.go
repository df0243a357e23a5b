// Package utils provides the shared HTTP plumbing for provider adapters:
// POST helpers with the bridge's fixed timeouts, an SSE scanner tolerant of
// arbitrary chunk boundaries, lenient JSON parsing, and string helpers.
package utils
