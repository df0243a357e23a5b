package ai

// contextSeparator introduces the read-only context section appended to the
// user prompt. The exact bytes are a contract: prompt-injection tests anchor
// on this literal, so it must never be reformatted.
const contextSeparator = "\n\n---\n**PROJECT CONTEXT (read-only)**\n"

// BuildPrompt produces the final prompt text shared by all providers: the
// request prompt followed, when context chunks are present, by the context
// separator and each chunk in insertion order, each terminated by a single
// newline. With no chunks the prompt is returned unchanged.
func BuildPrompt(request Request) string {
	if len(request.ContextChunks) == 0 {
		return request.Prompt
	}

	full := request.Prompt + contextSeparator
	for _, chunk := range request.ContextChunks {
		full += chunk + "\n"
	}
	return full
}

// ValidateKey fails with an *AuthError when key is empty. providerLabel names
// the provider in the error message. Callers invoke this only for providers
// that mandate a key; local servers pass an empty key through unchecked.
func ValidateKey(key, providerLabel string) error {
	if key == "" {
		return &AuthError{Provider: providerLabel}
	}
	return nil
}
