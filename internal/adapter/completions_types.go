// Package adapter provides implementations for external AI provider integrations.
package adapter

// Completions API wire types.
// These mirror the OpenAI-style /v1/completions format served by the completions provider.

// CompletionRequest represents a prompt completion request.
type CompletionRequest struct {
	// Model specifies which model to use.
	Model string `json:"model"`

	// Prompt is the full conversation rendered as a single string.
	Prompt string `json:"prompt"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens"`

	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `json:"temperature"`

	// Stop sequences to halt generation.
	Stop []string `json:"stop,omitempty"`
}

// CompletionResponse represents a prompt completion response.
type CompletionResponse struct {
	// ID is the unique identifier for this completion.
	ID string `json:"id"`

	// Object is usually "text_completion".
	Object string `json:"object"`

	// Created is the Unix timestamp of when the completion was created.
	Created int64 `json:"created"`

	// Model is the model used for completion.
	Model string `json:"model"`

	// Choices contains the generated completions.
	Choices []CompletionChoice `json:"choices"`

	// Usage contains token usage statistics. Optional.
	Usage *CompletionUsage `json:"usage,omitempty"`
}

// CompletionChoice represents a single completion choice.
type CompletionChoice struct {
	// Index is the position of this choice in the list.
	Index int `json:"index"`

	// Text is the generated continuation of the prompt.
	Text string `json:"text"`

	// FinishReason indicates why the model stopped generating.
	FinishReason string `json:"finish_reason"`
}

// CompletionUsage contains token usage statistics.
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionErrorResponse represents an error body from the completions API.
// Some deployments nest the detail under "error", others return a flat "message".
type CompletionErrorResponse struct {
	Error   *CompletionErrorDetail `json:"error,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// CompletionErrorDetail contains the error details.
type CompletionErrorDetail struct {
	// Message is the human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error (e.g., "invalid_request_error").
	Type string `json:"type"`

	// Code is the error code. Optional.
	Code any `json:"code,omitempty"`
}

// detail returns the most specific message carried by the error body.
func (e CompletionErrorResponse) detail() string {
	if e.Error != nil && e.Error.Message != "" {
		if e.Error.Type != "" {
			return e.Error.Type + ": " + e.Error.Message
		}
		return e.Error.Message
	}
	return e.Message
}
