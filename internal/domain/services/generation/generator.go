package generation

import (
	"context"
)

// Provider defines the interface that all generation providers must
// implement. This abstraction allows supporting multiple providers
// (Anthropic, lorem for dev) while keeping the suggestion flow provider
// agnostic.
type Provider interface {
	// Generate performs a single request/response completion call.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// Request contains the parameters for a generation request.
type Request struct {
	// System is the system prompt, usually from a content-kind preset.
	System string

	// Messages contains the prompt plus any prior message history.
	Messages []Message

	// Model is the model identifier (e.g., "claude-haiku-4-5-20251001")
	Model string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int
}

// Message is a single message in the conversation history.
type Message struct {
	// Role is either "user" or "assistant"
	Role string

	// Text is the plain-text content of the message
	Text string
}

// Response contains the provider's generated output.
type Response struct {
	// Text is the generated text. Empty text is treated as a generation
	// failure by callers.
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// InputTokens / OutputTokens are usage counts when the provider reports
	// them, zero otherwise.
	InputTokens  int
	OutputTokens int
}
