package chat

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Finish reasons every Gateway normalizes its provider's stop reason into.
// Any other value is passed through unchanged.
const (
	FinishToolCalls = "tool_calls"
	FinishStop      = "stop"
)

// Request is the provider independent completion request.
type Request struct {
	Model    string
	Messages []Message

	// Tools is the provider-facing schema list. Nil means the model must not
	// request tool calls for this completion.
	Tools []llms.Tool

	// MaxTokens is omitted when zero.
	MaxTokens int
	// Temperature is omitted when nil.
	Temperature *float64
}

// Response is the first choice of a completion.
type Response struct {
	FinishReason string
	Message      Message
}

// Gateway abstracts chat completion providers.
type Gateway interface {
	// Complete issues one completion. It does not retry; provider failures
	// are returned as *ProviderError.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 {
	return &v
}
