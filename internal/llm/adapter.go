package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"

	"mcpchat/internal/chat"
)

// Adapter exposes a langchaingo model as a chat.Gateway.
type Adapter struct {
	provider Provider
	client   llms.Model
	model    string
}

var _ chat.Gateway = (*Adapter)(nil)

// Wrap adapts an existing langchaingo model.
func Wrap(provider Provider, model string, client llms.Model) *Adapter {
	return &Adapter{provider: provider, client: client, model: model}
}

func (a *Adapter) Provider() Provider { return a.provider }

func (a *Adapter) Model() string { return a.model }

func (a *Adapter) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	messages := convertHistory(req.Messages)

	model := req.Model
	if model == "" {
		model = a.model
	}

	opts := make([]llms.CallOption, 0, 4)
	opts = append(opts, llms.WithModel(model))
	if req.MaxTokens != 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*req.Temperature))
	}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(req.Tools))
	}

	resp, err := a.client.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, &chat.ProviderError{Provider: string(a.provider), Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, &chat.ProviderError{Provider: string(a.provider), Err: errors.New("empty response from model")}
	}

	choice := resp.Choices[0]
	toolCalls := make([]chat.ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		toolCalls = append(toolCalls, chat.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: chat.TextArguments(tc.FunctionCall.Arguments),
		})
	}
	if len(toolCalls) == 0 {
		toolCalls = nil
	}

	return &chat.Response{
		FinishReason: NormalizeFinishReason(choice.StopReason, len(toolCalls) > 0),
		Message: chat.Message{
			Role:      chat.RoleAssistant,
			Content:   choice.Content,
			ToolCalls: toolCalls,
		},
	}, nil
}
