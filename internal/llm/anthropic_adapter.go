package llm

import (
	"github.com/tmc/langchaingo/llms/anthropic"
)

func NewAnthropicAdapter(model, baseURL, apiKey string) (*Adapter, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, anthropic.WithToken(apiKey))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(ProviderAnthropic, model, client), nil
}
