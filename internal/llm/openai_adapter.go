package llm

import (
	"github.com/tmc/langchaingo/llms/openai"
)

func NewOpenAIAdapter(model, baseURL, apiKey string) (*Adapter, error) {
	return newOpenAIClient(ProviderOpenAI, model, baseURL, apiKey)
}

// newOpenAIClient also serves OpenAI-compatible endpoints (Groq, Hugging Face).
func newOpenAIClient(provider Provider, model, baseURL, apiKey string) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(provider, model, client), nil
}
