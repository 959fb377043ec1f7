package llm

import (
	"github.com/tmc/langchaingo/llms/ollama"
)

func NewOllamaAdapter(model, baseURL string) (*Adapter, error) {
	opts := []ollama.Option{
		ollama.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(ProviderOllama, model, client), nil
}
