package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms/googleai"
)

func NewGeminiAdapter(model, apiKey string) (*Adapter, error) {
	effectiveModel := model
	if effectiveModel == "" {
		effectiveModel = googleai.DefaultOptions().DefaultModel
	}

	opts := []googleai.Option{
		googleai.WithDefaultModel(effectiveModel),
	}
	if apiKey != "" {
		opts = append(opts, googleai.WithAPIKey(apiKey))
	}

	client, err := googleai.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(ProviderGemini, effectiveModel, client), nil
}
