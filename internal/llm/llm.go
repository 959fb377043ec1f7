package llm

import (
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderOllama      Provider = "ollama"
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderGemini      Provider = "gemini"
	ProviderGroq        Provider = "groq"
	ProviderHuggingFace Provider = "huggingface"
)

// OpenAI-compatible endpoints.
const (
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
)

// Providers lists every supported provider.
var Providers = []Provider{
	ProviderHuggingFace,
	ProviderGroq,
	ProviderOllama,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderHuggingFace:
		return "meta-llama/Llama-3.3-70B-Instruct"
	case ProviderGroq:
		return "llama-3.3-70b-versatile"
	case ProviderOllama:
		return "llama3.2"
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return ""
	}
}

// NeedsAPIKey reports whether the provider refuses unauthenticated requests.
func NeedsAPIKey(p Provider) bool {
	return p != ProviderOllama
}

// Valid reports whether p is a supported provider.
func Valid(p Provider) bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Settings select and authenticate a provider.
type Settings struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
}

func NewAdapter(s Settings) (*Adapter, error) {
	s.Provider = Provider(strings.ToLower(strings.TrimSpace(string(s.Provider))))
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}

	switch s.Provider {
	case ProviderOllama:
		return NewOllamaAdapter(s.Model, s.BaseURL)
	case ProviderOpenAI:
		return NewOpenAIAdapter(s.Model, s.BaseURL, s.APIKey)
	case ProviderGroq:
		return newOpenAIClient(ProviderGroq, s.Model, valueOrDefault(s.BaseURL, GroqBaseURL), s.APIKey)
	case ProviderHuggingFace:
		return newOpenAIClient(ProviderHuggingFace, s.Model, valueOrDefault(s.BaseURL, HuggingFaceBaseURL), s.APIKey)
	case ProviderAnthropic:
		return NewAnthropicAdapter(s.Model, s.BaseURL, s.APIKey)
	case ProviderGemini:
		return NewGeminiAdapter(s.Model, s.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", s.Provider)
	}
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
