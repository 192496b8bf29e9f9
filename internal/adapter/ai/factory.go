package ai

import (
	"fmt"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
	"github.com/arturoeanton/go-exam-checker-ollama/pkg/config"
)

// NewProviderFromConfig builds the configured AI provider.
func NewProviderFromConfig(cfg *config.Config) (port.AIProvider, error) {
	switch cfg.AIBackend {
	case "ollama":
		return NewOllamaProvider(
			OllamaEndpointConfig{
				BaseURL: cfg.OllamaEmbedURL,
				Model:   cfg.OllamaEmbedModel,
				Token:   cfg.OllamaEmbedToken,
			},
			OllamaEndpointConfig{
				BaseURL: cfg.OllamaChatURL,
				Model:   cfg.OllamaChatModel,
				Token:   cfg.OllamaChatToken,
			},
		), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, cfg.OpenAIChatModel)
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.AIBackend)
	}
}
