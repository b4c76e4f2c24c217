package llm

import (
	"fmt"
	"strings"

	"github.com/agenthands/sift/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

// APIKeyEnv names the environment variable holding the provider's key.
// Providers that need no key return "".
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// NewClient builds the clients for one provider. The embedder is nil when the
// provider cannot produce embeddings.
func NewClient(provider string, apiKey string, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		c := NewOpenAIClient(apiKey, cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.BaseURL)
		return c, c, nil

	case ProviderGemini:
		c := NewGeminiClient(apiKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
		return c, c, nil

	case ProviderClaude:
		c := NewClaudeClient(apiKey, cfg.Claude.Model, cfg.Claude.BaseURL)
		return c, nil, nil

	case ProviderOllama:
		// Ollama speaks the OpenAI API under /v1 and ignores the key.
		baseURL := cfg.Ollama.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		if apiKey == "" {
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Ollama.Model, cfg.Ollama.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}
