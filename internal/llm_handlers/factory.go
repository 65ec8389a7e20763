package llmHandlers

import (
	"context"
	"fmt"

	"studio-space-backend/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// NewLLMClient builds the client named by LLM_PROVIDER. An empty provider
// returns nil, nil: the assistant is simply switched off.
func NewLLMClient(ctx context.Context, env config.Env) (Client, error) {
	switch env.LLMProvider {
	case "":
		return nil, nil
	case ProviderOpenAI:
		return NewLangChainClient(LangChainConfig{Model: env.OpenAIModel, APIKey: env.OpenAIAPIKey})
	case ProviderGroq:
		if env.GroqBaseURL == "" || env.GroqModelName == "" {
			return nil, fmt.Errorf("GROQ_BASE_URL and GROQ_MODEL_NAME must be set")
		}
		return NewLangChainClient(LangChainConfig{Model: env.GroqModelName, BaseURL: env.GroqBaseURL, APIKey: env.GroqAPIKey})
	case ProviderGemini:
		return NewGenaiGeminiClient(ctx, env.GeminiAPIKey, env.GeminiModelID)
	default:
		return nil, fmt.Errorf("unknown provider %s", env.LLMProvider)
	}
}
