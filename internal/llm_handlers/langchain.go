package llmHandlers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainClient talks to OpenAI and OpenAI-compatible APIs such as Groq.
type LangChainClient struct {
	llm llms.Model
}

type LangChainConfig struct {
	Model   string // e.g. "gpt-4.1", "llama-3.1-70b-versatile"
	BaseURL string // optional: for Groq or other OpenAI-compatible APIs
	APIKey  string // if not set, openai falls back to OPENAI_API_KEY
}

func NewLangChainClient(cfg LangChainConfig) (*LangChainClient, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}
	return &LangChainClient{llm: llm}, nil
}

// NewLangChainClientFromModel wraps an existing model.
func NewLangChainClientFromModel(model llms.Model) *LangChainClient {
	return &LangChainClient{llm: model}
}

func chatMessageType(role MessageRole) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}

func (c *LangChainClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	msgContents := make([]llms.MessageContent, 0, len(messages)+1)
	if systemMessage != "" {
		msgContents = append(msgContents, llms.TextParts(llms.ChatMessageTypeSystem, systemMessage))
	}
	for _, m := range messages {
		msgContents = append(msgContents, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, msgContents, llms.WithTemperature(0.4))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from LLM")
	}
	return resp.Choices[0].Content, nil
}
