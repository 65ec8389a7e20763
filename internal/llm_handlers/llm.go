package llmHandlers

import (
	"context"
)

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type Client interface {
	Chat(ctx context.Context, systemMessage string, messages []Message) (string, error)
}
