package llmHandlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"studio-space-backend/internal/config"
)

type recordingModel struct {
	got   []llms.MessageContent
	reply string
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.got = messages
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestLangChainClientChat(t *testing.T) {
	model := &recordingModel{reply: "hello"}
	c := NewLangChainClientFromModel(model)

	out, err := c.Chat(context.Background(), "be brief", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hey"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Len(t, model.got, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.got[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.got[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.got[2].Role)
}

func TestToGenaiContents(t *testing.T) {
	sys, contents := toGenaiContents([]Message{
		{Role: RoleSystem, Content: "rules"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	})
	assert.Equal(t, "rules", sys)
	require.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "a", contents[1].Parts[0].Text)
}

func TestNewLLMClient(t *testing.T) {
	c, err := NewLLMClient(context.Background(), config.Env{})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewLLMClient(context.Background(), config.Env{LLMProvider: "groq"})
	assert.Error(t, err)

	_, err = NewLLMClient(context.Background(), config.Env{LLMProvider: "gemini"})
	assert.Error(t, err)

	_, err = NewLLMClient(context.Background(), config.Env{LLMProvider: "parrot"})
	assert.Error(t, err)
}
