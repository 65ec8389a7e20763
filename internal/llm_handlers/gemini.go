package llmHandlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GenaiGeminiClient implements Client for Gemini via Google AI API
type GenaiGeminiClient struct {
	client  *genai.Client
	modelID string

	Temperature float32
	MaxTokens   int32
}

func NewGenaiGeminiClient(ctx context.Context, apiKey, modelID string) (*GenaiGeminiClient, error) {
	if apiKey == "" || modelID == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY and GEMINI_MODEL_ID must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &GenaiGeminiClient{
		client:      client,
		modelID:     modelID,
		Temperature: 0.4,
		MaxTokens:   1024,
	}, nil
}

// toGenaiContents maps chat history onto Gemini roles. System messages are
// folded into the returned instruction text.
func toGenaiContents(messages []Message) (string, []*genai.Content) {
	systemParts := []string{}
	contents := []*genai.Content{}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			systemParts = append(systemParts, m.Content)
			continue
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(systemParts, "\n"), contents
}

func (v *GenaiGeminiClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	extraSystem, contents := toGenaiContents(messages)
	if extraSystem != "" {
		systemMessage = strings.TrimSpace(systemMessage + "\n" + extraSystem)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &v.Temperature,
		MaxOutputTokens: v.MaxTokens,
	}
	if systemMessage != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemMessage, genai.RoleUser)
	}

	resp, err := v.client.Models.GenerateContent(ctx, v.modelID, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return resp.Text(), nil
}
