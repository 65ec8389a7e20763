// Package assistant asks an LLM for tag and description suggestions for a
// board.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	llmHandlers "studio-space-backend/internal/llm_handlers"
	"studio-space-backend/internal/models"
)

const maxDescription = 1000

var ErrNotConfigured = errors.New("assistant is not configured")

type BoardContext struct {
	Title       string
	Description string
	Tags        []string
	Palette     []string
}

type Suggestion struct {
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

type Agent struct {
	llmClient llmHandlers.Client
}

// NewAgent accepts a nil client; Suggest then returns ErrNotConfigured.
func NewAgent(client llmHandlers.Client) *Agent {
	return &Agent{llmClient: client}
}

func (a *Agent) Enabled() bool {
	return a != nil && a.llmClient != nil
}

func (a *Agent) Suggest(ctx context.Context, board BoardContext) (*Suggestion, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", board.Title)
	if board.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", board.Description)
	}
	if len(board.Tags) > 0 {
		fmt.Fprintf(&b, "Existing tags: %s\n", strings.Join(board.Tags, ", "))
	}
	if len(board.Palette) > 0 {
		fmt.Fprintf(&b, "Palette: %s\n", strings.Join(board.Palette, ", "))
	}

	messages := []llmHandlers.Message{{Role: llmHandlers.RoleUser, Content: b.String()}}
	response, err := a.llmClient.Chat(ctx, SUGGEST_PROMPT, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM chat error: %w", err)
	}
	return parseSuggestion(response, board.Tags)
}

// parseSuggestion pulls the JSON object out of a reply, tolerating code
// fences and chatter around it.
func parseSuggestion(response string, existing []string) (*Suggestion, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in assistant reply")
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(response[start:end+1]), &s); err != nil {
		return nil, fmt.Errorf("decode assistant reply: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[models.NormalizeTag(t)] = true
	}
	tags := make([]string, 0, len(s.Tags))
	for _, t := range models.NormalizeTags(s.Tags) {
		if !have[t] {
			tags = append(tags, t)
		}
	}
	s.Tags = tags

	s.Description = strings.TrimSpace(s.Description)
	if r := []rune(s.Description); len(r) > maxDescription {
		s.Description = string(r[:maxDescription])
	}
	return &s, nil
}
