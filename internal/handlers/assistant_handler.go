package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/assistant"
	"studio-space-backend/internal/color"
	"studio-space-backend/internal/repo"
)

type Suggester interface {
	Enabled() bool
	Suggest(ctx context.Context, board assistant.BoardContext) (*assistant.Suggestion, error)
}

type AssistantHandler struct {
	boards repo.BoardRepoInterface
	images repo.ImageRepoInterface
	agent  Suggester
}

func NewAssistantHandler(boards repo.BoardRepoInterface, images repo.ImageRepoInterface, agent Suggester) *AssistantHandler {
	return &AssistantHandler{boards: boards, images: images, agent: agent}
}

// Suggestions asks the LLM for tags and a description for the caller's board.
func (h *AssistantHandler) Suggestions(c *fiber.Ctx) error {
	if h.agent == nil || !h.agent.Enabled() {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Assistant is not configured")
	}
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	summary, err := h.boards.Summary(ctx, board.ID, board.UserID)
	if err != nil {
		return serverError(c, err, "Failed to load board")
	}
	images, err := h.images.ListByBoard(ctx, board.ID)
	if err != nil {
		return serverError(c, err, "Failed to load board")
	}

	input := assistant.BoardContext{
		Title:   summary.Title,
		Tags:    summary.Tags,
		Palette: color.MostCommon(imagePalettes(images), paletteSize),
	}
	if summary.Description != nil {
		input.Description = *summary.Description
	}

	suggestion, err := h.agent.Suggest(ctx, input)
	if errors.Is(err, assistant.ErrNotConfigured) {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Assistant is not configured")
	}
	if err != nil {
		return serverError(c, err, "Failed to generate suggestions")
	}
	return c.JSON(suggestion)
}
