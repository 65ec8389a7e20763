package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/libraries"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

type TagHandler struct {
	boards  repo.BoardRepoInterface
	tags    repo.TagRepoInterface
	explore *ExploreCache
	events  EventPublisher
}

func NewTagHandler(boards repo.BoardRepoInterface, tags repo.TagRepoInterface, explore *ExploreCache, events EventPublisher) *TagHandler {
	return &TagHandler{boards: boards, tags: tags, explore: explore, events: events}
}

func (h *TagHandler) changed(c *fiber.Ctx, board *models.Board, tags []string) {
	if board.IsPublic {
		h.explore.Invalidate(c.UserContext())
	}
	h.events.Publish(board.ID, libraries.EventTagsUpdated, fiber.Map{"board_id": board.ID, "tags": tags})
}

func (h *TagHandler) Add(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	var dto struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}
	if models.NormalizeTag(dto.Name) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Tag name is required")
	}

	tags, err := h.tags.Add(c.UserContext(), board.ID, dto.Name)
	if err != nil {
		return serverError(c, err, "Failed to add tag")
	}
	h.changed(c, board, tags)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tags": tags})
}

func (h *TagHandler) Replace(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	var dto struct {
		Tags []string `json:"tags" validate:"max=50"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	tags, err := h.tags.Replace(c.UserContext(), board.ID, dto.Tags)
	if err != nil {
		return serverError(c, err, "Failed to update tags")
	}
	h.changed(c, board, tags)
	return c.JSON(fiber.Map{"tags": tags})
}

func (h *TagHandler) Remove(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil || models.NormalizeTag(name) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Tag name is required")
	}

	tags, err := h.tags.Remove(c.UserContext(), board.ID, name)
	if err != nil {
		return serverError(c, err, "Failed to remove tag")
	}
	h.changed(c, board, tags)
	return c.JSON(fiber.Map{"tags": tags})
}

// Popular feeds the tag cloud from public boards.
func (h *TagHandler) Popular(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	tags, err := h.tags.Popular(c.UserContext(), limit)
	if err != nil {
		return serverError(c, err, "Failed to get tags")
	}
	return c.JSON(tags)
}
