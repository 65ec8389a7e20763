package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/color"
	"studio-space-backend/internal/libraries"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

const paletteSize = 8

// for simple crud operations service layer is not required
type BoardHandler struct {
	boards  repo.BoardRepoInterface
	images  repo.ImageRepoInterface
	tokens  *auth.TokenManager
	janitor *BlobJanitor
	explore *ExploreCache
	events  EventPublisher
	notify  Notifications
}

func NewBoardHandler(
	boards repo.BoardRepoInterface,
	images repo.ImageRepoInterface,
	tokens *auth.TokenManager,
	janitor *BlobJanitor,
	explore *ExploreCache,
	events EventPublisher,
	notify Notifications,
) *BoardHandler {
	return &BoardHandler{
		boards:  boards,
		images:  images,
		tokens:  tokens,
		janitor: janitor,
		explore: explore,
		events:  events,
		notify:  notify,
	}
}

func boardQuery(c *fiber.Ctx, defaultLimit int) repo.BoardQuery {
	page, limit := repo.Page(c.QueryInt("page", 1), c.QueryInt("limit", defaultLimit), defaultLimit)
	return repo.BoardQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Sort:   repo.ParseSort(c.Query("sort")),
		Tag:    c.Query("tag"),
		Viewer: auth.CurrentUserID(c),
	}
}

// List returns the caller's own boards.
func (h *BoardHandler) List(c *fiber.Ctx) error {
	q := boardQuery(c, 10)
	boards, total, err := h.boards.ListByUser(c.UserContext(), q.Viewer, q)
	if err != nil {
		return serverError(c, err, "Failed to get boards")
	}
	return c.JSON(fiber.Map{
		"boards":     boards,
		"pagination": newPagination(q.Page, q.Limit, total),
	})
}

// Explore lists public boards. Anonymous pages are served from cache.
func (h *BoardHandler) Explore(c *fiber.Ctx) error {
	q := boardQuery(c, 12)
	ctx := c.UserContext()

	if body, ok := h.explore.Get(ctx, q); ok {
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	boards, total, err := h.boards.Explore(ctx, q)
	if err != nil {
		return serverError(c, err, "Failed to get boards")
	}
	body, err := json.Marshal(fiber.Map{
		"boards":     boards,
		"pagination": newPagination(q.Page, q.Limit, total),
	})
	if err != nil {
		return serverError(c, err, "Failed to get boards")
	}
	h.explore.Set(ctx, q, body)

	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (h *BoardHandler) Get(c *fiber.Ctx) error {
	board, err := readableBoard(c, h.boards)
	if err != nil {
		return err
	}
	viewer := auth.CurrentUserID(c)
	ctx := c.UserContext()

	summary, err := h.boards.Summary(ctx, board.ID, viewer)
	if err != nil {
		return serverError(c, err, "Failed to get board")
	}
	images, err := h.images.ListByBoard(ctx, board.ID)
	if err != nil {
		return serverError(c, err, "Failed to get board")
	}

	detail := models.BoardDetail{
		BoardSummary: *summary,
		IsOwner:      board.UserID == viewer,
		Images:       images,
	}
	if !detail.IsOwner {
		detail.ShareToken = nil
	}
	return c.JSON(fiber.Map{"board": detail})
}

func (h *BoardHandler) Create(c *fiber.Ctx) error {
	var dto struct {
		Title           string   `json:"title" validate:"required,notblank,max=255"`
		Description     string   `json:"description" validate:"max=1000"`
		BackgroundColor string   `json:"backgroundColor" validate:"omitempty,hexcolor6"`
		IsPublic        bool     `json:"isPublic"`
		Tags            []string `json:"tags" validate:"max=50"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	user := auth.CurrentUser(c)
	board := &models.Board{
		Title:           strings.TrimSpace(dto.Title),
		BackgroundColor: dto.BackgroundColor,
		IsPublic:        dto.IsPublic,
		UserID:          user.ID,
	}
	if dto.Description != "" {
		board.Description = &dto.Description
	}
	if dto.IsPublic {
		token := newShareToken()
		board.ShareToken = &token
	}

	ctx := c.UserContext()
	if err := h.boards.Create(ctx, board, dto.Tags); err != nil {
		return serverError(c, err, "Failed to create board")
	}
	summary, err := h.boards.Summary(ctx, board.ID, user.ID)
	if err != nil {
		return serverError(c, err, "Failed to create board")
	}

	if board.IsPublic {
		h.explore.Invalidate(ctx)
	}
	h.notify.BoardCreated(user, board)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Board created successfully",
		"board":   summary,
	})
}

func (h *BoardHandler) Update(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}

	var dto struct {
		Title           *string `json:"title" validate:"omitempty,notblank,max=255"`
		Description     *string `json:"description" validate:"omitempty,max=1000"`
		BackgroundColor *string `json:"backgroundColor" validate:"omitempty,hexcolor6"`
		IsPublic        *bool   `json:"isPublic"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	updates := map[string]any{}
	if dto.Title != nil {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.BackgroundColor != nil {
		updates["background_color"] = *dto.BackgroundColor
	}
	if dto.IsPublic != nil {
		updates["is_public"] = *dto.IsPublic
		if *dto.IsPublic && board.ShareToken == nil {
			updates["share_token"] = newShareToken()
		}
	}
	if len(updates) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "No valid updates provided")
	}

	ctx := c.UserContext()
	if _, err := h.boards.Update(ctx, board.ID, updates); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Board not found")
		}
		return serverError(c, err, "Failed to update board")
	}
	summary, err := h.boards.Summary(ctx, board.ID, board.UserID)
	if err != nil {
		return serverError(c, err, "Failed to update board")
	}

	h.explore.Invalidate(ctx)
	h.events.Publish(board.ID, libraries.EventBoardUpdated, summary)

	return c.JSON(fiber.Map{
		"message": "Board updated successfully",
		"board":   summary,
	})
}

func (h *BoardHandler) Delete(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	keys, err := h.images.KeysForBoard(ctx, board.ID)
	if err != nil {
		return serverError(c, err, "Failed to delete board")
	}
	if err := h.boards.Delete(ctx, board.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to delete board")
	}
	h.janitor.Sweep(ctx, keys)

	h.explore.Invalidate(ctx)
	h.events.Publish(board.ID, libraries.EventBoardDeleted, fiber.Map{"id": board.ID})

	return c.JSON(fiber.Map{"message": "Board deleted successfully"})
}

func (h *BoardHandler) Like(c *fiber.Ctx) error {
	board, err := readableBoard(c, h.boards)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	liked, err := h.boards.ToggleLike(ctx, auth.CurrentUserID(c), board.ID)
	if err != nil {
		return serverError(c, err, "Failed to update like")
	}
	h.explore.Invalidate(ctx)

	message := "Board unliked"
	if liked {
		message = "Board liked"
	}
	return c.JSON(fiber.Map{"message": message, "liked": liked})
}

// Shared returns the read-only snapshot of a public board.
func (h *BoardHandler) Shared(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "board")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	board, err := h.boards.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !board.IsPublic) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found or not public")
	}
	if err != nil {
		return serverError(c, err, "Failed to get board")
	}

	shared, err := snapshot(ctx, h.boards, h.images, board.ID)
	if err != nil {
		return serverError(c, err, "Failed to get board")
	}
	return c.JSON(fiber.Map{"board": shared})
}

func (h *BoardHandler) Duplicate(c *fiber.Ctx) error {
	board, err := readableBoard(c, h.boards)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	userID := auth.CurrentUserID(c)

	copied, err := h.boards.Duplicate(ctx, board.ID, userID)
	if err != nil {
		return serverError(c, err, "Failed to duplicate board")
	}
	summary, err := h.boards.Summary(ctx, copied.ID, userID)
	if err != nil {
		return serverError(c, err, "Failed to duplicate board")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Board duplicated successfully",
		"board":   summary,
	})
}

// Palette aggregates the dominant colors of every image on the board.
func (h *BoardHandler) Palette(c *fiber.Ctx) error {
	board, err := readableBoard(c, h.boards)
	if err != nil {
		return err
	}
	images, err := h.images.ListByBoard(c.UserContext(), board.ID)
	if err != nil {
		return serverError(c, err, "Failed to get palette")
	}

	colors := color.MostCommon(imagePalettes(images), paletteSize)
	if colors == nil {
		colors = []string{}
	}
	harmonies := []color.Harmony{}
	if len(colors) > 0 {
		if harmonies, err = color.Harmonies(colors[0]); err != nil {
			return serverError(c, err, "Failed to get palette")
		}
	}
	return c.JSON(fiber.Map{"colors": colors, "harmonies": harmonies})
}

// CanWatch lets the websocket guard admit viewers of public boards and the
// owner of private ones.
func (h *BoardHandler) CanWatch(ctx context.Context, boardID uuid.UUID, token string) (int, error) {
	board, err := h.boards.GetByID(ctx, boardID)
	if errors.Is(err, repo.ErrNotFound) {
		return fiber.StatusNotFound, nil
	}
	if err != nil {
		return 0, err
	}
	if board.IsPublic {
		return fiber.StatusOK, nil
	}
	if token != "" {
		if userID, err := h.tokens.Parse(token); err == nil && userID == board.UserID {
			return fiber.StatusOK, nil
		}
	}
	return fiber.StatusNotFound, nil
}

// imagePalettes decodes the stored palette of each image, skipping any that
// are empty or unreadable.
func imagePalettes(images []models.Image) [][]string {
	out := make([][]string, 0, len(images))
	for _, img := range images {
		if len(img.Palette) == 0 {
			continue
		}
		var colors []string
		if err := json.Unmarshal(img.Palette, &colors); err != nil {
			continue
		}
		out = append(out, colors)
	}
	return out
}
