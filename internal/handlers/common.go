package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/libraries"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
	"studio-space-backend/internal/storage"
	"studio-space-backend/internal/validate"
)

var validator = validate.New()

// EventPublisher pushes board changes to open canvases.
type EventPublisher interface {
	Publish(boardID uuid.UUID, eventType libraries.WebSocketMessageType, data interface{})
}

// Notifications are fire-and-forget emails.
type Notifications interface {
	Welcome(user *models.User)
	BoardCreated(user *models.User, board *models.Board)
	PrivacyChanged(user *models.User, isPublic bool)
}

// ErrorHandler renders every error as {"error": message}. Anything that is
// not a *fiber.Error is logged and reported as a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		logger.FromCtx(c).WithError(err).Error("unhandled error")
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serverError logs err with the request context and answers 500.
func serverError(c *fiber.Ctx, err error, message string) error {
	logger.FromCtx(c).WithError(err).Error(message)
	return errorJSON(c, fiber.StatusInternalServerError, message)
}

// bind parses the JSON body into dto and validates it. On failure the 400
// response has already been written and ok is false.
func bind(c *fiber.Ctx, dto interface{}) (bool, error) {
	if err := c.BodyParser(dto); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validator.Struct(dto); errs != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": errs,
		})
	}
	return true, nil
}

func paramID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// ownedBoard loads the board named by the :id param and checks the caller
// owns it.
func ownedBoard(c *fiber.Ctx, boards repo.BoardRepoInterface) (*models.Board, error) {
	id, err := paramID(c, "id", "board")
	if err != nil {
		return nil, err
	}
	board, err := boards.GetByID(c.UserContext(), id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Board not found")
	}
	if err != nil {
		return nil, err
	}
	if board.UserID != auth.CurrentUserID(c) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Access denied")
	}
	return board, nil
}

// readableBoard loads the :id board when it is public or the caller's own.
func readableBoard(c *fiber.Ctx, boards repo.BoardRepoInterface) (*models.Board, error) {
	id, err := paramID(c, "id", "board")
	if err != nil {
		return nil, err
	}
	board, err := boards.GetByID(c.UserContext(), id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Board not found")
	}
	if err != nil {
		return nil, err
	}
	if !board.IsPublic && board.UserID != auth.CurrentUserID(c) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Access denied")
	}
	return board, nil
}

// BlobJanitor deletes stored blobs once no image row refers to them.
// Failures are logged, never returned.
type BlobJanitor struct {
	images repo.ImageRepoInterface
	store  storage.Store
}

func NewBlobJanitor(images repo.ImageRepoInterface, store storage.Store) *BlobJanitor {
	return &BlobJanitor{images: images, store: store}
}

func (j *BlobJanitor) Sweep(ctx context.Context, keys []string) {
	if j == nil || len(keys) == 0 {
		return
	}
	orphaned, err := j.images.UnreferencedKeys(ctx, keys)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to check blob references")
		return
	}
	for _, key := range orphaned {
		if err := j.store.Delete(ctx, key); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("failed to delete blob")
		}
	}
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
