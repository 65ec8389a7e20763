package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/color"
	"studio-space-backend/internal/imaging"
	"studio-space-backend/internal/libraries"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
	"studio-space-backend/internal/storage"
)

const uploadPaletteSize = 5

type ImageHandler struct {
	boards   repo.BoardRepoInterface
	images   repo.ImageRepoInterface
	store    storage.Store
	janitor  *BlobJanitor
	events   EventPublisher
	maxBytes int64
}

func NewImageHandler(
	boards repo.BoardRepoInterface,
	images repo.ImageRepoInterface,
	store storage.Store,
	janitor *BlobJanitor,
	events EventPublisher,
	maxBytes int64,
) *ImageHandler {
	return &ImageHandler{
		boards:   boards,
		images:   images,
		store:    store,
		janitor:  janitor,
		events:   events,
		maxBytes: maxBytes,
	}
}

func imageNotFound(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusNotFound, "Image not found or access denied")
}

// Upload stores a new image on one of the caller's boards.
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No image file provided")
	}

	var dto struct {
		BoardID   string `form:"boardId" json:"boardId"`
		PositionX int    `form:"positionX" json:"positionX" validate:"min=0"`
		PositionY int    `form:"positionY" json:"positionY" validate:"min=0"`
		Width     int    `form:"width" json:"width" validate:"min=0"`
		Height    int    `form:"height" json:"height" validate:"min=0"`
		Rotation  int    `form:"rotation" json:"rotation" validate:"min=-360,max=360"`
		ZIndex    int    `form:"zIndex" json:"zIndex"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid form data")
	}
	if dto.BoardID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Board ID is required")
	}
	if errs := validator.Struct(&dto); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "errors": errs})
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "File too large")
	}

	ctx := c.UserContext()
	boardID, err := uuid.Parse(dto.BoardID)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Board not found or access denied")
	}
	board, err := h.boards.GetByID(ctx, boardID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && board.UserID != auth.CurrentUserID(c)) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found or access denied")
	}
	if err != nil {
		return serverError(c, err, "Failed to upload image")
	}

	src, err := file.Open()
	if err != nil {
		return serverError(c, err, "Failed to read upload")
	}
	defer src.Close()

	processed, err := imaging.Process(src)
	if errors.Is(err, imaging.ErrTooLarge) {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "Image dimensions too large")
	}
	if errors.Is(err, imaging.ErrUnsupported) {
		return errorJSON(c, fiber.StatusBadRequest, "Only image files are allowed")
	}
	if err != nil {
		return serverError(c, err, "Failed to process image")
	}

	key := storage.NewKey(board.ID, processed.Ext)
	url, err := h.store.Put(ctx, key, processed.ContentType, bytes.NewReader(processed.Data))
	if err != nil {
		return serverError(c, err, "Failed to store image")
	}

	palette, _ := json.Marshal(color.ExtractPalette(processed.Image, uploadPaletteSize))
	image := &models.Image{
		URL:        url,
		StorageKey: key,
		PositionX:  dto.PositionX,
		PositionY:  dto.PositionY,
		Width:      dto.Width,
		Height:     dto.Height,
		Rotation:   dto.Rotation,
		ZIndex:     dto.ZIndex,
		Palette:    datatypes.JSON(palette),
		BoardID:    board.ID,
	}
	if image.Width == 0 {
		image.Width = processed.Width
	}
	if image.Height == 0 {
		image.Height = processed.Height
	}

	if err := h.images.Create(ctx, image); err != nil {
		h.janitor.Sweep(ctx, []string{key})
		return serverError(c, err, "Failed to save image")
	}
	h.events.Publish(board.ID, libraries.EventImageCreated, image)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

func (h *ImageHandler) owned(c *fiber.Ctx) (*models.Image, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, repo.ErrNotFound
	}
	return h.images.GetOwned(c.UserContext(), id, auth.CurrentUserID(c))
}

func (h *ImageHandler) Update(c *fiber.Ctx) error {
	image, err := h.owned(c)
	if errors.Is(err, repo.ErrNotFound) {
		return imageNotFound(c)
	}
	if err != nil {
		return serverError(c, err, "Failed to update image")
	}

	var dto struct {
		PositionX *int `json:"positionX" validate:"omitempty,min=0"`
		PositionY *int `json:"positionY" validate:"omitempty,min=0"`
		Width     *int `json:"width" validate:"omitempty,min=1"`
		Height    *int `json:"height" validate:"omitempty,min=1"`
		Rotation  *int `json:"rotation" validate:"omitempty,min=-360,max=360"`
		ZIndex    *int `json:"zIndex"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	updates := map[string]any{}
	for column, v := range map[string]*int{
		"position_x": dto.PositionX,
		"position_y": dto.PositionY,
		"width":      dto.Width,
		"height":     dto.Height,
		"rotation":   dto.Rotation,
		"z_index":    dto.ZIndex,
	} {
		if v != nil {
			updates[column] = *v
		}
	}
	if len(updates) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "No valid updates provided")
	}

	updated, err := h.images.Update(c.UserContext(), image.ID, updates)
	if errors.Is(err, repo.ErrNotFound) {
		return imageNotFound(c)
	}
	if err != nil {
		return serverError(c, err, "Failed to update image")
	}
	h.events.Publish(updated.BoardID, libraries.EventImageUpdated, updated)

	return c.JSON(fiber.Map{
		"message": "Image updated successfully",
		"image":   updated,
	})
}

func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	image, err := h.owned(c)
	if errors.Is(err, repo.ErrNotFound) {
		return imageNotFound(c)
	}
	if err != nil {
		return serverError(c, err, "Failed to delete image")
	}

	ctx := c.UserContext()
	if err := h.images.Delete(ctx, image.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return imageNotFound(c)
		}
		return serverError(c, err, "Failed to delete image")
	}
	h.janitor.Sweep(ctx, []string{image.StorageKey})
	h.events.Publish(image.BoardID, libraries.EventImageDeleted, fiber.Map{"id": image.ID})

	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}

// Duplicate places a copy next to the original. Both rows share one blob.
func (h *ImageHandler) Duplicate(c *fiber.Ctx) error {
	image, err := h.owned(c)
	if errors.Is(err, repo.ErrNotFound) {
		return imageNotFound(c)
	}
	if err != nil {
		return serverError(c, err, "Failed to duplicate image")
	}

	dto := struct {
		OffsetX int `json:"offsetX"`
		OffsetY int `json:"offsetY"`
	}{OffsetX: 20, OffsetY: 20}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&dto); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	copied := &models.Image{
		URL:        image.URL,
		StorageKey: image.StorageKey,
		PositionX:  max(0, image.PositionX+dto.OffsetX),
		PositionY:  max(0, image.PositionY+dto.OffsetY),
		Width:      image.Width,
		Height:     image.Height,
		Rotation:   image.Rotation,
		ZIndex:     image.ZIndex + 1,
		Palette:    image.Palette,
		BoardID:    image.BoardID,
	}
	if err := h.images.Create(c.UserContext(), copied); err != nil {
		return serverError(c, err, "Failed to duplicate image")
	}
	h.events.Publish(copied.BoardID, libraries.EventImageCreated, copied)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image duplicated successfully",
		"image":   copied,
	})
}

// Reorder assigns z_index by position in imageIds, all or nothing.
func (h *ImageHandler) Reorder(c *fiber.Ctx) error {
	var dto struct {
		ImageIDs []string `json:"imageIds"`
	}
	if err := c.BodyParser(&dto); err != nil || dto.ImageIDs == nil {
		return errorJSON(c, fiber.StatusBadRequest, "imageIds must be an array")
	}

	ids := make([]uuid.UUID, 0, len(dto.ImageIDs))
	for _, raw := range dto.ImageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid image ID")
		}
		ids = append(ids, id)
	}

	ctx := c.UserContext()
	userID := auth.CurrentUserID(c)
	err := h.images.Reorder(ctx, userID, ids)
	var accessErr *repo.ImageAccessError
	if errors.As(err, &accessErr) {
		return errorJSON(c, fiber.StatusNotFound, accessErr.Error())
	}
	if err != nil {
		return serverError(c, err, "Failed to reorder images")
	}

	if len(ids) > 0 {
		if first, err := h.images.GetOwned(ctx, ids[0], userID); err == nil {
			h.events.Publish(first.BoardID, libraries.EventImagesReordered, fiber.Map{"image_ids": ids})
		}
	}
	return c.JSON(fiber.Map{"message": "Images reordered successfully"})
}
