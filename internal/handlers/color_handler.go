package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/color"
	"studio-space-backend/internal/imaging"
)

const (
	analyzeSize   = 400
	analyzeColors = 6
)

type ColorHandler struct{}

func NewColorHandler() *ColorHandler {
	return &ColorHandler{}
}

// Analyze extracts a palette from an uploaded image without storing it.
func (h *ColorHandler) Analyze(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No image file provided")
	}
	src, err := file.Open()
	if err != nil {
		return serverError(c, err, "Failed to read upload")
	}
	defer src.Close()

	img, err := imaging.Decode(src, analyzeSize)
	if errors.Is(err, imaging.ErrTooLarge) {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "Image dimensions too large")
	}
	if errors.Is(err, imaging.ErrUnsupported) {
		return errorJSON(c, fiber.StatusBadRequest, "Only image files are allowed")
	}
	if err != nil {
		return serverError(c, err, "Failed to analyze image")
	}

	colors := color.ExtractPalette(img, analyzeColors)
	harmonies := []color.Harmony{}
	if len(colors) > 0 {
		harmonies, _ = color.Harmonies(colors[0])
	}
	return c.JSON(fiber.Map{"colors": colors, "harmonies": harmonies})
}

func (h *ColorHandler) Harmonies(c *fiber.Ctx) error {
	harmonies, err := color.Harmonies(c.Query("color"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid hex color")
	}
	return c.JSON(fiber.Map{"harmonies": harmonies})
}
