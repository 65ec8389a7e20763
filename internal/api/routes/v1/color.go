package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
)

func registerColor(r fiber.Router, h *handlers.Handlers) {
	r.Post("/colors/analyze", h.Colors.Analyze)
	r.Get("/colors/harmonies", h.Colors.Harmonies)
}
