package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/libraries"
)

func RegisterRoutes(r fiber.Router, h *handlers.Handlers, hub *libraries.Hub) {
	registerHealth(r, h)
	registerAuth(r, h)

	registerBoard(r, h)
	registerImage(r, h)
	registerShare(r, h)
	registerUser(r, h)
	registerColor(r, h)
	registerWebSocket(r, h, hub)
}

func registerHealth(r fiber.Router, h *handlers.Handlers) {
	r.Get("/health", h.Health.Check)
}
