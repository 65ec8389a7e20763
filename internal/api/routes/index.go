package routes

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/api/routes/v1"
	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/libraries"
)

func Register(app *fiber.App, h *handlers.Handlers, hub *libraries.Hub) {
	// v1 is the current surface and is served at /api
	api := app.Group("/api")

	// Register v1 routes
	v1.RegisterRoutes(api, h, hub)
}
