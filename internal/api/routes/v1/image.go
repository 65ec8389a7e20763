package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
)

func registerImage(r fiber.Router, h *handlers.Handlers) {
	g := r.Group("/images", h.Middleware.RequireAuth)

	g.Post("/upload", h.Images.Upload)
	g.Post("/reorder", h.Images.Reorder)
	g.Put("/:id", h.Images.Update)
	g.Delete("/:id", h.Images.Delete)
	g.Post("/:id/duplicate", h.Images.Duplicate)
}
